// Package reconcile drives every meeting's artifacts toward the state the
// syllabus declares.
//
// A Reconciler owns an ordered set of Steps (workspace, notebook, papers,
// kernel, post). For each meeting it asks every step whether its artifact is
// already present before invoking any mutation, then applies the step's
// policy: skip-if-exists artifacts are created once and left alone, upsert
// artifacts are created or updated. Only the notebook may be regenerated when
// the caller asks for overwrite.
//
// Each meeting is a failure boundary. A step error becomes a failed outcome
// in that meeting's result, steps depending on it are blocked, and the run
// moves on to the next meeting. Only context cancellation ends a run early.
//
// Observers receive progress strictly in chronological meeting order, even
// when meetings are processed by several workers.
package reconcile
