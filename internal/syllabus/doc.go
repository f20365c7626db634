// Package syllabus reads and canonicalises a semester's declared meeting list.
//
// The source of truth is syllabus.yml in the semester root. Load validates it
// and returns meetings in ascending date order; PersistSorted writes that
// order back without touching any meeting artifact. A missing file is a
// distinct, recoverable condition reported via ErrSyllabusMissing so callers
// can initialise a skeleton and stop cleanly.
package syllabus
