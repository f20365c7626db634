package reconcile

// ArtifactKind names one of the artifacts a meeting owns.
type ArtifactKind string

const (
	KindWorkspace ArtifactKind = "workspace"
	KindNotebook  ArtifactKind = "notebook"
	KindPapers    ArtifactKind = "papers"
	KindKernel    ArtifactKind = "kernel"
	KindPost      ArtifactKind = "post"
)

// Order is the fixed per-meeting step sequence.
var Order = []ArtifactKind{KindWorkspace, KindNotebook, KindPapers, KindKernel, KindPost}

// Policy is the idempotence contract of an artifact kind.
type Policy int

const (
	// PolicySkipIfExists creates the artifact once and never touches it again.
	PolicySkipIfExists Policy = iota
	// PolicyUpsert creates the artifact or brings it up to date.
	PolicyUpsert
)

func (p Policy) String() string {
	if p == PolicyUpsert {
		return "upsert"
	}
	return "skip-if-exists"
}

// Policy returns the kind's idempotence contract.
func (k ArtifactKind) Policy() Policy {
	switch k {
	case KindKernel, KindPost:
		return PolicyUpsert
	default:
		return PolicySkipIfExists
	}
}

// Overwritable reports whether the overwrite flag may replace this artifact.
func (k ArtifactKind) Overwritable() bool {
	return k == KindNotebook
}

// Requires lists the kinds whose failure blocks k.
func (k ArtifactKind) Requires() []ArtifactKind {
	switch k {
	case KindNotebook, KindPapers:
		return []ArtifactKind{KindWorkspace}
	case KindKernel, KindPost:
		return []ArtifactKind{KindNotebook}
	default:
		return nil
	}
}

func (k ArtifactKind) rank() int {
	for i, kind := range Order {
		if kind == k {
			return i
		}
	}
	return -1
}
