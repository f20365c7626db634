package syllabus

import (
	"errors"
	"fmt"
	"strings"

	"autobot/internal/services"
)

// ErrSyllabusMissing marks a semester that has no syllabus source yet.
var ErrSyllabusMissing = errors.New("syllabus missing")

// SchemaError reports a missing or malformed structured source. It matches
// services.ErrSchema plus whatever Err carries; an absent syllabus carries
// ErrSyllabusMissing.
type SchemaError struct {
	Path     string
	Missing  bool
	Problems []string
	Err      error
}

func (e *SchemaError) Error() string {
	switch {
	case e.Missing:
		return fmt.Sprintf("schema error: %s does not exist", e.Path)
	case len(e.Problems) == 1:
		return fmt.Sprintf("schema error: %s: %s", e.Path, e.Problems[0])
	case len(e.Problems) > 1:
		return fmt.Sprintf("schema error: %s: %d problems: %s", e.Path, len(e.Problems), strings.Join(e.Problems, "; "))
	case e.Err != nil:
		return fmt.Sprintf("schema error: %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("schema error: %s", e.Path)
	}
}

func (e *SchemaError) Unwrap() []error {
	errs := []error{services.ErrSchema}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsMissing reports whether err signals an absent syllabus source.
func IsMissing(err error) bool {
	return errors.Is(err, ErrSyllabusMissing)
}
