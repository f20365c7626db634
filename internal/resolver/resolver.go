// Package resolver narrows a syllabus down to the meetings a run targets.
package resolver

import (
	"fmt"
	"log/slog"
	"strings"

	"autobot/internal/logging"
	"autobot/internal/services"
	"autobot/internal/syllabus"
)

// Mode distinguishes the selector variants.
type Mode int

const (
	ModeAll Mode = iota
	ModeDate
	ModeName
)

func (m Mode) String() string {
	switch m {
	case ModeDate:
		return "date"
	case ModeName:
		return "name"
	default:
		return "all"
	}
}

// Selector picks meetings out of a syllabus.
type Selector struct {
	Mode  Mode
	Query string
}

// All selects every meeting in syllabus order.
func All() Selector { return Selector{Mode: ModeAll} }

// ByDate selects the meeting whose rendered date contains query. Both the
// MM/DD/YYYY and YYYY-MM-DD renderings are searched.
func ByDate(query string) Selector { return Selector{Mode: ModeDate, Query: query} }

// ByName selects the meeting whose name or slug contains query,
// case-insensitively.
func ByName(query string) Selector { return Selector{Mode: ModeName, Query: query} }

func (s Selector) String() string {
	if s.Mode == ModeAll {
		return "all"
	}
	return fmt.Sprintf("%s~%q", s.Mode, s.Query)
}

// Options tunes ambiguity handling.
type Options struct {
	// Strict turns multiple matches into AmbiguousSelectorError instead of
	// taking the first chronological match.
	Strict bool
	Logger *slog.Logger
}

// NotFoundError reports a single-meeting selector with zero matches.
type NotFoundError struct {
	Selector Selector
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no meeting matches %s", e.Selector)
}

func (e *NotFoundError) Unwrap() error { return services.ErrNotFound }

// AmbiguousSelectorError reports multiple matches under strict resolution.
type AmbiguousSelectorError struct {
	Selector   Selector
	Candidates []string
}

func (e *AmbiguousSelectorError) Error() string {
	return fmt.Sprintf("%s matches %d meetings: %s", e.Selector, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousSelectorError) Unwrap() error { return services.ErrValidation }

// Resolve returns the meetings sel targets, preserving syllabus order.
// Single-meeting selectors always yield a one-element slice.
func Resolve(syl syllabus.Syllabus, sel Selector, opts Options) ([]syllabus.Meeting, error) {
	if sel.Mode == ModeAll {
		out := make([]syllabus.Meeting, len(syl.Meetings))
		copy(out, syl.Meetings)
		return out, nil
	}
	query := strings.TrimSpace(sel.Query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "resolver", "resolve", sel.Mode.String()+" selector needs a non-empty query", nil)
	}

	var matches []syllabus.Meeting
	for _, m := range syl.Meetings {
		if matchesMeeting(m, sel.Mode, query) {
			matches = append(matches, m)
		}
	}
	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Selector: sel}
	case 1:
		return matches, nil
	}

	candidates := make([]string, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, m.String())
	}
	if opts.Strict {
		return nil, &AmbiguousSelectorError{Selector: sel, Candidates: candidates}
	}
	logger := logging.NewComponentLogger(opts.Logger, "resolver")
	logging.WarnWithContext(logger, "selector matched several meetings; using the earliest", "selector_ambiguous",
		logging.String("selector", sel.String()),
		logging.String("chosen", matches[0].String()),
		logging.Any("candidates", candidates),
		logging.String(logging.FieldErrorHint, "narrow the query or set reconcile.strict_selectors"),
		logging.String(logging.FieldImpact, "later matches are not reconciled in this run"),
	)
	return matches[:1], nil
}

func matchesMeeting(m syllabus.Meeting, mode Mode, query string) bool {
	switch mode {
	case ModeDate:
		return strings.Contains(m.DateLabel(), query) || strings.Contains(m.ISODate(), query)
	case ModeName:
		q := strings.ToLower(query)
		return strings.Contains(strings.ToLower(m.Name), q) || strings.Contains(m.Slug, q)
	default:
		return false
	}
}
