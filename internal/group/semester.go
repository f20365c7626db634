package group

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Season is one of the three academic terms.
type Season string

const (
	Spring Season = "sp"
	Summer Season = "su"
	Fall   Season = "fa"
)

var seasonLabels = map[Season]string{
	Spring: "Spring",
	Summer: "Summer",
	Fall:   "Fall",
}

// Semester identifies a term by season and four-digit year.
type Semester struct {
	Season Season
	Year   int
}

// ParseSemester parses a short name such as "fa24" or "sp2025".
func ParseSemester(value string) (Semester, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if len(trimmed) < 4 {
		return Semester{}, fmt.Errorf("semester %q: expected <sp|su|fa><yy>", value)
	}
	season := Season(trimmed[:2])
	if _, ok := seasonLabels[season]; !ok {
		return Semester{}, fmt.Errorf("semester %q: unknown season %q", value, season)
	}
	digits := trimmed[2:]
	year, err := strconv.Atoi(digits)
	if err != nil || year < 0 {
		return Semester{}, fmt.Errorf("semester %q: invalid year", value)
	}
	switch len(digits) {
	case 2:
		year += 2000
	case 4:
	default:
		return Semester{}, fmt.Errorf("semester %q: year must have 2 or 4 digits", value)
	}
	return Semester{Season: season, Year: year}, nil
}

// CurrentSemester returns the semester that contains now: January through
// April is spring, May through July summer, the rest fall.
func CurrentSemester(now time.Time) Semester {
	season := Fall
	switch m := now.Month(); {
	case m <= time.April:
		season = Spring
	case m <= time.July:
		season = Summer
	}
	return Semester{Season: season, Year: now.Year()}
}

// String returns the short name, e.g. "fa24".
func (s Semester) String() string {
	return fmt.Sprintf("%s%02d", s.Season, s.Year%100)
}

// Label returns the human-readable name, e.g. "Fall 2024".
func (s Semester) Label() string {
	return fmt.Sprintf("%s %d", seasonLabels[s.Season], s.Year)
}

// IsZero reports whether the semester is unset.
func (s Semester) IsZero() bool {
	return s.Season == "" && s.Year == 0
}
