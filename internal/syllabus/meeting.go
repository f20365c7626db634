package syllabus

import (
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"autobot/internal/group"
	"autobot/internal/textutil"
)

const (
	// DateLayout is the on-disk date format.
	DateLayout = "2006-01-02"
	// DisplayDateLayout is the rendered date used in progress and selectors.
	DisplayDateLayout = "01/02/2006"
)

// Step names a meeting may list under skip.
var Steps = []string{"workspace", "notebook", "papers", "kernel", "post"}

// Paper is one citation attached to a meeting.
type Paper struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// Key is the reference-cache identity of a citation: its slugged title, or
// the last URL path segment when the title is empty. Keys are unique within
// a meeting.
func (p Paper) Key() string {
	if key := textutil.Slugify(p.Title); key != "" {
		return key
	}
	base := ""
	if u, err := url.Parse(strings.TrimSpace(p.URL)); err == nil {
		base = strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
	}
	return textutil.SanitizeToken(base)
}

// KernelOptions tunes the hosted kernel for a meeting.
type KernelOptions struct {
	GPU          bool     `yaml:"gpu,omitempty"`
	Internet     bool     `yaml:"internet,omitempty"`
	Datasets     []string `yaml:"datasets,omitempty"`
	Competitions []string `yaml:"competitions,omitempty"`
}

// Meeting is one planned session after validation and slug derivation.
type Meeting struct {
	Date        time.Time
	Name        string
	Title       string
	Slug        string
	Authors     []string
	Tags        []string
	Description string
	Papers      []Paper
	Content     string
	Kernel      KernelOptions
	Skip        []string

	// Position is the declaration index in the source; it breaks date ties.
	Position int

	Dir          string
	NotebookPath string
	PapersDir    string
}

// Attach derives the meeting's artifact paths under the semester root.
func (m *Meeting) Attach(semesterRoot string) {
	m.Dir = filepath.Join(semesterRoot, m.Slug)
	m.NotebookPath = filepath.Join(m.Dir, m.Slug+".ipynb")
	m.PapersDir = filepath.Join(m.Dir, "papers")
}

// DateLabel renders the date as MM/DD/YYYY.
func (m Meeting) DateLabel() string {
	return m.Date.Format(DisplayDateLayout)
}

// ISODate renders the date as YYYY-MM-DD.
func (m Meeting) ISODate() string {
	return m.Date.Format(DateLayout)
}

// String is the meeting's rendered identity, "MM/DD/YYYY ~ Name".
func (m Meeting) String() string {
	return m.DateLabel() + " ~ " + m.Name
}

// DisplayTitle returns Title when set, else Name.
func (m Meeting) DisplayTitle() string {
	if t := strings.TrimSpace(m.Title); t != "" {
		return t
	}
	return m.Name
}

// Skips reports whether the meeting opts out of step.
func (m Meeting) Skips(step string) bool {
	return slices.Contains(m.Skip, step)
}

// Syllabus is a validated, chronologically ordered meeting list.
type Syllabus struct {
	Group    group.Group
	Root     string
	Path     string
	Meetings []Meeting
}

// Len returns the number of meetings.
func (s Syllabus) Len() int { return len(s.Meetings) }

func sortMeetings(meetings []Meeting) {
	slices.SortStableFunc(meetings, func(a, b Meeting) int {
		return a.Date.Compare(b.Date)
	})
}
