package group

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"autobot/internal/textutil"
)

// Group is the capability surface the engine needs from an organizational
// unit: where its semesters live and how its meetings are named.
type Group interface {
	Name() string
	Label() string
	Semester() Semester
	// SemesterRoot returns the semester's directory under groupsRoot.
	SemesterRoot(groupsRoot string) string
	// MeetingSlug derives the filesystem- and URL-safe identifier for a meeting.
	MeetingSlug(date time.Time, name string) string
	// KernelSlug derives the hosted-kernel identity for a meeting slug.
	KernelSlug(meetingSlug string) string
	// SitePath returns the group/semester path segment used on the public site.
	SitePath() string
}

// SlugPolicy selects how meeting slugs are derived.
type SlugPolicy int

const (
	// SlugDated prefixes the name token with the meeting's MM-DD.
	SlugDated SlugPolicy = iota
	// SlugPlain uses the name token alone.
	SlugPlain
)

const (
	maxKernelSlugLength = 50
	kernelHashLength    = 6
)

// Standard is the Group implementation shared by the built-in groups.
type Standard struct {
	name     string
	label    string
	semester Semester
	policy   SlugPolicy
}

// NewStandard builds a Group with the given slug policy. An empty label is
// derived from the name.
func NewStandard(name, label string, semester Semester, policy SlugPolicy) *Standard {
	name = strings.ToLower(strings.TrimSpace(name))
	if strings.TrimSpace(label) == "" {
		label = textutil.TitleCase(strings.ReplaceAll(name, "-", " "))
	}
	return &Standard{name: name, label: label, semester: semester, policy: policy}
}

func (g *Standard) Name() string       { return g.name }
func (g *Standard) Label() string      { return g.label }
func (g *Standard) Semester() Semester { return g.semester }

func (g *Standard) SemesterRoot(groupsRoot string) string {
	return filepath.Join(groupsRoot, g.name, g.semester.String())
}

func (g *Standard) MeetingSlug(date time.Time, name string) string {
	token := textutil.Slugify(name)
	if token == "" {
		token = "meeting"
	}
	if g.policy == SlugPlain {
		return token
	}
	return date.Format("01-02") + "-" + token
}

// KernelSlug joins group, semester and meeting slug. Identities longer than
// the host allows are cut and suffixed with a digest of the full identity,
// so meetings sharing a long prefix stay distinct.
func (g *Standard) KernelSlug(meetingSlug string) string {
	slug := strings.Trim(strings.Join([]string{g.name, g.semester.String(), meetingSlug}, "-"), "-")
	if len(slug) <= maxKernelSlugLength {
		return slug
	}
	sum := sha256.Sum256([]byte(slug))
	prefix := strings.TrimRight(slug[:maxKernelSlugLength-kernelHashLength-1], "-")
	return prefix + "-" + hex.EncodeToString(sum[:])[:kernelHashLength]
}

func (g *Standard) SitePath() string {
	return g.name + "/" + g.semester.String()
}
