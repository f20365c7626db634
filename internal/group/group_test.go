package group_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autobot/internal/group"
)

func TestParseSemester(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		label   string
		wantErr bool
	}{
		{in: "fa24", want: "fa24", label: "Fall 2024"},
		{in: " SP2025 ", want: "sp25", label: "Spring 2025"},
		{in: "su09", want: "su09", label: "Summer 2009"},
		{in: "wi24", wantErr: true},
		{in: "fa", wantErr: true},
		{in: "fa123", wantErr: true},
	}
	for _, tc := range tests {
		sem, err := group.ParseSemester(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseSemester(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSemester(%q) error: %v", tc.in, err)
			continue
		}
		if sem.String() != tc.want || sem.Label() != tc.label {
			t.Errorf("ParseSemester(%q) = %s/%s", tc.in, sem, sem.Label())
		}
	}
}

func TestCurrentSemester(t *testing.T) {
	cases := map[time.Month]string{
		time.January:   "sp24",
		time.April:     "sp24",
		time.May:       "su24",
		time.July:      "su24",
		time.August:    "fa24",
		time.December:  "fa24",
		time.September: "fa24",
	}
	for month, want := range cases {
		got := group.CurrentSemester(time.Date(2024, month, 15, 0, 0, 0, 0, time.UTC)).String()
		if got != want {
			t.Errorf("CurrentSemester(%s) = %s, want %s", month, got, want)
		}
	}
}

func TestDefaultRegistry(t *testing.T) {
	reg := group.DefaultRegistry()
	names := reg.Names()
	if strings.Join(names, ",") != "core,data-science,gbm,intelligence,supplementary" {
		t.Fatalf("unexpected names %v", names)
	}

	sem := group.Semester{Season: group.Fall, Year: 2024}
	core, err := reg.New("Core", sem)
	if err != nil {
		t.Fatalf("New(core): %v", err)
	}
	date := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if got := core.MeetingSlug(date, "Kickoff!"); got != "02-01-kickoff" {
		t.Fatalf("unexpected dated slug %q", got)
	}
	if got := core.SemesterRoot("/groups"); got != filepath.Join("/groups", "core", "fa24") {
		t.Fatalf("unexpected root %q", got)
	}
	if got := core.SitePath(); got != "core/fa24" {
		t.Fatalf("unexpected site path %q", got)
	}

	gbm, err := reg.New("gbm", sem)
	if err != nil {
		t.Fatalf("New(gbm): %v", err)
	}
	if got := gbm.MeetingSlug(date, "Intro to Git"); got != "intro-to-git" {
		t.Fatalf("unexpected plain slug %q", got)
	}
	if gbm.Label() != "GBM" {
		t.Fatalf("unexpected label %q", gbm.Label())
	}

	if _, err := reg.New("chess", sem); !errors.Is(err, group.ErrUnknownGroup) {
		t.Fatalf("expected ErrUnknownGroup, got %v", err)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := group.NewRegistry()
	factory := func(s group.Semester) group.Group { return group.NewStandard("x", "", s, group.SlugPlain) }
	if err := reg.Register("x", factory); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register("X", factory); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestKernelSlugIsBounded(t *testing.T) {
	g := group.NewStandard("data-science", "", group.Semester{Season: group.Spring, Year: 2025}, group.SlugDated)
	slug := g.KernelSlug("03-05-an-extremely-long-meeting-name-that-keeps-going-and-going")
	if len(slug) > 50 {
		t.Fatalf("kernel slug too long: %d", len(slug))
	}
	if !strings.HasPrefix(slug, "data-science-sp25-03-05") {
		t.Fatalf("unexpected kernel slug %q", slug)
	}
	if g.Label() != "Data Science" {
		t.Fatalf("unexpected derived label %q", g.Label())
	}
}

func TestKernelSlugKeepsLongNamesDistinct(t *testing.T) {
	g := group.NewStandard("supplementary", "", group.Semester{Season: group.Fall, Year: 2024}, group.SlugPlain)
	date := time.Date(2024, 9, 4, 0, 0, 0, 0, time.UTC)
	first := g.KernelSlug(g.MeetingSlug(date, "Introduction to Convolutional Neural Networks Part 1"))
	second := g.KernelSlug(g.MeetingSlug(date, "Introduction to Convolutional Neural Networks Part 2"))
	if first == second {
		t.Fatalf("distinct meetings share kernel slug %q", first)
	}
	for _, slug := range []string{first, second} {
		if len(slug) > 50 {
			t.Fatalf("kernel slug too long: %q", slug)
		}
		if !strings.HasPrefix(slug, "supplementary-fa24-introduction-to-convolut") {
			t.Fatalf("unexpected kernel slug %q", slug)
		}
	}
	if again := g.KernelSlug(g.MeetingSlug(date, "Introduction to Convolutional Neural Networks Part 1")); again != first {
		t.Fatalf("kernel slug not stable: %q vs %q", again, first)
	}
	if short := g.KernelSlug("intro"); short != "supplementary-fa24-intro" {
		t.Fatalf("short slug changed: %q", short)
	}
}
