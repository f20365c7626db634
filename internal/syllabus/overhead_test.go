package syllabus_test

import (
	"errors"
	"strings"
	"testing"

	"autobot/internal/services"
	"autobot/internal/syllabus"
	"autobot/internal/testsupport"
)

func TestLoadOverhead(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteSemester(t, root, "", testsupport.Overhead)

	overhead, err := syllabus.LoadOverhead(root)
	if err != nil {
		t.Fatalf("LoadOverhead: %v", err)
	}
	if got := strings.Join(overhead.AuthorNames(), ","); got != "Ada Lovelace,Alan Turing" {
		t.Fatalf("authors = %s", got)
	}
	if overhead.Room != "HEC 101" {
		t.Fatalf("room = %q", overhead.Room)
	}
}

func TestLoadOverheadErrors(t *testing.T) {
	missing := t.TempDir()
	_, err := syllabus.LoadOverhead(missing)
	if !errors.Is(err, services.ErrSchema) {
		t.Fatalf("missing overhead should be a schema error, got %v", err)
	}
	if syllabus.IsMissing(err) {
		t.Fatal("missing overhead must not read as a missing syllabus")
	}

	bad := t.TempDir()
	testsupport.WriteSemester(t, bad, "", "coordinators:\n  - role: director\n")
	if _, err := syllabus.LoadOverhead(bad); !errors.Is(err, services.ErrSchema) {
		t.Fatalf("nameless coordinator should be a schema error, got %v", err)
	}
}
