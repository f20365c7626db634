package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// ThreeMeetings is the canonical out-of-order fixture: Intro is declared
// first but dated last; Kickoff and Setup share a date.
const ThreeMeetings = `- date: 2024-03-05
  name: Intro
  content: |
    # %% [markdown]
    # Intro notes
    # %%
    print("intro")
- date: 2024-02-01
  name: Kickoff
- date: 2024-02-01
  name: Setup
`

// Overhead is a minimal valid overhead.yml.
const Overhead = `coordinators:
  - name: Ada Lovelace
    role: director
    github: ada
  - name: Alan Turing
    role: coordinator
room: HEC 101
meeting_time: Wednesdays 7pm
`

// WriteSemester writes syllabus and overhead documents into root. An empty
// document is skipped so tests can model missing sources.
func WriteSemester(t testing.TB, root, syllabus, overhead string) {
	t.Helper()

	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", root, err)
	}
	if syllabus != "" {
		WriteText(t, filepath.Join(root, "syllabus.yml"), syllabus)
	}
	if overhead != "" {
		WriteText(t, filepath.Join(root, "overhead.yml"), overhead)
	}
}

// WriteText writes content to path, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadText returns the content of path or fails the test.
func ReadText(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
