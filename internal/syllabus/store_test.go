package syllabus_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"autobot/internal/group"
	"autobot/internal/services"
	"autobot/internal/syllabus"
	"autobot/internal/testsupport"
)

func newStore(t *testing.T, content string) (*syllabus.Store, string) {
	t.Helper()
	g := group.NewStandard("core", "", group.Semester{Season: group.Spring, Year: 2024}, group.SlugDated)
	base := t.TempDir()
	store := syllabus.NewStore(g, base, nil)
	testsupport.WriteSemester(t, store.Root(), content, "")
	return store, store.Root()
}

func names(meetings []syllabus.Meeting) []string {
	out := make([]string, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, m.Name)
	}
	return out
}

func TestLoadSortsChronologicallyWithStableTies(t *testing.T) {
	store, root := newStore(t, testsupport.ThreeMeetings)

	syl, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := strings.Join(names(syl.Meetings), ",")
	if got != "Kickoff,Setup,Intro" {
		t.Fatalf("order = %s, want Kickoff,Setup,Intro", got)
	}
	kickoff := syl.Meetings[0]
	if kickoff.Slug != "02-01-kickoff" {
		t.Fatalf("slug = %q", kickoff.Slug)
	}
	if kickoff.DateLabel() != "02/01/2024" || kickoff.String() != "02/01/2024 ~ Kickoff" {
		t.Fatalf("rendering = %q / %q", kickoff.DateLabel(), kickoff.String())
	}
	wantNotebook := filepath.Join(root, "02-01-kickoff", "02-01-kickoff.ipynb")
	if kickoff.NotebookPath != wantNotebook {
		t.Fatalf("notebook path = %q, want %q", kickoff.NotebookPath, wantNotebook)
	}
	if syl.Meetings[2].Position != 0 {
		t.Fatalf("Intro position = %d, want declaration index 0", syl.Meetings[2].Position)
	}
}

func TestLoadRejectsDuplicateIdentity(t *testing.T) {
	store, _ := newStore(t, `- date: 2024-02-01
  name: Kickoff
- date: 2024-02-01
  name: Kickoff
`)
	_, err := store.Load(context.Background())
	var schemaErr *syllabus.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected ErrSchema marker, got %v", err)
	}
	if syllabus.IsMissing(err) {
		t.Fatal("duplicate identity must not read as a missing syllabus")
	}
	if len(schemaErr.Problems) != 1 || !strings.Contains(schemaErr.Problems[0], "duplicates") {
		t.Fatalf("problems = %v", schemaErr.Problems)
	}
}

func TestLoadCollectsValidationProblems(t *testing.T) {
	store, _ := newStore(t, `- date: 2024-02-01
- name: No Date
- date: 02/01/2024
  name: Bad Date
- date: 2024-02-08
  name: Papers
  papers:
    - title: relative
      url: /pdf/1
  skip: [render]
`)
	_, err := store.Load(context.Background())
	var schemaErr *syllabus.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(schemaErr.Problems) != 5 {
		t.Fatalf("expected 5 problems, got %d: %v", len(schemaErr.Problems), schemaErr.Problems)
	}
}

func TestLoadRejectsSlugCollision(t *testing.T) {
	store, _ := newStore(t, `- date: 2024-02-01
  name: Deep Learning
- date: 2024-02-01
  name: deep-learning!
`)
	_, err := store.Load(context.Background())
	if !errors.Is(err, services.ErrSchema) || !strings.Contains(err.Error(), "collides") {
		t.Fatalf("expected slug collision schema error, got %v", err)
	}
}

func TestLoadRejectsDuplicateReferenceKeys(t *testing.T) {
	store, _ := newStore(t, `- date: 2024-02-01
  name: Kickoff
  papers:
    - title: Slides
      url: https://example.org/a.pdf
    - title: slides!
      url: https://example.org/b.pdf
    - url: https://example.org/c.pdf
`)
	_, err := store.Load(context.Background())
	var schemaErr *syllabus.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(schemaErr.Problems) != 1 || !strings.Contains(schemaErr.Problems[0], `reference key "slides"`) {
		t.Fatalf("unexpected problems %v", schemaErr.Problems)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	store, _ := newStore(t, `- date: 2024-02-01
  name: Kickoff
  titel: typo
`)
	if _, err := store.Load(context.Background()); !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected schema error for unknown field, got %v", err)
	}
}

func TestLoadMissingIsDistinct(t *testing.T) {
	store, _ := newStore(t, "")
	_, err := store.Load(context.Background())
	if !syllabus.IsMissing(err) {
		t.Fatalf("expected missing syllabus, got %v", err)
	}
	if !errors.Is(err, services.ErrSchema) {
		t.Fatalf("missing syllabus should still be a schema error: %v", err)
	}
}

func TestFilenameOverridesSlug(t *testing.T) {
	store, _ := newStore(t, `- date: 2024-02-01
  name: Kickoff
  filename: Welcome Back
`)
	syl, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if syl.Meetings[0].Slug != "welcome-back" {
		t.Fatalf("slug = %q", syl.Meetings[0].Slug)
	}
}

func TestPersistSortedRewritesOnceAndKeepsComments(t *testing.T) {
	source := `- date: 2024-03-05
  name: Intro # first draft
- date: 2024-02-01
  name: Kickoff
`
	store, _ := newStore(t, source)
	ctx := context.Background()

	changed, err := store.PersistSorted(ctx)
	if err != nil {
		t.Fatalf("PersistSorted: %v", err)
	}
	if !changed {
		t.Fatal("expected unsorted file to be rewritten")
	}
	rewritten := testsupport.ReadText(t, store.Path())
	if !strings.Contains(rewritten, "# first draft") {
		t.Fatalf("comment lost:\n%s", rewritten)
	}
	if strings.Index(rewritten, "Kickoff") > strings.Index(rewritten, "Intro") {
		t.Fatalf("file not sorted:\n%s", rewritten)
	}

	changed, err = store.PersistSorted(ctx)
	if err != nil {
		t.Fatalf("second PersistSorted: %v", err)
	}
	if changed {
		t.Fatal("sorted file should not be rewritten")
	}
	if again := testsupport.ReadText(t, store.Path()); again != rewritten {
		t.Fatal("sorted file content changed")
	}

	syl, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load after persist: %v", err)
	}
	if got := strings.Join(names(syl.Meetings), ","); got != "Kickoff,Intro" {
		t.Fatalf("order after persist = %s", got)
	}
}

func TestInitWritesSkeletonOnce(t *testing.T) {
	store, _ := newStore(t, "")
	ctx := context.Background()

	created, err := store.Init(ctx)
	if err != nil || !created {
		t.Fatalf("Init = %v, %v", created, err)
	}
	created, err = store.Init(ctx)
	if err != nil || created {
		t.Fatalf("second Init = %v, %v", created, err)
	}
	syl, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("skeleton should load: %v", err)
	}
	if syl.Len() != 0 {
		t.Fatalf("skeleton should declare no meetings, got %d", syl.Len())
	}
}
