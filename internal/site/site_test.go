package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"

	"autobot/internal/config"
	"autobot/internal/group"
	"autobot/internal/notebook"
	"autobot/internal/reconcile"
	"autobot/internal/services"
	"autobot/internal/syllabus"
)

func fixture(t *testing.T) (group.Group, syllabus.Meeting, string) {
	t.Helper()
	g := group.NewStandard("core", "", group.Semester{Season: group.Fall, Year: 2024}, group.SlugDated)
	m := syllabus.Meeting{
		Date:    time.Date(2024, 9, 5, 0, 0, 0, 0, time.UTC),
		Name:    "Kickoff",
		Title:   "Welcome Back",
		Slug:    "09-05-kickoff",
		Tags:    []string{"intro"},
		Content: "# %% [markdown]\n# ## Agenda\n# %%\nprint('hi')\n",
	}
	m.Attach(t.TempDir())
	data, err := notebook.Build(g, m, syllabus.Overhead{}).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(m.NotebookPath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return g, m, t.TempDir()
}

func siteConfig() config.Site {
	return config.Site{Enabled: true, PostsDir: "content/posts", GroupsDir: "content/groups"}
}

func TestExporterCreateSkipUpdate(t *testing.T) {
	g, m, siteDir := fixture(t)
	overhead := syllabus.Overhead{Coordinators: []syllabus.Coordinator{{Name: "Ada Lovelace"}}}
	exp := NewExporter(siteConfig(), siteDir, g, overhead, nil,
		WithKernelLink(func(m syllabus.Meeting) string { return "https://host/code/ada/" + m.Slug }))
	ctx := context.Background()

	want := filepath.Join(siteDir, "content", "posts", "core", "fa24", "09-05-kickoff.md")
	if exp.PostPath(m) != want {
		t.Fatalf("post path = %s", exp.PostPath(m))
	}
	outcome, err := exp.Apply(ctx, m, reconcile.ApplyOptions{})
	if err != nil || outcome.Kind != reconcile.OutcomeCreated {
		t.Fatalf("first apply = %+v, %v", outcome, err)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	meta, body, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if meta.Title != "Welcome Back" || meta.Date != "2024-09-05" || meta.Kernel != "https://host/code/ada/09-05-kickoff" {
		t.Fatalf("front matter = %+v", meta)
	}
	if len(meta.Authors) != 1 || meta.Authors[0] != "Ada Lovelace" {
		t.Fatalf("authors = %v", meta.Authors)
	}
	if !strings.HasPrefix(string(body), "## Agenda") || !strings.Contains(string(body), "```python\nprint('hi')\n```") {
		t.Fatalf("body = %q", body)
	}

	exists, _ := exp.Exists(ctx, m)
	outcome, err = exp.Apply(ctx, m, reconcile.ApplyOptions{Existed: exists})
	if err != nil || outcome.Kind != reconcile.OutcomeSkippedExists {
		t.Fatalf("unchanged apply = %+v, %v", outcome, err)
	}

	m.Title = "Welcome Back!"
	outcome, err = exp.Apply(ctx, m, reconcile.ApplyOptions{Existed: true})
	if err != nil || outcome.Kind != reconcile.OutcomeUpdated {
		t.Fatalf("changed apply = %+v, %v", outcome, err)
	}
}

func TestExporterSkipsWithoutNotebookOrWhenDisabled(t *testing.T) {
	g, m, siteDir := fixture(t)
	if err := os.Remove(m.NotebookPath); err != nil {
		t.Fatal(err)
	}
	exp := NewExporter(siteConfig(), siteDir, g, syllabus.Overhead{}, nil)
	if o, err := exp.Apply(context.Background(), m, reconcile.ApplyOptions{}); err != nil || o.Kind != reconcile.OutcomeSkipped {
		t.Fatalf("missing notebook = %+v, %v", o, err)
	}
	disabled := NewExporter(config.Site{}, siteDir, g, syllabus.Overhead{}, nil)
	if o, _ := disabled.Apply(context.Background(), m, reconcile.ApplyOptions{}); o.Kind != reconcile.OutcomeSkipped {
		t.Fatalf("disabled = %s", o.Kind)
	}
}

func TestExporterCommitsChangedPosts(t *testing.T) {
	g, m, siteDir := fixture(t)
	repo, err := git.PlainInit(siteDir, false)
	if err != nil {
		t.Fatal(err)
	}
	committer := NewCommitter(siteDir, "autobot", "bot@example.com")
	exp := NewExporter(siteConfig(), siteDir, g, syllabus.Overhead{}, nil, WithCommitter(committer))
	ctx := context.Background()

	if _, err := exp.Apply(ctx, m, reconcile.ApplyOptions{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("expected a commit: %v", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(commit.Message) != "Publish core/fa24/09-05-kickoff" || commit.Author.Email != "bot@example.com" {
		t.Fatalf("commit = %q by %s", commit.Message, commit.Author.Email)
	}

	outcome, err := exp.Apply(ctx, m, reconcile.ApplyOptions{Existed: true})
	if err != nil || outcome.Kind != reconcile.OutcomeSkippedExists {
		t.Fatalf("clean re-apply = %+v, %v", outcome, err)
	}
	again, _ := repo.Head()
	if again.Hash() != head.Hash() {
		t.Fatal("clean post produced another commit")
	}
}

func TestCommitterRequiresRepository(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "post.md")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewCommitter(dir, "a", "b").Commit(context.Background(), "msg", path)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRegistrarWritesIndexOnce(t *testing.T) {
	g, _, siteDir := fixture(t)
	r := NewRegistrar(siteDir, "content/groups", nil)
	ctx := context.Background()

	created, err := r.Register(ctx, g)
	if err != nil || !created {
		t.Fatalf("Register = %v, %v", created, err)
	}
	data, err := os.ReadFile(filepath.Join(siteDir, "content", "groups", "core", "fa24", "_index.md"))
	if err != nil {
		t.Fatal(err)
	}
	meta, _, err := ParseFrontMatter(data)
	if err != nil || meta.Title != "Core Fall 2024" {
		t.Fatalf("index front matter = %+v, %v", meta, err)
	}
	created, err = r.Register(ctx, g)
	if err != nil || created {
		t.Fatalf("second Register = %v, %v", created, err)
	}
}

func TestFrontMatterErrors(t *testing.T) {
	if _, _, err := ParseFrontMatter([]byte("no fence")); !errors.Is(err, ErrMissingFrontMatter) {
		t.Fatalf("expected missing, got %v", err)
	}
	if _, _, err := ParseFrontMatter([]byte("---\ntitle: x\n")); !errors.Is(err, ErrMalformedFrontMatter) {
		t.Fatalf("expected malformed, got %v", err)
	}
	if _, err := WriteFrontMatter(FrontMatter{}, nil); err == nil {
		t.Fatal("expected error for missing title")
	}
}

func TestRenderMarkdownIncludesOutputs(t *testing.T) {
	cell := notebook.NewCell(notebook.CellCode, "print(1)")
	cell.Outputs = []notebook.Output{{OutputType: "stream", Name: "stdout", Text: []string{"1\n"}}}
	nb := &notebook.Notebook{Cells: []notebook.Cell{cell}, NBFormat: 4}
	got := string(RenderMarkdown(nb))
	want := "```python\nprint(1)\n```\n\n```text\n1\n```\n"
	if got != want {
		t.Fatalf("render = %q, want %q", got, want)
	}
}
