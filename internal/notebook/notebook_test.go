package notebook

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"autobot/internal/group"
	"autobot/internal/reconcile"
	"autobot/internal/syllabus"
)

const content = `import numpy as np
# %% [markdown]
# ## Warmup
#
# Try the cell below.
# %%
x = np.arange(3)
print(x)
`

func TestParseCells(t *testing.T) {
	cells := ParseCells(content)
	if len(cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(cells))
	}
	if cells[0].CellType != CellCode || cells[0].Text() != "import numpy as np" {
		t.Fatalf("cell 0 = %s %q", cells[0].CellType, cells[0].Text())
	}
	if cells[1].CellType != CellMarkdown || cells[1].Text() != "## Warmup\n\nTry the cell below." {
		t.Fatalf("cell 1 = %s %q", cells[1].CellType, cells[1].Text())
	}
	if got := cells[2].Source; len(got) != 2 || got[0] != "x = np.arange(3)\n" || got[1] != "print(x)" {
		t.Fatalf("cell 2 source = %q", got)
	}
}

func fixture(t *testing.T) (group.Group, syllabus.Meeting) {
	t.Helper()
	g := group.NewStandard("core", "", group.Semester{Season: group.Spring, Year: 2024}, group.SlugDated)
	m := syllabus.Meeting{
		Date:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Name:    "Kickoff",
		Slug:    "02-01-kickoff",
		Content: content,
		Papers:  []syllabus.Paper{{Title: "Attention", URL: "https://arxiv.org/pdf/1706.03762"}},
	}
	m.Attach(t.TempDir())
	return g, m
}

func TestBuildHeaderAndRoundTrip(t *testing.T) {
	g, m := fixture(t)
	overhead := syllabus.Overhead{Coordinators: []syllabus.Coordinator{{Name: "Ada Lovelace"}}}
	data, err := Build(g, m, overhead).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"outputs": []`) || !strings.Contains(string(data), `"execution_count": null`) {
		t.Fatalf("code cells must carry outputs and execution_count:\n%s", data)
	}
	nb, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nb.Cells) != 4 {
		t.Fatalf("expected header + 3 cells, got %d", len(nb.Cells))
	}
	head := nb.Cells[0].Text()
	for _, want := range []string{"# Kickoff", "Spring 2024", "02/01/2024", "Presented by Ada Lovelace", "[Attention](https://arxiv.org/pdf/1706.03762)"} {
		if !strings.Contains(head, want) {
			t.Errorf("header missing %q:\n%s", want, head)
		}
	}
	if nb.Metadata.Autobot == nil || nb.Metadata.Autobot.Slug != "02-01-kickoff" {
		t.Fatalf("provenance = %+v", nb.Metadata.Autobot)
	}
}

func TestStepCreatesThenRegeneratesOnlyOnOverwrite(t *testing.T) {
	g, m := fixture(t)
	step := NewStep(g, syllabus.Overhead{}, nil)
	ctx := context.Background()

	outcome, err := step.Apply(ctx, m, reconcile.ApplyOptions{})
	if err != nil || outcome.Kind != reconcile.OutcomeCreated {
		t.Fatalf("first apply = %+v, %v", outcome, err)
	}
	if ok, _ := step.Exists(ctx, m); !ok {
		t.Fatal("notebook should exist")
	}
	if err := os.WriteFile(m.NotebookPath, []byte("edited by hand"), 0o644); err != nil {
		t.Fatal(err)
	}

	outcome, err = step.Apply(ctx, m, reconcile.ApplyOptions{Existed: true})
	if err != nil || outcome.Kind != reconcile.OutcomeSkippedExists {
		t.Fatalf("apply without overwrite = %+v, %v", outcome, err)
	}
	if got, _ := os.ReadFile(m.NotebookPath); string(got) != "edited by hand" {
		t.Fatal("notebook replaced without overwrite")
	}

	outcome, err = step.Apply(ctx, m, reconcile.ApplyOptions{Existed: true, Overwrite: true})
	if err != nil || outcome.Kind != reconcile.OutcomeUpdated {
		t.Fatalf("apply with overwrite = %+v, %v", outcome, err)
	}
	if _, err := Read(m.NotebookPath); err != nil {
		t.Fatalf("regenerated notebook unreadable: %v", err)
	}
}
