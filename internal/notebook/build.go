package notebook

import (
	"fmt"
	"strings"

	"autobot/internal/group"
	"autobot/internal/syllabus"
)

// Build renders a meeting into a fresh notebook: a header cell followed by
// the cells declared in the meeting's content.
func Build(g group.Group, m syllabus.Meeting, overhead syllabus.Overhead) *Notebook {
	cells := []Cell{NewCell(CellMarkdown, header(g, m, overhead))}
	cells = append(cells, ParseCells(m.Content)...)
	return &Notebook{
		Cells: cells,
		Metadata: Metadata{
			KernelSpec:   KernelSpec{DisplayName: "Python 3", Language: "python", Name: "python3"},
			LanguageInfo: LanguageInfo{Name: "python"},
			Autobot: &Provenance{
				Group:    g.Name(),
				Semester: g.Semester().String(),
				Slug:     m.Slug,
				Date:     m.ISODate(),
				Name:     m.Name,
			},
		},
		NBFormat:      4,
		NBFormatMinor: 5,
	}
}

// Authors returns the meeting's authors, falling back to the coordinators.
func Authors(m syllabus.Meeting, overhead syllabus.Overhead) []string {
	if len(m.Authors) > 0 {
		return m.Authors
	}
	return overhead.AuthorNames()
}

func header(g group.Group, m syllabus.Meeting, overhead syllabus.Overhead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", m.DisplayTitle())
	fmt.Fprintf(&b, "**%s %s** · %s\n", g.Label(), g.Semester().Label(), m.DateLabel())
	if authors := Authors(m, overhead); len(authors) > 0 {
		fmt.Fprintf(&b, "\nPresented by %s\n", strings.Join(authors, ", "))
	}
	if m.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", m.Description)
	}
	if len(m.Papers) > 0 {
		b.WriteString("\n## Papers\n\n")
		for _, p := range m.Papers {
			title := strings.TrimSpace(p.Title)
			if title == "" {
				title = p.URL
			}
			fmt.Fprintf(&b, "- [%s](%s)\n", title, p.URL)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
