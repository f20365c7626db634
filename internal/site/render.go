package site

import (
	"strings"

	"autobot/internal/notebook"
)

// RenderMarkdown turns a notebook into a post body. The generated header
// cell is dropped because the front matter carries the same facts.
func RenderMarkdown(nb *notebook.Notebook) []byte {
	cells := nb.Cells
	if nb.Metadata.Autobot != nil && len(cells) > 0 && cells[0].CellType == notebook.CellMarkdown {
		cells = cells[1:]
	}
	var b strings.Builder
	for _, cell := range cells {
		text := strings.TrimRight(cell.Text(), "\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		switch cell.CellType {
		case notebook.CellMarkdown:
			b.WriteString(text)
			b.WriteString("\n\n")
		case notebook.CellCode:
			b.WriteString("```python\n")
			b.WriteString(text)
			b.WriteString("\n```\n\n")
			for _, out := range cell.PlainOutputs() {
				if out = strings.TrimRight(out, "\n"); out == "" {
					continue
				}
				b.WriteString("```text\n")
				b.WriteString(out)
				b.WriteString("\n```\n\n")
			}
		}
	}
	return []byte(strings.TrimRight(b.String(), "\n") + "\n")
}
