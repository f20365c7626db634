package notebook

import (
	"strings"
)

const cellMarker = "# %%"

// ParseCells splits percent-format source into cells. A line starting with
// "# %%" opens a new cell; "[markdown]" on that line makes it a markdown
// cell whose lines drop their leading "# ". Text before the first marker is
// a code cell. Empty cells are dropped.
func ParseCells(content string) []Cell {
	var (
		cells   []Cell
		kind    = CellCode
		current []string
	)
	flush := func() {
		text := strings.Trim(strings.Join(current, "\n"), "\n")
		if strings.TrimSpace(text) != "" {
			cells = append(cells, NewCell(kind, text))
		}
		current = current[:0]
	}
	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), cellMarker) {
			flush()
			kind = CellCode
			if strings.Contains(line, "[markdown]") || strings.Contains(line, "[md]") {
				kind = CellMarkdown
			}
			continue
		}
		if kind == CellMarkdown {
			line = uncomment(line)
		}
		current = append(current, line)
	}
	flush()
	return cells
}

func uncomment(line string) string {
	switch {
	case strings.HasPrefix(line, "# "):
		return line[2:]
	case line == "#":
		return ""
	default:
		return line
	}
}
