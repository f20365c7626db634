// Package notebook builds and reads the nbformat-4 notebooks that hold each
// meeting's material.
package notebook

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Notebook is the subset of nbformat 4 that autobot writes and reads.
type Notebook struct {
	Cells         []Cell   `json:"cells"`
	Metadata      Metadata `json:"metadata"`
	NBFormat      int      `json:"nbformat"`
	NBFormatMinor int      `json:"nbformat_minor"`
}

// Metadata is notebook-level metadata.
type Metadata struct {
	KernelSpec   KernelSpec   `json:"kernelspec"`
	LanguageInfo LanguageInfo `json:"language_info"`
	Autobot      *Provenance  `json:"autobot,omitempty"`
}

type KernelSpec struct {
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
	Name        string `json:"name"`
}

type LanguageInfo struct {
	Name string `json:"name"`
}

// Provenance ties a notebook back to its meeting.
type Provenance struct {
	Group    string `json:"group"`
	Semester string `json:"semester"`
	Slug     string `json:"slug"`
	Date     string `json:"date"`
	Name     string `json:"name"`
}

// CellType is "markdown" or "code".
type CellType string

const (
	CellMarkdown CellType = "markdown"
	CellCode     CellType = "code"
)

// Cell is one notebook cell. Source is kept as nbformat's line list.
type Cell struct {
	CellType       CellType       `json:"cell_type"`
	Metadata       map[string]any `json:"metadata"`
	Source         []string       `json:"source"`
	ExecutionCount *int           `json:"execution_count,omitempty"`
	Outputs        []Output       `json:"outputs,omitempty"`
}

// Output is a code cell output. Only stream text and plain-text results are
// interpreted; everything else round-trips through Data.
type Output struct {
	OutputType string         `json:"output_type"`
	Name       string         `json:"name,omitempty"`
	Text       []string       `json:"text,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// MarshalJSON emits the fields nbformat requires for the cell type: code
// cells always carry outputs and execution_count, markdown cells never do.
func (c Cell) MarshalJSON() ([]byte, error) {
	metadata := c.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	source := c.Source
	if source == nil {
		source = []string{}
	}
	if c.CellType != CellCode {
		return json.Marshal(struct {
			CellType CellType       `json:"cell_type"`
			Metadata map[string]any `json:"metadata"`
			Source   []string       `json:"source"`
		}{c.CellType, metadata, source})
	}
	outputs := c.Outputs
	if outputs == nil {
		outputs = []Output{}
	}
	return json.Marshal(struct {
		CellType       CellType       `json:"cell_type"`
		ExecutionCount *int           `json:"execution_count"`
		Metadata       map[string]any `json:"metadata"`
		Outputs        []Output       `json:"outputs"`
		Source         []string       `json:"source"`
	}{c.CellType, c.ExecutionCount, metadata, outputs, source})
}

// Text joins the cell source.
func (c Cell) Text() string {
	return strings.Join(c.Source, "")
}

// PlainOutputs returns the cell's textual outputs.
func (c Cell) PlainOutputs() []string {
	var out []string
	for _, o := range c.Outputs {
		switch o.OutputType {
		case "stream":
			out = append(out, strings.Join(o.Text, ""))
		case "execute_result", "display_data":
			if lines, ok := o.Data["text/plain"].([]any); ok {
				var b strings.Builder
				for _, l := range lines {
					if s, ok := l.(string); ok {
						b.WriteString(s)
					}
				}
				out = append(out, b.String())
			} else if s, ok := o.Data["text/plain"].(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// NewCell builds a cell from text, splitting it the way Jupyter stores it.
func NewCell(kind CellType, text string) Cell {
	return Cell{CellType: kind, Metadata: map[string]any{}, Source: splitSource(text)}
}

// Marshal renders the notebook as indented JSON with a trailing newline.
func (n *Notebook) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(n, "", " ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Read parses the notebook at path.
func Read(path string) (*Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes notebook JSON.
func Parse(data []byte) (*Notebook, error) {
	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("parse notebook: %w", err)
	}
	if nb.NBFormat != 4 {
		return nil, fmt.Errorf("parse notebook: unsupported nbformat %d", nb.NBFormat)
	}
	return &nb, nil
}

func splitSource(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
