package site

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"autobot/internal/syllabus"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("site: missing front matter")
	// ErrMalformedFrontMatter indicates the fence was never closed.
	ErrMalformedFrontMatter = errors.New("site: malformed front matter")
)

// FrontMatter is the metadata block at the top of a post or index page.
type FrontMatter struct {
	Title       string           `yaml:"title"`
	Date        string           `yaml:"date,omitempty"`
	Slug        string           `yaml:"slug,omitempty"`
	Authors     []string         `yaml:"authors,omitempty"`
	Tags        []string         `yaml:"tags,omitempty"`
	Categories  []string         `yaml:"categories,omitempty"`
	Description string           `yaml:"description,omitempty"`
	Group       string           `yaml:"group"`
	Semester    string           `yaml:"semester"`
	Kernel      string           `yaml:"kernel,omitempty"`
	Papers      []syllabus.Paper `yaml:"papers,omitempty"`
}

// WriteFrontMatter renders meta + body with YAML fences.
func WriteFrontMatter(meta FrontMatter, body []byte) ([]byte, error) {
	if meta.Title == "" {
		return nil, fmt.Errorf("site: front matter missing title")
	}
	var encoded bytes.Buffer
	enc := yaml.NewEncoder(&encoded)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return nil, fmt.Errorf("site: encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("site: encode front matter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(encoded.Bytes(), "\n"))
	buf.WriteString("\n---\n\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// ParseFrontMatter splits a fenced document into metadata and body.
func ParseFrontMatter(content []byte) (FrontMatter, []byte, error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return FrontMatter{}, nil, ErrMissingFrontMatter
	}
	parts := bytes.SplitN(normalized[4:], []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return FrontMatter{}, nil, ErrMalformedFrontMatter
	}
	var meta FrontMatter
	if err := yaml.Unmarshal(parts[0], &meta); err != nil {
		return FrontMatter{}, nil, fmt.Errorf("site: parse front matter: %w", err)
	}
	return meta, bytes.TrimPrefix(parts[1], []byte("\n")), nil
}
