package syllabus

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"autobot/internal/group"
	"autobot/internal/textutil"
)

type record struct {
	Date        string        `yaml:"date"`
	Name        string        `yaml:"name"`
	Title       string        `yaml:"title,omitempty"`
	Filename    string        `yaml:"filename,omitempty"`
	Authors     []string      `yaml:"authors,omitempty"`
	Tags        []string      `yaml:"tags,omitempty"`
	Description string        `yaml:"description,omitempty"`
	Papers      []Paper       `yaml:"papers,omitempty"`
	Content     string        `yaml:"content,omitempty"`
	Kernel      KernelOptions `yaml:"kernel,omitempty"`
	Skip        []string      `yaml:"skip,omitempty"`
}

func decodeRecords(data []byte) ([]record, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var records []record
	if err := dec.Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

// buildMeetings validates records and derives slugs. Every problem is
// collected so the operator can fix the file in one pass.
func buildMeetings(g group.Group, records []record) ([]Meeting, []string) {
	var problems []string
	meetings := make([]Meeting, 0, len(records))
	identities := make(map[string]int, len(records))
	slugs := make(map[string]int, len(records))

	for i, rec := range records {
		entry := i + 1
		name := strings.TrimSpace(rec.Name)
		rawDate := strings.TrimSpace(rec.Date)
		if name == "" {
			problems = append(problems, fmt.Sprintf("meeting #%d: name is required", entry))
		}
		if rawDate == "" {
			problems = append(problems, fmt.Sprintf("meeting #%d: date is required", entry))
		}
		if name == "" || rawDate == "" {
			continue
		}
		date, err := time.Parse(DateLayout, rawDate)
		if err != nil {
			problems = append(problems, fmt.Sprintf("meeting #%d (%s): date %q is not YYYY-MM-DD", entry, name, rawDate))
			continue
		}

		identity := rawDate + "\x00" + strings.ToLower(name)
		if prev, dup := identities[identity]; dup {
			problems = append(problems, fmt.Sprintf("meeting #%d duplicates meeting #%d (%s ~ %s)", entry, prev, rawDate, name))
			continue
		}
		identities[identity] = entry

		var slug string
		if override := strings.TrimSpace(rec.Filename); override != "" {
			slug = textutil.Slugify(override)
		} else {
			slug = g.MeetingSlug(date, name)
		}
		if slug == "" {
			problems = append(problems, fmt.Sprintf("meeting #%d (%s): filename %q yields an empty slug", entry, name, rec.Filename))
			continue
		}
		if prev, dup := slugs[slug]; dup {
			problems = append(problems, fmt.Sprintf("meeting #%d (%s): slug %q collides with meeting #%d", entry, name, slug, prev))
			continue
		}
		slugs[slug] = entry

		problems = append(problems, validatePapers(entry, name, rec.Papers)...)
		for _, step := range rec.Skip {
			if !slices.Contains(Steps, step) {
				problems = append(problems, fmt.Sprintf("meeting #%d (%s): unknown skip step %q (known: %s)", entry, name, step, strings.Join(Steps, ", ")))
			}
		}

		meetings = append(meetings, Meeting{
			Date:        date,
			Name:        name,
			Title:       strings.TrimSpace(rec.Title),
			Slug:        slug,
			Authors:     trimAll(rec.Authors),
			Tags:        trimAll(rec.Tags),
			Description: strings.TrimSpace(rec.Description),
			Papers:      rec.Papers,
			Content:     rec.Content,
			Kernel:      rec.Kernel,
			Skip:        rec.Skip,
			Position:    i,
		})
	}
	return meetings, problems
}

func validatePapers(entry int, name string, papers []Paper) []string {
	var problems []string
	keys := make(map[string]int, len(papers))
	for j, p := range papers {
		raw := strings.TrimSpace(p.URL)
		if raw == "" {
			problems = append(problems, fmt.Sprintf("meeting #%d (%s): paper #%d has no url", entry, name, j+1))
			continue
		}
		key := p.Key()
		if prev, dup := keys[key]; dup {
			problems = append(problems, fmt.Sprintf("meeting #%d (%s): paper #%d shares reference key %q with paper #%d; give it a distinct title", entry, name, j+1, key, prev))
		} else {
			keys[key] = j + 1
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = append(problems, fmt.Sprintf("meeting #%d (%s): paper #%d url %q must be absolute http(s)", entry, name, j+1, raw))
		}
	}
	return problems
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
