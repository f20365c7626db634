package syllabus

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// OverheadFileName is the coordinators file inside a semester root.
const OverheadFileName = "overhead.yml"

// Coordinator is one person running the semester.
type Coordinator struct {
	Name   string `yaml:"name"`
	Role   string `yaml:"role,omitempty"`
	GitHub string `yaml:"github,omitempty"`
	Email  string `yaml:"email,omitempty"`
}

// Overhead is the semester's administrative record. It is read-only here.
type Overhead struct {
	Coordinators []Coordinator `yaml:"coordinators"`
	Room         string        `yaml:"room,omitempty"`
	MeetingTime  string        `yaml:"meeting_time,omitempty"`
}

// AuthorNames returns the coordinator names in declaration order.
func (o Overhead) AuthorNames() []string {
	names := make([]string, 0, len(o.Coordinators))
	for _, c := range o.Coordinators {
		names = append(names, c.Name)
	}
	return names
}

// LoadOverhead reads overhead.yml from semesterRoot. A missing or malformed
// file is a SchemaError.
func LoadOverhead(semesterRoot string) (Overhead, error) {
	path := filepath.Join(semesterRoot, OverheadFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Overhead{}, &SchemaError{Path: path, Missing: true, Err: err}
		}
		return Overhead{}, fmt.Errorf("read overhead: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var overhead Overhead
	if err := dec.Decode(&overhead); err != nil && !errors.Is(err, io.EOF) {
		return Overhead{}, &SchemaError{Path: path, Err: err}
	}
	var problems []string
	for i, c := range overhead.Coordinators {
		if strings.TrimSpace(c.Name) == "" {
			problems = append(problems, fmt.Sprintf("coordinator #%d: name is required", i+1))
		}
	}
	if len(problems) > 0 {
		return Overhead{}, &SchemaError{Path: path, Problems: problems}
	}
	return overhead, nil
}
