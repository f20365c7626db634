package syllabus

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"autobot/internal/fileutil"
	"autobot/internal/group"
	"autobot/internal/logging"
)

// FileName is the syllabus file inside a semester root.
const FileName = "syllabus.yml"

//go:embed skeleton.yml
var skeleton []byte

// Store owns reading and writing one semester's syllabus source.
type Store struct {
	group  group.Group
	root   string
	path   string
	logger *slog.Logger
}

// NewStore binds a store to g's semester root beneath groupsRoot.
func NewStore(g group.Group, groupsRoot string, logger *slog.Logger) *Store {
	root := g.SemesterRoot(groupsRoot)
	return &Store{
		group:  g,
		root:   root,
		path:   filepath.Join(root, FileName),
		logger: logging.NewComponentLogger(logger, "syllabus"),
	}
}

// Path returns the syllabus file location.
func (s *Store) Path() string { return s.path }

// Root returns the semester root directory.
func (s *Store) Root() string { return s.root }

// Load reads, validates, and sorts the syllabus.
func (s *Store) Load(ctx context.Context) (Syllabus, error) {
	if err := ctx.Err(); err != nil {
		return Syllabus{}, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Syllabus{}, &SchemaError{Path: s.path, Missing: true, Err: ErrSyllabusMissing}
		}
		return Syllabus{}, fmt.Errorf("read syllabus: %w", err)
	}
	records, err := decodeRecords(data)
	if err != nil {
		return Syllabus{}, &SchemaError{Path: s.path, Err: err}
	}
	meetings, problems := buildMeetings(s.group, records)
	if len(problems) > 0 {
		return Syllabus{}, &SchemaError{Path: s.path, Problems: problems}
	}
	sortMeetings(meetings)
	for i := range meetings {
		meetings[i].Attach(s.root)
	}
	s.logger.Debug("syllabus loaded",
		logging.String("path", s.path),
		logging.Int("meetings", len(meetings)),
	)
	return Syllabus{Group: s.group, Root: s.root, Path: s.path, Meetings: meetings}, nil
}

// PersistSorted rewrites the source in ascending date order. The YAML node
// tree is reordered in place so comments travel with their entries. It
// reports whether the file changed; an already sorted file is left alone.
func (s *Store) PersistSorted(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, &SchemaError{Path: s.path, Missing: true, Err: ErrSyllabusMissing}
		}
		return false, fmt.Errorf("read syllabus: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false, &SchemaError{Path: s.path, Err: err}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return false, nil
	}
	seq := doc.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return false, &SchemaError{Path: s.path, Problems: []string{"top level must be a list of meetings"}}
	}

	type entry struct {
		node *yaml.Node
		date time.Time
	}
	entries := make([]entry, 0, len(seq.Content))
	for i, item := range seq.Content {
		raw := strings.TrimSpace(mappingValue(item, "date"))
		date, err := time.Parse(DateLayout, raw)
		if err != nil {
			return false, &SchemaError{Path: s.path, Problems: []string{fmt.Sprintf("meeting #%d: date %q is not YYYY-MM-DD", i+1, raw)}}
		}
		entries = append(entries, entry{node: item, date: date})
	}
	byDate := func(a, b entry) int { return a.date.Compare(b.date) }
	if slices.IsSortedFunc(entries, byDate) {
		return false, nil
	}
	slices.SortStableFunc(entries, byDate)
	for i, e := range entries {
		seq.Content[i] = e.node
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return false, fmt.Errorf("encode syllabus: %w", err)
	}
	if err := enc.Close(); err != nil {
		return false, fmt.Errorf("encode syllabus: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("write syllabus: %w", err)
	}
	s.logger.Info("syllabus reordered by date", logging.String("path", s.path))
	return true, nil
}

// Init writes a commented skeleton when no syllabus exists. It reports
// whether a file was created.
func (s *Store) Init(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := fileutil.WriteNew(s.path, skeleton, 0o644)
	if errors.Is(err, fileutil.ErrExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("initialise syllabus: %w", err)
	}
	s.logger.Info("syllabus skeleton created", logging.String("path", s.path))
	return true, nil
}

func mappingValue(node *yaml.Node, key string) string {
	if node == nil || node.Kind != yaml.MappingNode {
		return ""
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1].Value
		}
	}
	return ""
}
