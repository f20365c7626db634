// Package kernels mirrors meeting notebooks to a hosted interactive-kernel
// service. Each meeting maps to one remote kernel identified by
// <username>/<group kernel slug>; publishing is create-or-update.
package kernels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"autobot/internal/fileutil"
	"autobot/internal/group"
	"autobot/internal/logging"
	"autobot/internal/reconcile"
	"autobot/internal/syllabus"
)

// MetadataFile is written beside the notebook so the kernel can also be
// pushed by hand with the host's own CLI.
const MetadataFile = "kernel-metadata.json"

// Metadata mirrors the host CLI's kernel-metadata.json.
type Metadata struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	CodeFile           string   `json:"code_file"`
	Language           string   `json:"language"`
	KernelType         string   `json:"kernel_type"`
	IsPrivate          bool     `json:"is_private"`
	EnableGPU          bool     `json:"enable_gpu"`
	EnableInternet     bool     `json:"enable_internet"`
	DatasetSources     []string `json:"dataset_sources"`
	CompetitionSources []string `json:"competition_sources"`
	KernelSources      []string `json:"kernel_sources"`
}

// Publisher is the kernel reconcile step.
type Publisher struct {
	client  *Client
	group   group.Group
	private bool
	enabled bool
	logger  *slog.Logger

	// pulled holds kernels fetched by Exists until Apply consumes them.
	mu     sync.Mutex
	pulled map[string]Kernel
}

// NewPublisher returns the kernel step. When enabled is false, or the client
// lacks credentials, every meeting reports skipped.
func NewPublisher(client *Client, g group.Group, enabled, private bool, logger *slog.Logger) *Publisher {
	return &Publisher{
		client:  client,
		group:   g,
		private: private,
		enabled: enabled && client != nil && client.username != "" && client.key != "",
		logger:  logging.NewComponentLogger(logger, "kernels"),
		pulled:  make(map[string]Kernel),
	}
}

func (p *Publisher) Kind() reconcile.ArtifactKind { return reconcile.KindKernel }

// Ref returns the remote identity for a meeting.
func (p *Publisher) Ref(m syllabus.Meeting) string {
	return p.client.Username() + "/" + p.group.KernelSlug(m.Slug)
}

func (p *Publisher) Exists(ctx context.Context, m syllabus.Meeting) (bool, error) {
	if !p.enabled {
		return false, nil
	}
	slug := p.group.KernelSlug(m.Slug)
	remote, found, err := p.client.Pull(ctx, slug)
	if err != nil || !found {
		return false, err
	}
	p.mu.Lock()
	p.pulled[slug] = remote
	p.mu.Unlock()
	return true, nil
}

// remote returns the kernel Exists pulled for slug, pulling it only when
// Exists did not run first.
func (p *Publisher) remote(ctx context.Context, slug string) (Kernel, bool, error) {
	p.mu.Lock()
	remote, ok := p.pulled[slug]
	delete(p.pulled, slug)
	p.mu.Unlock()
	if ok {
		return remote, true, nil
	}
	return p.client.Pull(ctx, slug)
}

func (p *Publisher) Apply(ctx context.Context, m syllabus.Meeting, opts reconcile.ApplyOptions) (reconcile.Outcome, error) {
	if !p.enabled {
		return reconcile.Skipped("kernel publishing not configured"), nil
	}
	source, err := os.ReadFile(m.NotebookPath)
	if errors.Is(err, fs.ErrNotExist) {
		return reconcile.Skipped("notebook not present"), nil
	}
	if err != nil {
		return reconcile.Outcome{}, fmt.Errorf("read notebook: %w", err)
	}
	slug := p.group.KernelSlug(m.Slug)
	ref := p.Ref(m)
	meta := p.metadata(m, ref)
	logger := logging.WithContext(ctx, p.logger)

	if opts.Existed {
		remote, found, err := p.remote(ctx, slug)
		if err != nil {
			return reconcile.Outcome{}, err
		}
		if found && remote.Source == string(source) {
			if err := writeMetadata(m, meta); err != nil {
				return reconcile.Outcome{}, err
			}
			return reconcile.SkippedExists(ref), nil
		}
	}

	resp, err := p.client.Push(ctx, PushRequest{
		Slug:                   ref,
		NewTitle:               meta.Title,
		Text:                   string(source),
		Language:               meta.Language,
		KernelType:             meta.KernelType,
		IsPrivate:              meta.IsPrivate,
		EnableGPU:              meta.EnableGPU,
		EnableInternet:         meta.EnableInternet,
		DatasetDataSources:     meta.DatasetSources,
		CompetitionDataSources: meta.CompetitionSources,
		KernelDataSources:      meta.KernelSources,
		CategoryIDs:            []string{},
	})
	if err != nil {
		return reconcile.Outcome{}, err
	}
	if err := writeMetadata(m, meta); err != nil {
		return reconcile.Outcome{}, err
	}
	logger.Info("kernel pushed",
		logging.String("ref", ref),
		logging.Int("version", resp.VersionNumber),
		logging.String("url", resp.URL),
	)
	detail := resp.URL
	if detail == "" {
		detail = ref
	}
	if opts.Existed {
		return reconcile.Updated(detail), nil
	}
	return reconcile.Created(detail), nil
}

func (p *Publisher) metadata(m syllabus.Meeting, ref string) Metadata {
	return Metadata{
		ID:                 ref,
		Title:              p.group.KernelSlug(m.Slug),
		CodeFile:           filepath.Base(m.NotebookPath),
		Language:           "python",
		KernelType:         "notebook",
		IsPrivate:          p.private,
		EnableGPU:          m.Kernel.GPU,
		EnableInternet:     m.Kernel.Internet,
		DatasetSources:     nonNil(m.Kernel.Datasets),
		CompetitionSources: nonNil(m.Kernel.Competitions),
		KernelSources:      []string{},
	}
}

func writeMetadata(m syllabus.Meeting, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode kernel metadata: %w", err)
	}
	data = append(data, '\n')
	path := filepath.Join(m.Dir, MetadataFile)
	if current, err := os.ReadFile(path); err == nil && string(current) == string(data) {
		return nil
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write kernel metadata: %w", err)
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
