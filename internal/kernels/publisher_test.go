package kernels

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"autobot/internal/config"
	"autobot/internal/group"
	"autobot/internal/reconcile"
	"autobot/internal/services"
	"autobot/internal/syllabus"
)

// fakeHost is an in-memory kernels API.
type fakeHost struct {
	mu      sync.Mutex
	kernels map[string]string
	pushes  int
	pulls   int
	reject  bool
}

func (h *fakeHost) pullCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pulls
}

func (h *fakeHost) pushCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pushes
}

func (h *fakeHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, key, ok := r.BasicAuth()
	if !ok || user != "ada" || key != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	switch r.URL.Path {
	case "/kernels/pull":
		h.pulls++
		ref := r.URL.Query().Get("userName") + "/" + r.URL.Query().Get("kernelSlug")
		source, ok := h.kernels[ref]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"metadata": map[string]any{"ref": ref},
			"blob":     map[string]any{"source": source},
		})
	case "/kernels/push":
		var req PushRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if h.reject {
			_ = json.NewEncoder(w).Encode(PushResponse{Error: "quota exceeded"})
			return
		}
		h.pushes++
		h.kernels[req.Slug] = req.Text
		_ = json.NewEncoder(w).Encode(PushResponse{Ref: req.Slug, URL: "https://host/code/" + req.Slug, VersionNumber: h.pushes})
	case "/kernels/list":
		_, _ = w.Write([]byte("[]"))
	default:
		http.NotFound(w, r)
	}
}

func setup(t *testing.T, key string) (*fakeHost, *Publisher, syllabus.Meeting) {
	t.Helper()
	host := &fakeHost{kernels: map[string]string{}}
	srv := httptest.NewServer(host)
	t.Cleanup(srv.Close)

	client := NewClient(config.Kernels{BaseURL: srv.URL, Username: "ada", Key: key}, nil)
	g := group.NewStandard("core", "", group.Semester{Season: group.Fall, Year: 2024}, group.SlugDated)
	pub := NewPublisher(client, g, true, false, nil)

	m := syllabus.Meeting{
		Date:   time.Date(2024, 9, 5, 0, 0, 0, 0, time.UTC),
		Name:   "Kickoff",
		Slug:   "09-05-kickoff",
		Kernel: syllabus.KernelOptions{GPU: true, Datasets: []string{"ada/iris"}},
	}
	m.Attach(t.TempDir())
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(m.NotebookPath, []byte(`{"nbformat":4}`), 0o644); err != nil {
		t.Fatal(err)
	}
	return host, pub, m
}

func TestPublisherCreateThenUpdate(t *testing.T) {
	host, pub, m := setup(t, "secret")
	ctx := context.Background()

	exists, err := pub.Exists(ctx, m)
	if err != nil || exists {
		t.Fatalf("Exists before push = %v, %v", exists, err)
	}
	outcome, err := pub.Apply(ctx, m, reconcile.ApplyOptions{})
	if err != nil || outcome.Kind != reconcile.OutcomeCreated {
		t.Fatalf("first apply = %+v, %v", outcome, err)
	}
	if pub.Ref(m) != "ada/core-fa24-09-05-kickoff" {
		t.Fatalf("ref = %s", pub.Ref(m))
	}

	var meta Metadata
	data, err := os.ReadFile(filepath.Join(m.Dir, MetadataFile))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatal(err)
	}
	if meta.ID != "ada/core-fa24-09-05-kickoff" || !meta.EnableGPU || meta.CodeFile != "09-05-kickoff.ipynb" {
		t.Fatalf("metadata = %+v", meta)
	}

	exists, _ = pub.Exists(ctx, m)
	outcome, err = pub.Apply(ctx, m, reconcile.ApplyOptions{Existed: exists})
	if err != nil || outcome.Kind != reconcile.OutcomeSkippedExists {
		t.Fatalf("unchanged apply = %+v, %v", outcome, err)
	}
	if n := host.pushCount(); n != 1 {
		t.Fatalf("unchanged notebook was pushed again (%d pushes)", n)
	}

	if err := os.WriteFile(m.NotebookPath, []byte(`{"nbformat":4,"cells":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	outcome, err = pub.Apply(ctx, m, reconcile.ApplyOptions{Existed: true})
	if err != nil || outcome.Kind != reconcile.OutcomeUpdated {
		t.Fatalf("changed apply = %+v, %v", outcome, err)
	}
}

func TestPublisherPullsOncePerMeeting(t *testing.T) {
	host, pub, m := setup(t, "secret")
	ctx := context.Background()
	if _, err := pub.Apply(ctx, m, reconcile.ApplyOptions{}); err != nil {
		t.Fatalf("initial push: %v", err)
	}

	before := host.pullCount()
	exists, err := pub.Exists(ctx, m)
	if err != nil || !exists {
		t.Fatalf("Exists = %v, %v", exists, err)
	}
	outcome, err := pub.Apply(ctx, m, reconcile.ApplyOptions{Existed: true})
	if err != nil || outcome.Kind != reconcile.OutcomeSkippedExists {
		t.Fatalf("apply = %+v, %v", outcome, err)
	}
	if n := host.pullCount() - before; n != 1 {
		t.Fatalf("expected one pull for Exists+Apply, got %d", n)
	}

	// A later pass must not reuse the earlier pull.
	if _, err := pub.Apply(ctx, m, reconcile.ApplyOptions{Existed: true}); err != nil {
		t.Fatal(err)
	}
	if n := host.pullCount() - before; n != 2 {
		t.Fatalf("expected a fresh pull without Exists, got %d", n)
	}
}

func TestPublisherSurfacesHostErrors(t *testing.T) {
	host, pub, m := setup(t, "secret")
	host.mu.Lock()
	host.reject = true
	host.mu.Unlock()
	_, err := pub.Apply(context.Background(), m, reconcile.ApplyOptions{})
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}

	_, badAuth, m2 := setup(t, "wrong")
	if _, err := badAuth.Exists(context.Background(), m2); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for bad credentials, got %v", err)
	}
}

func TestPublisherSkipsWhenUnconfigured(t *testing.T) {
	_, _, m := setup(t, "secret")
	client := NewClient(config.Kernels{BaseURL: "http://127.0.0.1:1"}, nil)
	g := group.NewStandard("core", "", group.Semester{Season: group.Fall, Year: 2024}, group.SlugDated)
	pub := NewPublisher(client, g, true, false, nil)
	if ok, err := pub.Exists(context.Background(), m); ok || err != nil {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	if o, _ := pub.Apply(context.Background(), m, reconcile.ApplyOptions{}); o.Kind != reconcile.OutcomeSkipped {
		t.Fatalf("outcome = %s", o.Kind)
	}
}

func TestClientPing(t *testing.T) {
	host := &fakeHost{kernels: map[string]string{}}
	srv := httptest.NewServer(host)
	defer srv.Close()
	good := NewClient(config.Kernels{BaseURL: srv.URL, Username: "ada", Key: "secret"}, nil)
	if err := good.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	bad := NewClient(config.Kernels{BaseURL: srv.URL, Username: "ada", Key: "nope"}, nil)
	if err := bad.Ping(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
