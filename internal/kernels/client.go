package kernels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"autobot/internal/config"
	"autobot/internal/services"
)

// HTTPDoer describes the HTTP client used by the kernel host client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client speaks the Kaggle-style kernels REST API.
type Client struct {
	baseURL  string
	username string
	key      string
	http     HTTPDoer
	limiter  *rate.Limiter
}

// NewClient builds a client from configuration. A nil httpClient selects an
// http.Client with the configured timeout.
func NewClient(cfg config.Kernels, httpClient HTTPDoer) *Client {
	if httpClient == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		username: strings.TrimSpace(cfg.Username),
		key:      strings.TrimSpace(cfg.Key),
		http:     httpClient,
		limiter:  limiter,
	}
}

// Username is the account kernels are published under.
func (c *Client) Username() string { return c.username }

// PushRequest is the body of kernels/push.
type PushRequest struct {
	Slug                   string   `json:"slug"`
	NewTitle               string   `json:"newTitle"`
	Text                   string   `json:"text"`
	Language               string   `json:"language"`
	KernelType             string   `json:"kernelType"`
	IsPrivate              bool     `json:"isPrivate"`
	EnableGPU              bool     `json:"enableGpu"`
	EnableInternet         bool     `json:"enableInternet"`
	DatasetDataSources     []string `json:"datasetDataSources"`
	CompetitionDataSources []string `json:"competitionDataSources"`
	KernelDataSources      []string `json:"kernelDataSources"`
	CategoryIDs            []string `json:"categoryIds"`
}

// PushResponse is the reply of kernels/push.
type PushResponse struct {
	Ref           string `json:"ref"`
	URL           string `json:"url"`
	VersionNumber int    `json:"versionNumber"`
	Error         string `json:"error"`
}

// Kernel is a pulled remote kernel.
type Kernel struct {
	Ref    string
	Title  string
	Source string
}

type pullResponse struct {
	Metadata struct {
		Ref   string `json:"ref"`
		Title string `json:"title"`
	} `json:"metadata"`
	Blob struct {
		Source string `json:"source"`
	} `json:"blob"`
}

// Pull fetches <username>/<slug>. found is false when the host has no such
// kernel.
func (c *Client) Pull(ctx context.Context, slug string) (Kernel, bool, error) {
	query := url.Values{}
	query.Set("userName", c.username)
	query.Set("kernelSlug", slug)
	resp, err := c.do(ctx, http.MethodGet, "/kernels/pull?"+query.Encode(), nil)
	if err != nil {
		return Kernel{}, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return Kernel{}, false, nil
	}
	if err := checkStatus(resp, "pull"); err != nil {
		return Kernel{}, false, err
	}
	var body pullResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Kernel{}, false, services.Wrap(services.ErrExternalService, "kernels", "pull", "decode response", err)
	}
	return Kernel{Ref: body.Metadata.Ref, Title: body.Metadata.Title, Source: body.Blob.Source}, true, nil
}

// Push creates or updates a kernel.
func (c *Client) Push(ctx context.Context, req PushRequest) (PushResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return PushResponse{}, fmt.Errorf("encode push request: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/kernels/push", payload)
	if err != nil {
		return PushResponse{}, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, "push"); err != nil {
		return PushResponse{}, err
	}
	var out PushResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return PushResponse{}, services.Wrap(services.ErrExternalService, "kernels", "push", "decode response", err)
	}
	if strings.TrimSpace(out.Error) != "" {
		return out, services.Wrap(services.ErrExternalService, "kernels", "push", out.Error, nil)
	}
	return out, nil
}

// Ping performs an authenticated list call to verify credentials.
func (c *Client) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("user", c.username)
	query.Set("pageSize", "1")
	resp, err := c.do(ctx, http.MethodGet, "/kernels/list?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp, "list")
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build kernels request: %w", err)
	}
	req.SetBasicAuth(c.username, c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "kernels", strings.ToLower(method), path, err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response, operation string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	message := fmt.Sprintf("status %d", resp.StatusCode)
	if text := strings.TrimSpace(string(snippet)); text != "" {
		message += ": " + text
	}
	marker := services.ErrExternalService
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		marker = services.ErrConfiguration
	}
	return services.Wrap(marker, "kernels", operation, message, nil)
}
