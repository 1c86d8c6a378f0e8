// Package workspace provides clients for the external file-tree and
// problem-content services that a sheet is projected into.
package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/algonote-ai/sheet-engine/pkg/jsonutil"
	"github.com/algonote-ai/sheet-engine/pkg/retry"
)

// DefaultTimeout is the maximum time to wait for workspace service responses.
const DefaultTimeout = 15 * time.Second

// Node types accepted by the file-tree service.
const (
	NodeTypeFolder = "folder"
	NodeTypeFile   = "file"
)

// NodeRequest describes a node to create in the file tree. ParentID is empty
// for root-level nodes.
type NodeRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID string `json:"parentId,omitempty"`
	Link     string `json:"link,omitempty"`
}

// CodeSnippet is one starter-code entry pushed to the problem-content store.
type CodeSnippet struct {
	Lang     string `json:"lang"`
	LangSlug string `json:"langSlug"`
	Code     string `json:"code"`
}

// ContentPayload is the problem content pushed for a workspace file.
type ContentPayload struct {
	Title            string        `json:"title"`
	Slug             string        `json:"slug"`
	Difficulty       string        `json:"difficulty"`
	Description      string        `json:"description"`
	ExampleTestcases string        `json:"exampleTestcases"`
	Tags             []string      `json:"tags"`
	CodeSnippets     []CodeSnippet `json:"codeSnippets"`
}

// Config holds workspace client configuration.
type Config struct {
	FileServiceURL    string // e.g. "http://127.0.0.1:5002/api/files"
	ProblemServiceURL string // e.g. "http://127.0.0.1:5003/api/problems"
	Timeout           time.Duration
}

// Client talks to the file-tree and problem-content services.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retryCfg   *retry.Config
	logger     *zap.Logger
}

// NewClient creates a new workspace client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		retryCfg: retry.DefaultConfig(),
		logger:   logger.Named("workspace"),
	}
}

// CreateNode creates a folder or file node in the file tree and returns the
// new node's id. The file-tree service owns id generation; ids are opaque
// strings here regardless of their upstream representation.
func (c *Client) CreateNode(ctx context.Context, node NodeRequest) (string, error) {
	body, err := c.doJSON(ctx, http.MethodPost, c.cfg.FileServiceURL, node, http.StatusCreated)
	if err != nil {
		return "", err
	}

	var created struct {
		ID jsonutil.FlexibleString `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to parse create-node response: %w", err)
	}
	if created.ID.String() == "" {
		return "", fmt.Errorf("create-node response carried no id")
	}

	c.logger.Debug("Created workspace node",
		zap.String("name", node.Name),
		zap.String("type", node.Type),
		zap.String("id", created.ID.String()))

	return created.ID.String(), nil
}

// EnsureContent makes sure a problem-content record exists for the file.
// The call is an idempotent upsert on the content service; it replaces the
// original timing assumption that record auto-creation has finished before
// content is written.
func (c *Client) EnsureContent(ctx context.Context, fileID string) error {
	payload := map[string]string{"fileId": fileID}
	return retry.Do(ctx, c.retryCfg, func() error {
		_, err := c.doJSON(ctx, http.MethodPost, c.cfg.ProblemServiceURL, payload, http.StatusCreated)
		return err
	})
}

// UpdateContent pushes problem content for a workspace file.
func (c *Client) UpdateContent(ctx context.Context, fileID string, content ContentPayload) error {
	endpoint := c.cfg.ProblemServiceURL + "/" + fileID
	return retry.Do(ctx, c.retryCfg, func() error {
		_, err := c.doJSON(ctx, http.MethodPut, endpoint, content, http.StatusOK)
		return err
	})
}

// doJSON posts a JSON payload and returns the raw response body.
// A wantStatus of 0 accepts any 2xx.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload any, wantStatus int) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call workspace service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	ok := resp.StatusCode == wantStatus ||
		(wantStatus == 0 && resp.StatusCode >= 200 && resp.StatusCode < 300) ||
		// Content upserts report 200 or 201 depending on whether the row existed.
		(wantStatus == http.StatusCreated && resp.StatusCode == http.StatusOK)
	if !ok {
		c.logger.Error("Workspace service returned error",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("workspace service returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
