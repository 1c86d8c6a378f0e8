// Package leetcode fetches problem details from LeetCode's public GraphQL API.
package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/algonote-ai/sheet-engine/pkg/retry"
)

// DefaultTimeout caps a single detail fetch.
const DefaultTimeout = 10 * time.Second

// referenceLangSlug is the starter-code language preferred when the problem
// offers multiple snippets.
const referenceLangSlug = "javascript"

// problemDetailQuery fetches a single problem by slug.
const problemDetailQuery = `
  query getProblemDetail($titleSlug: String!) {
    question(titleSlug: $titleSlug) {
      title
      titleSlug
      difficulty
      content
      exampleTestcases
      codeSnippets {
        lang
        langSlug
        code
      }
    }
  }
`

// ProblemDetail is the resolved catalog content for one problem.
type ProblemDetail struct {
	Title            string
	TitleSlug        string
	Difficulty       string
	Description      string
	ExampleTestcases string
	StarterCode      string
	Link             string
}

// Config holds LeetCode client configuration.
type Config struct {
	GraphQLURL string
	Timeout    time.Duration
}

// Client queries the LeetCode GraphQL endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retryCfg   *retry.Config
	logger     *zap.Logger
}

// NewClient creates a new LeetCode client.
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
		logger:   logger.Named("leetcode"),
	}
}

type graphqlRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type questionPayload struct {
	Title            string `json:"title"`
	TitleSlug        string `json:"titleSlug"`
	Difficulty       string `json:"difficulty"`
	Content          string `json:"content"`
	ExampleTestcases string `json:"exampleTestcases"`
	CodeSnippets     []struct {
		Lang     string `json:"lang"`
		LangSlug string `json:"langSlug"`
		Code     string `json:"code"`
	} `json:"codeSnippets"`
}

// FetchProblem fetches full problem data by title slug. Returns (nil, nil)
// when the catalog has no such problem; transport failures surface as errors
// and are retried while transient. Callers treat both outcomes as "detail
// unavailable" rather than fatal.
func (c *Client) FetchProblem(ctx context.Context, titleSlug string) (*ProblemDetail, error) {
	question, err := retry.DoWithResult(ctx, c.retryCfg, func() (*questionPayload, error) {
		return c.fetchQuestion(ctx, titleSlug)
	})
	if err != nil {
		c.logger.Warn("LeetCode fetch failed",
			zap.String("slug", titleSlug),
			zap.Error(err))
		return nil, err
	}
	if question == nil || question.TitleSlug == "" {
		return nil, nil
	}

	// Prefer the reference language, fall back to the first snippet.
	starterCode := ""
	for _, snippet := range question.CodeSnippets {
		if snippet.LangSlug == referenceLangSlug {
			starterCode = snippet.Code
			break
		}
	}
	if starterCode == "" && len(question.CodeSnippets) > 0 {
		starterCode = question.CodeSnippets[0].Code
	}

	return &ProblemDetail{
		Title:            question.Title,
		TitleSlug:        question.TitleSlug,
		Difficulty:       question.Difficulty,
		Description:      question.Content,
		ExampleTestcases: question.ExampleTestcases,
		StarterCode:      starterCode,
		Link:             ProblemLink(question.TitleSlug),
	}, nil
}

func (c *Client) fetchQuestion(ctx context.Context, titleSlug string) (*questionPayload, error) {
	payload, err := json.Marshal(graphqlRequest{
		Query:     problemDetailQuery,
		Variables: map[string]string{"titleSlug": titleSlug},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GraphQLURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// LeetCode blocks requests without a referer
	req.Header.Set("Referer", ProblemLink(titleSlug))
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; AlgoNoteAI/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(data))
	}

	var gqlResp struct {
		Data struct {
			Question *questionPayload `json:"question"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return gqlResp.Data.Question, nil
}

// ProblemLink returns the canonical problem URL for a slug.
func ProblemLink(titleSlug string) string {
	return "https://leetcode.com/problems/" + titleSlug + "/"
}
