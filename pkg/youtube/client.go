// Package youtube lists playlist videos via the YouTube Data API v3.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/algonote-ai/sheet-engine/pkg/apperrors"
	"github.com/algonote-ai/sheet-engine/pkg/logging"
)

// DefaultTimeout is the maximum time to wait for a single playlistItems page.
const DefaultTimeout = 15 * time.Second

// maxPageSize is the playlistItems page-size cap imposed by the API.
const maxPageSize = 50

// Video is one playlist entry: the title shown on YouTube and the canonical
// watch link.
type Video struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Config holds YouTube client configuration.
type Config struct {
	BaseURL  string // e.g. "https://www.googleapis.com/youtube/v3"
	APIKey   string
	PageSize int
}

// Client fetches playlist contents from the YouTube Data API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new YouTube client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.PageSize < 1 || cfg.PageSize > maxPageSize {
		cfg.PageSize = maxPageSize
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger.Named("youtube"),
	}
}

// ExtractPlaylistID pulls the playlist identifier from the "list" query
// parameter of a playlist URL. Supports formats like:
//   - https://www.youtube.com/playlist?list=PLxxxx
//   - https://youtube.com/watch?v=abc&list=PLxxxx
func ExtractPlaylistID(playlistURL string) (string, error) {
	parsed, err := url.Parse(playlistURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidPlaylistURL, err)
	}
	listParam := parsed.Query().Get("list")
	if listParam == "" {
		return "", fmt.Errorf("%w: no playlist ID found in URL", apperrors.ErrInvalidPlaylistURL)
	}
	return listParam, nil
}

// playlistItemsResponse is the subset of the playlistItems payload we consume.
type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			Title      string `json:"title"`
			ResourceID struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

// ListPlaylistVideos fetches every video of a playlist, following the
// continuation token until exhausted. Entries whose media item no longer
// resolves to a video ID (deleted or private videos) are skipped.
// Any transport or API failure is returned; callers treat it as fatal.
func (c *Client) ListPlaylistVideos(ctx context.Context, playlistURL string) ([]Video, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("youtube API key is not configured")
	}

	playlistID, err := ExtractPlaylistID(playlistURL)
	if err != nil {
		return nil, err
	}

	var videos []Video
	pageToken := ""

	for {
		page, err := c.fetchPage(ctx, playlistID, pageToken)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			videoID := item.Snippet.ResourceID.VideoID
			if videoID == "" {
				continue
			}
			videos = append(videos, Video{
				Title: item.Snippet.Title,
				URL:   "https://www.youtube.com/watch?v=" + videoID,
			})
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	c.logger.Info("Listed playlist videos",
		zap.String("playlist_id", playlistID),
		zap.Int("count", len(videos)))

	return videos, nil
}

func (c *Client) fetchPage(ctx context.Context, playlistID, pageToken string) (*playlistItemsResponse, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", strconv.Itoa(c.cfg.PageSize))
	params.Set("key", c.cfg.APIKey)
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	endpoint := c.cfg.BaseURL + "/playlistItems?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport errors echo the request URL, which carries the API key.
		return nil, fmt.Errorf("failed to call YouTube API: %s", logging.SanitizeError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("YouTube API returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("playlist_id", playlistID))
		return nil, fmt.Errorf("YouTube API returned status %d: %s", resp.StatusCode, string(body))
	}

	var page playlistItemsResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &page, nil
}
