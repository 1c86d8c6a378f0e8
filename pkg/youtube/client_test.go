package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/algonote-ai/sheet-engine/pkg/apperrors"
)

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "playlist URL",
			url:  "https://www.youtube.com/playlist?list=PLxyz123",
			want: "PLxyz123",
		},
		{
			name: "watch URL with list param",
			url:  "https://youtube.com/watch?v=abc&list=PLabc",
			want: "PLabc",
		},
		{
			name:    "no list param",
			url:     "https://www.youtube.com/watch?v=abc",
			wantErr: true,
		},
		{
			name:    "empty list param",
			url:     "https://www.youtube.com/playlist?list=",
			wantErr: true,
		},
		{
			name:    "garbage",
			url:     "://not a url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractPlaylistID(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidPlaylistURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type pageItem struct {
	Title   string
	VideoID string
}

func playlistServer(t *testing.T, pages map[string][]pageItem, nextTokens map[string]string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/playlistItems", r.URL.Path)
		assert.Equal(t, "snippet", r.URL.Query().Get("part"))
		assert.NotEmpty(t, r.URL.Query().Get("key"))

		token := r.URL.Query().Get("pageToken")
		items := make([]map[string]any, 0)
		for _, item := range pages[token] {
			items = append(items, map[string]any{
				"snippet": map[string]any{
					"title": item.Title,
					"resourceId": map[string]any{
						"videoId": item.VideoID,
					},
				},
			})
		}

		resp := map[string]any{"items": items}
		if next, ok := nextTokens[token]; ok {
			resp["nextPageToken"] = next
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:  baseURL,
		APIKey:   "test-key",
		PageSize: 50,
	}, zap.NewNop())
}

func TestListPlaylistVideos_FollowsPagination(t *testing.T) {
	server := playlistServer(t,
		map[string][]pageItem{
			"":      {{Title: "Two Sum | LeetCode 1", VideoID: "vid1"}, {Title: "Valid Anagram", VideoID: "vid2"}},
			"page2": {{Title: "3Sum Explained", VideoID: "vid3"}},
		},
		map[string]string{"": "page2"},
	)
	defer server.Close()

	videos, err := newTestClient(server.URL).ListPlaylistVideos(
		context.Background(), "https://www.youtube.com/playlist?list=PLxyz")
	require.NoError(t, err)

	require.Len(t, videos, 3)
	assert.Equal(t, "Two Sum | LeetCode 1", videos[0].Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=vid1", videos[0].URL)
	assert.Equal(t, "3Sum Explained", videos[2].Title)
}

func TestListPlaylistVideos_SkipsUnresolvableItems(t *testing.T) {
	server := playlistServer(t,
		map[string][]pageItem{
			"": {
				{Title: "Deleted video", VideoID: ""},
				{Title: "Still here", VideoID: "vid9"},
			},
		},
		nil,
	)
	defer server.Close()

	videos, err := newTestClient(server.URL).ListPlaylistVideos(
		context.Background(), "https://www.youtube.com/playlist?list=PLxyz")
	require.NoError(t, err)

	require.Len(t, videos, 1)
	assert.Equal(t, "Still here", videos[0].Title)
}

func TestListPlaylistVideos_APIErrorIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 403, "message": "quotaExceeded"}}`, http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListPlaylistVideos(
		context.Background(), "https://www.youtube.com/playlist?list=PLxyz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestListPlaylistVideos_InvalidURL(t *testing.T) {
	_, err := newTestClient("http://unused").ListPlaylistVideos(
		context.Background(), "https://www.youtube.com/watch?v=abc")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPlaylistURL)
}

func TestListPlaylistVideos_MissingAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://unused"}, zap.NewNop())
	_, err := client.ListPlaylistVideos(
		context.Background(), "https://www.youtube.com/playlist?list=PLxyz")
	assert.Error(t, err)
}

func TestListPlaylistVideos_TransportErrorRedactsAPIKey(t *testing.T) {
	// Unroutable endpoint: the client error embeds the request URL.
	_, err := newTestClient("http://127.0.0.1:1").ListPlaylistVideos(
		context.Background(), "https://www.youtube.com/playlist?list=PLxyz")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "test-key")
}
