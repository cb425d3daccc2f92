package forum

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"floorlottery/internal/errorx"

	"github.com/stretchr/testify/require"
)

const topicJSON = `{
	"title": "抽奖：送三个邀请码",
	"closed": true,
	"archived": false,
	"category_id": 36,
	"created_at": "2023-01-01T00:00:00.000Z",
	"last_posted_at": "2023-01-02T00:00:00.000Z",
	"highest_post_number": 9,
	"details": {"created_by": {"username": "alice"}}
}`

const floorsJSON = `{
	"rows": [3, 4, 5, 8, 9],
	"ids": [10, 11, 12, 13, 14],
	"created": [
		"2023-01-01T00:01:00.000Z",
		"2023-01-01T00:02:00.000Z",
		"2023-01-01T00:03:00.000Z",
		"2023-01-01T00:04:00.000Z",
		"2023-01-01T00:05:00.000Z"
	]
}`

func newForumServer(t *testing.T, topic, floors string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/t/555.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") == "bad" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(topic))
	})
	mux.HandleFunc("/api/topic/555/valid_post_number", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(floors))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, allowed ...int) *Client {
	return NewClient(Options{
		BaseURL:           srv.URL,
		ConnectURL:        srv.URL + "/",
		AllowedCategories: allowed,
		HTTPClient:        srv.Client(),
	})
}

func TestClient_FetchThreadFacts(t *testing.T) {
	ctx := context.Background()

	t.Run("closed topic", func(t *testing.T) {
		client := newTestClient(newForumServer(t, topicJSON, floorsJSON))
		facts, err := client.FetchThreadFacts(ctx, "555", "")
		require.NoError(t, err)
		require.Equal(t, "555", facts.TopicID)
		require.Equal(t, "抽奖：送三个邀请码", facts.Title)
		require.Equal(t, "alice", facts.CreatedBy)
		require.Equal(t, "2023-01-01T00:00:00.000Z", facts.CreatedAt)
		require.Equal(t, "2023-01-02T00:00:00.000Z", facts.LastPostedAt)
		require.Equal(t, 9, facts.HighestPostNumber)
		require.Equal(t, 36, facts.CategoryID)
	})

	t.Run("open topic is rejected", func(t *testing.T) {
		client := newTestClient(newForumServer(t, `{"closed": false, "archived": false, "title": "x"}`, floorsJSON))
		_, err := client.FetchThreadFacts(ctx, "555", "")
		require.ErrorIs(t, err, errorx.ErrValidation)
	})

	t.Run("category outside allow-list", func(t *testing.T) {
		client := newTestClient(newForumServer(t, topicJSON, floorsJSON), 60, 61, 62)
		_, err := client.FetchThreadFacts(ctx, "555", "")
		require.ErrorIs(t, err, errorx.ErrValidation)
	})

	t.Run("category inside allow-list", func(t *testing.T) {
		client := newTestClient(newForumServer(t, topicJSON, floorsJSON), 36, 60)
		_, err := client.FetchThreadFacts(ctx, "555", "")
		require.NoError(t, err)
	})

	t.Run("missing creator", func(t *testing.T) {
		body := `{"closed": true, "title": "x", "created_at": "2023-01-01T00:00:00Z", "highest_post_number": 3}`
		client := newTestClient(newForumServer(t, body, floorsJSON))
		_, err := client.FetchThreadFacts(ctx, "555", "")
		require.ErrorIs(t, err, errorx.ErrCollaborator)
	})

	t.Run("upstream failure", func(t *testing.T) {
		client := newTestClient(newForumServer(t, topicJSON, floorsJSON))
		_, err := client.FetchThreadFacts(ctx, "555", "bad")
		require.ErrorIs(t, err, errorx.ErrCollaborator)
	})

	t.Run("unknown topic", func(t *testing.T) {
		client := newTestClient(newForumServer(t, topicJSON, floorsJSON))
		_, err := client.FetchThreadFacts(ctx, "404", "")
		require.ErrorIs(t, err, errorx.ErrCollaborator)
	})
}

func TestClient_FetchEligibleFloors(t *testing.T) {
	ctx := context.Background()

	t.Run("all floors", func(t *testing.T) {
		client := newTestClient(newForumServer(t, topicJSON, floorsJSON))
		floors, err := client.FetchEligibleFloors(ctx, "555", "", nil)
		require.NoError(t, err)
		require.Equal(t, []int{3, 4, 5, 8, 9}, floors.Numbers)
		require.Equal(t, []int64{10, 11, 12, 13, 14}, floors.IDs)
		require.Len(t, floors.CreatedAt, 5)
	})

	t.Run("cutoff", func(t *testing.T) {
		client := newTestClient(newForumServer(t, topicJSON, floorsJSON))
		cutoff := 6
		floors, err := client.FetchEligibleFloors(ctx, "555", "", &cutoff)
		require.NoError(t, err)
		require.Equal(t, []int{3, 4, 5}, floors.Numbers)
		require.Equal(t, []int64{10, 11, 12}, floors.IDs)
		require.Equal(t, "2023-01-01T00:03:00.000Z", floors.CreatedAt[2])
	})

	t.Run("empty lists", func(t *testing.T) {
		client := newTestClient(newForumServer(t, topicJSON, `{"rows": [], "ids": [], "created": []}`))
		_, err := client.FetchEligibleFloors(ctx, "555", "", nil)
		require.ErrorIs(t, err, errorx.ErrValidation)
	})

	t.Run("wrong shape", func(t *testing.T) {
		client := newTestClient(newForumServer(t, topicJSON, `{"rows": "3,4", "ids": [1], "created": ["x"]}`))
		_, err := client.FetchEligibleFloors(ctx, "555", "", nil)
		require.ErrorIs(t, err, errorx.ErrCollaborator)
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		client := newTestClient(newForumServer(t, topicJSON,
			`{"rows": [3, 4], "ids": [10], "created": ["a", "b"]}`))
		_, err := client.FetchEligibleFloors(ctx, "555", "", nil)
		require.ErrorIs(t, err, errorx.ErrInvariant)
	})

	t.Run("not json", func(t *testing.T) {
		client := newTestClient(newForumServer(t, topicJSON, `<html>`))
		_, err := client.FetchEligibleFloors(ctx, "555", "", nil)
		require.ErrorIs(t, err, errorx.ErrCollaborator)
	})
}

func TestClient_URLs(t *testing.T) {
	client := NewClient(Options{BaseURL: "https://linux.do/", ConnectURL: "https://connect.linux.do"})
	require.Equal(t, "https://linux.do/t/topic/555", client.TopicURL("555"))
	require.Equal(t, "https://linux.do/t/topic/555/7", client.PostURL("555", 7))
}

func TestParseTopicURL(t *testing.T) {
	cases := map[string]string{
		"https://linux.do/t/topic/12345":        "12345",
		"https://linux.do/t/topic/12345/67":     "12345",
		"https://linux.do/t/topic/12345/67?u=a": "12345",
	}
	for url, want := range cases {
		got, err := ParseTopicURL(url)
		require.NoError(t, err, url)
		require.Equal(t, want, got)
	}

	_, err := ParseTopicURL("https://linux.do/t/some-slug/12345")
	require.ErrorIs(t, err, errorx.ErrValidation)
}

func TestLoadCookies(t *testing.T) {
	dir := t.TempDir()

	cookies, err := LoadCookies(filepath.Join(dir, "missing.txt"))
	require.NoError(t, err)
	require.Empty(t, cookies)

	path := filepath.Join(dir, "cookies.txt")
	require.NoError(t, os.WriteFile(path, []byte("  _t=abc; _forum_session=def\n"), 0o600))
	cookies, err = LoadCookies(path)
	require.NoError(t, err)
	require.Equal(t, "_t=abc; _forum_session=def", cookies)
}
