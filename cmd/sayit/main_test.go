package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeBoard struct {
	posts []map[string]string
}

func (f *fakeBoard) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/messages", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true, "count": 2,
			"messages": []map[string]any{
				{"_id": "11111111-aaaa", "content": "Happy birthday!", "recipient": "Mom", "cardColor": "#FF2E88", "createdAt": time.Now()},
				{"_id": "22222222-bbbb", "content": "thanks for lunch", "recipient": "Sam", "cardColor": "#C51162", "createdAt": time.Now()},
			},
		})
	})
	mux.HandleFunc("POST /api/messages", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["content"] == "damn it" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "Your message contains inappropriate content", "reason": "profanity",
				"cleanVersion": "darn it", "field": "content",
			})
			return
		}
		f.posts = append(f.posts, body)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true, "message": "Message posted successfully!",
			"data": map[string]any{"_id": "33333333-cccc", "content": body["content"], "recipient": body["recipient"]},
		})
	})
	return mux
}

func execute(t *testing.T, config Config, stdin string, args ...string) (string, error) {
	root := newRootCmd(config, strings.NewReader(stdin))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func testConfig(t *testing.T, apiURL string) Config {
	return Config{
		APIURL:    apiURL,
		StateFile: filepath.Join(t.TempDir(), "state.json"),
		Timeout:   5 * time.Second,
	}
}

func TestFeed_FiltersLocally(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer((&fakeBoard{}).handler(t))
	defer srv.Close()

	out, err := execute(t, testConfig(t, srv.URL), "", "feed", "--search", "LUNCH")
	req.NoError(err)
	req.Contains(out, "thanks for lunch")
	req.NotContains(out, "Happy birthday!")

	out, err = execute(t, testConfig(t, srv.URL), "", "feed", "--cards")
	req.NoError(err)
	req.Contains(out, "To: Mom")
	req.Contains(out, "To: Sam")
}

func TestPost_RateLimitedAfterTwo(t *testing.T) {
	req := require.New(t)
	board := &fakeBoard{}
	srv := httptest.NewServer(board.handler(t))
	defer srv.Close()
	config := testConfig(t, srv.URL)

	out, err := execute(t, config, "", "post", "Hello", "there!", "--to", "World")
	req.NoError(err)
	req.Contains(out, "Message posted successfully!")
	req.Contains(out, "1 of 2 messages left this hour")

	_, err = execute(t, config, "", "post", "Again", "--to", "World")
	req.NoError(err)

	_, err = execute(t, config, "", "post", "Third", "--to", "World")
	req.ErrorContains(err, "try again in 60 minute(s)")
	req.Len(board.posts, 2)
	req.Equal(map[string]string{"content": "Hello there!", "recipient": "World"}, board.posts[0])

	out, err = execute(t, config, "", "limit")
	req.NoError(err)
	req.Contains(out, "You can post again in 60 minute(s)")
}

func TestPost_RejectedThenSuggestion(t *testing.T) {
	req := require.New(t)
	board := &fakeBoard{}
	srv := httptest.NewServer(board.handler(t))
	defer srv.Close()
	config := testConfig(t, srv.URL)

	out, err := execute(t, config, "", "post", "damn it", "--to", "Y")
	req.Error(err)
	req.Contains(out, `Suggested: "darn it"`)
	req.Empty(board.posts)

	out, err = execute(t, config, "", "post", "damn it", "--to", "Y", "--use-suggestion")
	req.NoError(err)
	req.Contains(out, "Message posted successfully!")
	req.Equal("darn it", board.posts[0]["content"])
}

func TestDelete_RequiresToken(t *testing.T) {
	_, err := execute(t, testConfig(t, "http://127.0.0.1:0"), "", "delete", "abc")
	require.ErrorContains(t, err, "admin token is required")
}

func TestAdminHashPassword(t *testing.T) {
	req := require.New(t)
	out, err := execute(t, testConfig(t, ""), "ComplexPass123!\n", "admin", "hash-password")
	req.NoError(err)
	req.True(strings.HasPrefix(out, "$argon2id$"))

	_, err = execute(t, testConfig(t, ""), "weak\n", "admin", "hash-password")
	req.Error(err)
}

func TestRelative(t *testing.T) {
	now := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	require.Equal(t, "just now", relative(now, now.Add(-10*time.Second)))
	require.Equal(t, "5m ago", relative(now, now.Add(-5*time.Minute)))
	require.Equal(t, "3h ago", relative(now, now.Add(-3*time.Hour)))
}
