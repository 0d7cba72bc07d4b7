package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mmcdole/gofeed"

	"phposts/internal/domain"
	"phposts/internal/producthunt"
	"phposts/internal/server"
)

type stubFetcher struct {
	mu    sync.Mutex
	calls []domain.FetchRequest
	posts []domain.Post
	err   error
}

func (s *stubFetcher) FetchPosts(
	_ context.Context,
	req domain.FetchRequest,
) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)

	return s.posts, s.err
}

func (s *stubFetcher) lastCall() domain.FetchRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[len(s.calls)-1]
}

func newTestServer(t *testing.T, f server.PostsFetcher) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(server.New(":0", f, slog.New(slog.DiscardHandler)).Handler())
	t.Cleanup(srv.Close)

	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url) //nolint:noctx // test helper
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	return resp.StatusCode, string(body)
}

func TestPostsJSON(t *testing.T) {
	stub := &stubFetcher{posts: []domain.Post{{ID: "1", Name: "Alpha"}}}
	srv := newTestServer(t, stub)

	status, body := get(t, srv.URL+"/posts?start=2024-01-01&end=2024-01-02&first=5")
	if status != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", status, body)
	}

	var posts []domain.Post
	if err := json.Unmarshal([]byte(body), &posts); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if len(posts) != 1 || posts[0].ID != "1" {
		t.Fatalf("unexpected posts: %+v", posts)
	}

	want := domain.FetchRequest{Start: "2024-01-01", End: "2024-01-02", First: 5}
	if got := stub.lastCall(); got != want {
		t.Fatalf("unexpected fetch request: %+v", got)
	}
}

func TestPostsJSONDefaultFirst(t *testing.T) {
	stub := &stubFetcher{posts: []domain.Post{}}
	srv := newTestServer(t, stub)

	status, body := get(t, srv.URL+"/posts?start=2024-01-01")
	if status != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", status, body)
	}

	if strings.TrimSpace(body) != "[]" {
		t.Fatalf("expected empty array, got %q", body)
	}

	if got := stub.lastCall().First; got != producthunt.DefaultFirst {
		t.Fatalf("expected default first %d, got %d", producthunt.DefaultFirst, got)
	}
}

func TestPostsRejectsNonIntegerFirst(t *testing.T) {
	stub := &stubFetcher{}
	srv := newTestServer(t, stub)

	if status, _ := get(t, srv.URL+"/posts?start=2024-01-01&first=lots"); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}

	if len(stub.calls) != 0 {
		t.Fatalf("expected fetcher not to be called")
	}
}

func TestPostsErrorStatuses(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("wrap: %w", producthunt.ErrInvalidDateFormat), want: http.StatusBadRequest},
		{err: producthunt.ErrInvalidDateRange, want: http.StatusBadRequest},
		{err: producthunt.ErrMissingCredential, want: http.StatusServiceUnavailable},
		{err: &producthunt.UpstreamError{StatusCode: 500}, want: http.StatusBadGateway},
		{err: &producthunt.UpstreamError{Timeout: true, Err: context.DeadlineExceeded}, want: http.StatusGatewayTimeout},
		{err: io.ErrUnexpectedEOF, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		srv := newTestServer(t, &stubFetcher{err: tt.err})

		if status, body := get(t, srv.URL+"/posts?start=2024-01-01"); status != tt.want {
			t.Fatalf("%v: expected %d, got %d (%s)", tt.err, tt.want, status, body)
		}
	}
}

func TestPostsFeed(t *testing.T) {
	stub := &stubFetcher{posts: []domain.Post{
		{ID: "1", Name: "Alpha", Tagline: "Ship faster", Slug: "alpha", CreatedAt: "2024-01-01T08:00:00Z"},
	}}
	srv := newTestServer(t, stub)

	status, body := get(t, srv.URL+"/rss/posts?start=2024-01-01")
	if status != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", status, body)
	}

	parsed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		t.Fatalf("parse feed: %v", err)
	}

	if parsed.FeedType != "rss" || len(parsed.Items) != 1 {
		t.Fatalf("unexpected feed: type %q with %d items", parsed.FeedType, len(parsed.Items))
	}

	if status, _ = get(t, srv.URL+"/rss/posts?start=2024-01-01&format=yaml"); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported format, got %d", status)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{})

	if status, body := get(t, srv.URL+"/healthz"); status != http.StatusOK || body != "ok" {
		t.Fatalf("unexpected health response: %d %q", status, body)
	}
}
