package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"phposts/internal/domain"
	"phposts/internal/producthunt"
	"phposts/internal/rss"
)

type postsRouter struct {
	fetcher PostsFetcher
	log     *slog.Logger
}

func (pr *postsRouter) postsJSON(w http.ResponseWriter, r *http.Request) {
	req, posts, ok := pr.fetch(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(posts); err != nil {
		pr.log.ErrorContext(r.Context(), "Failed to write posts",
			"error", err,
			"start", req.Start,
			"end", req.End)
	}
}

func (pr *postsRouter) postsFeed(w http.ResponseWriter, r *http.Request) {
	req, posts, ok := pr.fetch(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")

	out, err := rss.Render(rss.Feed(posts, req.Start, req.End), format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	contentType := "application/rss+xml; charset=utf-8"
	if format == rss.FormatAtom {
		contentType = "application/atom+xml; charset=utf-8"
	}

	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write([]byte(out))
}

func (pr *postsRouter) fetch(
	w http.ResponseWriter,
	r *http.Request,
) (domain.FetchRequest, []domain.Post, bool) {
	q := r.URL.Query()

	req := domain.FetchRequest{
		Start: strings.TrimSpace(q.Get("start")),
		End:   strings.TrimSpace(q.Get("end")),
		First: producthunt.DefaultFirst,
	}

	if raw := strings.TrimSpace(q.Get("first")); raw != "" {
		first, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("first must be an integer"))
			return req, nil, false
		}
		req.First = first
	}

	posts, err := pr.fetcher.FetchPosts(r.Context(), req)
	if err != nil {
		pr.log.ErrorContext(r.Context(), "Failed to fetch posts",
			"error", err,
			"start", req.Start,
			"end", req.End,
			"first", req.First)

		writeError(w, statusFor(err), err)
		return req, nil, false
	}

	return req, posts, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, producthunt.ErrInvalidDateFormat),
		errors.Is(err, producthunt.ErrInvalidDateRange):
		return http.StatusBadRequest
	case errors.Is(err, producthunt.ErrMissingCredential):
		return http.StatusServiceUnavailable
	case errors.Is(err, producthunt.ErrUpstreamRequestFailed):
		var upstreamErr *producthunt.UpstreamError
		if errors.As(err, &upstreamErr) && upstreamErr.Timeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	http.Error(w, err.Error(), status)
}
