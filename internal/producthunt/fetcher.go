package producthunt

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"phposts/internal/domain"
)

const (
	DefaultFirst = 100
	maxPageSize  = 30
)

type Fetcher struct {
	endpoint string
	token    string
	client   *http.Client
	log      *slog.Logger
}

func NewFetcher(
	token string,
	endpoint string,
	timeout time.Duration,
	log *slog.Logger,
) *Fetcher {
	return &Fetcher{
		endpoint: endpoint,
		token:    strings.TrimSpace(token),
		client:   &http.Client{Timeout: timeout},
		log:      log,
	}
}

// FetchPosts returns up to req.First posts published between req.Start and
// req.End inclusive, ordered by day and then by ranking within the day. Any
// failed request aborts the whole fetch without partial results.
func (f *Fetcher) FetchPosts(
	ctx context.Context,
	req domain.FetchRequest,
) ([]domain.Post, error) {
	start, err := ParseDate(req.Start)
	if err != nil {
		return nil, err
	}

	end := start
	if strings.TrimSpace(req.End) != "" {
		if end, err = ParseDate(req.End); err != nil {
			return nil, err
		}
	}

	if start.After(end) {
		return nil, ErrInvalidDateRange
	}

	items := []domain.Post{}
	if req.First <= 0 {
		return items, nil
	}

	if f.token == "" {
		return nil, ErrMissingCredential
	}

	requests := 0
	for cur := start; !cur.After(end) && len(items) < req.First; cur = cur.AddDate(0, 0, 1) {
		window := WindowFor(cur)

		var cursor *string
		for len(items) < req.First {
			pageSize := min(maxPageSize, req.First-len(items))

			p, fetchErr := f.fetchPage(ctx, postsVariables{
				After:  window.After,
				Before: window.Before,
				First:  pageSize,
				Cursor: cursor,
			})
			if fetchErr != nil {
				return nil, fetchErr
			}
			requests++

			items = append(items, p.posts...)

			f.log.DebugContext(ctx, "Fetched posts page",
				"day", cur.Format(dateLayout),
				"pageSize", pageSize,
				"received", len(p.posts),
				"hasNextPage", p.hasNextPage,
				"total", len(items))

			if !p.hasNextPage {
				break
			}

			if len(p.posts) == 0 || p.endCursor == "" || (cursor != nil && *cursor == p.endCursor) {
				f.log.WarnContext(ctx, "Upstream reports a next page without progress, skipping rest of day",
					"day", cur.Format(dateLayout),
					"received", len(p.posts),
					"endCursor", p.endCursor)

				break
			}

			next := p.endCursor
			cursor = &next
		}
	}

	if len(items) > req.First {
		items = items[:req.First]
	}

	f.log.InfoContext(ctx, "Posts are fetched",
		"start", start.Format(dateLayout),
		"end", end.Format(dateLayout),
		"first", req.First,
		"requests", requests,
		"count", len(items))

	return items, nil
}
