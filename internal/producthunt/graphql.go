package producthunt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"phposts/internal/domain"
)

const postsQuery = `
query($after: DateTime!, $before: DateTime!, $first: Int!, $cursor: String) {
  posts(postedAfter: $after, postedBefore: $before, first: $first, after: $cursor, order: RANKING) {
    edges { node { id name tagline votesCount createdAt website slug makers { name username } } }
    pageInfo { endCursor hasNextPage }
  }
}
`

const maxErrorBodyBytes = 512

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables postsVariables `json:"variables"`
}

// postsVariables.Cursor is encoded as null on the first page of a day.
type postsVariables struct {
	After  string  `json:"after"`
	Before string  `json:"before"`
	First  int     `json:"first"`
	Cursor *string `json:"cursor"`
}

type graphQLResponse struct {
	Data *struct {
		Posts *postsConnection `json:"posts"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type postsConnection struct {
	Edges []struct {
		Node json.RawMessage `json:"node"`
	} `json:"edges"`
	PageInfo *struct {
		EndCursor   string `json:"endCursor"`
		HasNextPage bool   `json:"hasNextPage"`
	} `json:"pageInfo"`
}

type page struct {
	posts       []domain.Post
	endCursor   string
	hasNextPage bool
}

// AuthHeaders builds the headers attached to every upstream request.
func AuthHeaders(token string) http.Header {
	h := make(http.Header, 2)
	h.Set("Authorization", "Bearer "+token)
	h.Set("Content-Type", "application/json")

	return h
}

func (f *Fetcher) fetchPage(
	ctx context.Context,
	vars postsVariables,
) (page, error) {
	body, err := json.Marshal(graphQLRequest{Query: postsQuery, Variables: vars})
	if err != nil {
		return page{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return page{}, fmt.Errorf("create request: %w", err)
	}
	req.Header = AuthHeaders(f.token)

	resp, err := f.client.Do(req)
	if err != nil {
		return page{}, &UpstreamError{Timeout: isTimeout(err), Err: fmt.Errorf("do request: %w", err)}
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"operation", "fetchPage",
				"after", vars.After)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		return page{}, &UpstreamError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}

	var decoded graphQLResponse
	if err = json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return page{}, &UpstreamError{Timeout: isTimeout(err), Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			messages = append(messages, e.Message)
		}

		f.log.WarnContext(ctx, "Upstream returned GraphQL errors",
			"errors", messages,
			"after", vars.After,
			"before", vars.Before)
	}

	if decoded.Data == nil || decoded.Data.Posts == nil {
		f.log.WarnContext(ctx, "Upstream response has no posts, treating as empty page",
			"after", vars.After,
			"before", vars.Before)

		return page{}, nil
	}

	conn := decoded.Data.Posts
	p := page{posts: make([]domain.Post, 0, len(conn.Edges))}
	for _, edge := range conn.Edges {
		post, viewErr := domain.NewPost(edge.Node)
		if viewErr != nil {
			f.log.WarnContext(ctx, "Post does not match the expected shape, forwarding as is",
				"error", viewErr,
				"after", vars.After)
		}
		p.posts = append(p.posts, post)
	}

	if conn.PageInfo != nil {
		p.endCursor = conn.PageInfo.EndCursor
		p.hasNextPage = conn.PageInfo.HasNextPage
	}

	return p, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var t interface{ Timeout() bool }

	return errors.As(err, &t) && t.Timeout()
}
