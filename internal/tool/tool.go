package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"phposts/internal/domain"
	"phposts/internal/producthunt"
)

const (
	ServerName    = "ProductHunt MCP"
	PostsToolName = "ph_posts"

	postsToolDescription = "Return up to `first` Product Hunt posts between UTC dates start..end (YYYY-MM-DD)."
)

type PostsFetcher interface {
	FetchPosts(ctx context.Context, req domain.FetchRequest) ([]domain.Post, error)
}

func NewServer(fetcher PostsFetcher, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.AddTool(PostsTool(), PostsHandler(fetcher, log))

	return s
}

func PostsTool() mcp.Tool {
	return mcp.NewTool(PostsToolName,
		mcp.WithDescription(postsToolDescription),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("First UTC day to fetch, YYYY-MM-DD."),
		),
		mcp.WithString("end",
			mcp.Description("Last UTC day to fetch (inclusive), YYYY-MM-DD. Defaults to start."),
		),
		mcp.WithNumber("first",
			mcp.Description("Maximum number of posts to return."),
			mcp.DefaultNumber(producthunt.DefaultFirst),
		),
	)
}

func PostsHandler(fetcher PostsFetcher, log *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start, err := request.RequireString("start")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		req := domain.FetchRequest{
			Start: start,
			End:   request.GetString("end", ""),
			First: request.GetInt("first", producthunt.DefaultFirst),
		}

		posts, err := fetcher.FetchPosts(ctx, req)
		if err != nil {
			log.ErrorContext(ctx, "Failed to fetch posts",
				"error", err,
				"tool", PostsToolName,
				"start", req.Start,
				"end", req.End,
				"first", req.First)

			return mcp.NewToolResultErrorFromErr("fetch posts", err), nil
		}

		encoded, err := json.Marshal(posts)
		if err != nil {
			return nil, fmt.Errorf("marshal posts: %w", err)
		}

		return mcp.NewToolResultText(string(encoded)), nil
	}
}
