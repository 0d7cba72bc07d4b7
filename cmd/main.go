package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"phposts/internal/config"
	"phposts/internal/domain"
	"phposts/internal/producthunt"
	"phposts/internal/rss"
	httpserver "phposts/internal/server"
	"phposts/internal/tool"
)

const formatJSON = "json"

var version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg     config.Config
	log     *slog.Logger
	fetcher *producthunt.Fetcher
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "phposts",
		Short:         "Product Hunt posts by UTC date range",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Name())
		},
	}

	root.AddCommand(a.serveCmd(), a.fetchCmd(), a.httpCmd())

	return root
}

func (a *app) init(command string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	// stdout carries MCP frames or command output.
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if command == "http" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	a.cfg = cfg
	a.log = slog.New(handler)
	slog.SetDefault(a.log)

	if cfg.Token == "" {
		a.log.Warn("PRODUCTHUNT_TOKEN is missing so every fetch will fail",
			"envVar", "PRODUCTHUNT_TOKEN")
	}

	a.fetcher = producthunt.NewFetcher(cfg.Token, cfg.APIURL, cfg.Timeout, a.log)

	return nil
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the ph_posts tool over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := tool.NewServer(a.fetcher, version, a.log)

			a.log.InfoContext(cmd.Context(), "MCP server is started",
				"transport", "stdio",
				"tool", tool.PostsToolName)

			if err := server.ServeStdio(s); err != nil {
				return fmt.Errorf("serve stdio: %w", err)
			}

			return nil
		},
	}
}

func (a *app) fetchCmd() *cobra.Command {
	var (
		req    domain.FetchRequest
		format string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch posts once and print them",
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return validateFormat(format)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()

			posts, err := a.fetcher.FetchPosts(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("fetch posts: %w", err)
			}

			a.log.DebugContext(cmd.Context(), "Fetch is done",
				"count", len(posts),
				"durationMs", time.Since(start).Milliseconds())

			return writePosts(cmd.OutOrStdout(), posts, req, format)
		},
	}

	cmd.Flags().StringVar(&req.Start, "start", "", "first UTC day, YYYY-MM-DD")
	cmd.Flags().StringVar(&req.End, "end", "", "last UTC day (inclusive), YYYY-MM-DD; defaults to --start")
	cmd.Flags().IntVar(&req.First, "first", producthunt.DefaultFirst, "maximum number of posts")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json, rss or atom")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func (a *app) httpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "http",
		Short: "Serve posts as JSON and RSS over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return httpserver.New(a.cfg.HTTPAddr, a.fetcher, a.log).Start(ctx)
		},
	}
}

func validateFormat(format string) error {
	switch format {
	case formatJSON, rss.FormatRSS, rss.FormatAtom:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q", format)
	}
}

func writePosts(
	w io.Writer,
	posts []domain.Post,
	req domain.FetchRequest,
	format string,
) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(posts)
	}

	out, err := rss.Render(rss.Feed(posts, req.Start, req.End), format)
	if err != nil {
		return fmt.Errorf("render feed: %w", err)
	}

	_, err = fmt.Fprintln(w, out)

	return err
}
