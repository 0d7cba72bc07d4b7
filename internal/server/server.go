package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"phposts/internal/domain"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type PostsFetcher interface {
	FetchPosts(ctx context.Context, req domain.FetchRequest) ([]domain.Post, error)
}

type Server struct {
	addr    string
	fetcher PostsFetcher
	log     *slog.Logger
}

func New(addr string, fetcher PostsFetcher, log *slog.Logger) *Server {
	return &Server{
		addr:    addr,
		fetcher: fetcher,
		log:     log,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.setupMiddlewares(r)

	posts := &postsRouter{fetcher: s.fetcher, log: s.log}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/posts", posts.postsJSON)
	r.Route("/rss", func(r chi.Router) {
		r.Get("/posts", posts.postsFeed)
	})

	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.InfoContext(ctx, "HTTP server is started",
		"addr", s.addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}

	s.log.InfoContext(ctx, "HTTP server is stopped",
		"addr", s.addr)

	return nil
}

func (s *Server) setupMiddlewares(r *chi.Mux) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.InfoContext(r.Context(), "HTTP request is served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"requestID", middleware.GetReqID(r.Context()),
			"durationMs", time.Since(start).Milliseconds())
	})
}
