package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/colornode/internal/logging"
)

// HTTPLoggingMiddleware logs huma requests with a level chosen by status code.
func HTTPLoggingMiddleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()
	next(ctx)

	logRequest(ctx.Context(), requestInfo{
		method:     ctx.Method(),
		path:       ctx.URL().Path,
		query:      ctx.URL().RawQuery,
		userAgent:  ctx.Header("User-Agent"),
		remoteAddr: ctx.RemoteAddr(),
		status:     ctx.Status(),
		duration:   time.Since(start),
	})
}

// logHTTP does the same for handlers registered directly on the mux.
func logHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logRequest(r.Context(), requestInfo{
			method:     r.Method,
			path:       r.URL.Path,
			query:      r.URL.RawQuery,
			userAgent:  r.UserAgent(),
			remoteAddr: r.RemoteAddr,
			status:     rec.status,
			duration:   time.Since(start),
		})
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type requestInfo struct {
	method     string
	path       string
	query      string
	userAgent  string
	remoteAddr string
	status     int
	duration   time.Duration
}

func logRequest(ctx context.Context, info requestInfo) {
	logAttrs := []slog.Attr{
		slog.String("method", info.method),
		slog.String("path", info.path),
		slog.String("remote_addr", info.remoteAddr),
		slog.Int("status", info.status),
		slog.Duration("duration", info.duration),
	}
	if info.query != "" {
		logAttrs = append(logAttrs, slog.String("query", info.query))
	}
	if info.userAgent != "" {
		logAttrs = append(logAttrs, slog.String("user_agent", info.userAgent))
	}

	level := slog.LevelInfo
	switch {
	case info.method == http.MethodOptions:
		// CORS preflight
		level = slog.LevelDebug
	case info.status >= 500:
		level = slog.LevelError
	case info.status >= 400:
		level = slog.LevelWarn
	}
	logging.GetLogger("http").LogAttrs(ctx, level, "HTTP request completed", logAttrs...)
}
