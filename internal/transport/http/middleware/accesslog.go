package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/community-events/internal/logger"
)

// AccessLog writes one line per request. Server errors log at error, client
// errors at warn, and successful /healthz and /metrics hits at debug.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := record(w)
		start := time.Now()

		next.ServeHTTP(rec, r)

		status := rec.Status()
		l := logger.WithCtx(r.Context())
		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		case r.URL.Path == "/healthz" || r.URL.Path == "/metrics":
			ev = l.Debug()
		default:
			ev = l.Info()
		}

		ev.Str("method", r.Method).
			Str("route", route(r)).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", rec.bytes).
			Dur("latency", time.Since(start)).
			Str("remote_ip", r.RemoteAddr).
			Bool("stream", rec.streaming()).
			Msg("http_request")
	})
}
