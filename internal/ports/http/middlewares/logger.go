package middlewares

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger logs one line per request at a level picked from the response status.
// Query strings are left out since reset and signup links may carry emails.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		t1 := time.Now()
		defer func() {
			duration := time.Since(t1)
			msg := fmt.Sprintf("%s %s - %d %dB in %s",
				r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), duration)
			l := logger.With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("proto", r.Proto),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", duration),
			)

			switch {
			case ww.Status() >= 500:
				l.ErrorContext(r.Context(), msg)
			case ww.Status() >= 400:
				l.WarnContext(r.Context(), msg)
			default:
				l.InfoContext(r.Context(), msg)
			}
		}()

		next.ServeHTTP(ww, r)
	})
}
