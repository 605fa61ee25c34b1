package api

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/fastprodman/fairledger/internal/services/ledger"
	"github.com/go-chi/chi/v5/middleware"
)

type operatorKey struct{}

func withOperator(ctx context.Context, op ledger.Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, op)
}

// operatorFrom returns the authenticated operator, or the zero Operator on
// public routes.
func operatorFrom(ctx context.Context) ledger.Operator {
	op, _ := ctx.Value(operatorKey{}).(ledger.Operator)
	return op
}

// requestLogger writes one line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.LogAttrs(r.Context(), slog.LevelInfo, "http request",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// authenticate requires a valid bearer token and stores its operator in the
// request context.
func (h *HandlerProvider) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		op, err := h.auth.Parse(token)
		if err != nil {
			h.logger.Debug("rejected token", "error", err)
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withOperator(r.Context(), op)))
	})
}

func requireRole(roles ...ledger.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op := operatorFrom(r.Context())
			if !slices.Contains(roles, op.Role) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
