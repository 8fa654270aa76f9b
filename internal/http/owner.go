package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

type ownerKey struct{}

// withOwner resolves the acting user from the X-User-ID header, falling
// back to the configured default account when the header is absent.
func withOwner(defaultUserID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := defaultUserID
			if raw := strings.TrimSpace(r.Header.Get("X-User-ID")); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || id < 1 {
					writeError(w, http.StatusBadRequest, "invalid X-User-ID header")
					return
				}
				owner = id
			}
			ctx := context.WithValue(r.Context(), ownerKey{}, owner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ownerFrom returns the acting user's ID, or nil when the middleware
// did not run (unscoped).
func ownerFrom(ctx context.Context) *int64 {
	if id, ok := ctx.Value(ownerKey{}).(int64); ok {
		return &id
	}
	return nil
}
