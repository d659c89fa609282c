// Package middleware holds HTTP middleware shared by the API routes.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/enfq/app/internal/models"
)

type contextKey string

const fingerprintKey contextKey = "fingerprint"

// TokenParser resolves a bearer token to the device fingerprint it carries.
type TokenParser interface {
	Parse(token string) (string, error)
}

// DeviceAuth rejects requests without a valid device token and stores the
// token's fingerprint in the request context.
func DeviceAuth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				unauthorized(w, "Missing device token")
				return
			}
			fp, err := parser.Parse(strings.TrimSpace(token))
			if err != nil {
				unauthorized(w, "Invalid device token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithFingerprint(r.Context(), fp)))
		})
	}
}

func WithFingerprint(ctx context.Context, fp string) context.Context {
	return context.WithValue(ctx, fingerprintKey, fp)
}

// FingerprintFrom returns the fingerprint set by DeviceAuth.
func FingerprintFrom(ctx context.Context) (string, bool) {
	fp, ok := ctx.Value(fingerprintKey).(string)
	return fp, ok && fp != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}
