package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticParser map[string]string

func (p staticParser) Parse(token string) (string, error) {
	if fp, ok := p[token]; ok {
		return fp, nil
	}
	return "", errors.New("bad token")
}

func TestDeviceAuth(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FingerprintFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := DeviceAuth(staticParser{"good": "fp-1"})(next)

	tests := []struct {
		name   string
		header string
		want   int
		wantFP string
	}{
		{"valid", "Bearer good", http.StatusNoContent, "fp-1"},
		{"missing", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if seen != tt.wantFP {
				t.Errorf("fingerprint = %q, want %q", seen, tt.wantFP)
			}
		})
	}
}

func TestFingerprintFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := FingerprintFrom(req.Context()); ok {
		t.Error("expected no fingerprint")
	}
}
