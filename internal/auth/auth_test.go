package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enfq/app/internal/device"
	"github.com/enfq/app/internal/logger"
	"github.com/enfq/app/internal/models"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer(secret, time.Hour)
	token, err := iss.Issue("fp-1")
	require.NoError(t, err)

	fp, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "fp-1", fp)
}

func TestParseRejects(t *testing.T) {
	iss := NewIssuer(secret, time.Hour)
	token, err := iss.Issue("fp-1")
	require.NoError(t, err)

	other := NewIssuer("ffffffffffffffffffffffffffffffff", time.Hour)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong secret")

	_, err = iss.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewIssuer(secret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue("fp-1")
	require.NoError(t, err)
	_, err = iss.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	empty, err := iss.Issue("")
	require.NoError(t, err)
	_, err = iss.Parse(empty)
	assert.ErrorIs(t, err, ErrInvalidToken, "missing subject")
}

func registerDevice(t *testing.T, h *Handler, body io.Reader) (*httptest.ResponseRecorder, models.DeviceResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/device", body)
	rec := httptest.NewRecorder()
	h.RegisterDevice(rec, req)

	var resp models.DeviceResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestRegisterDevice(t *testing.T) {
	iss := NewIssuer(secret, time.Hour)
	host := device.Signals{"os": "linux", "hostname": "ward-7"}
	h := NewHandler(iss, host, validator.New(), logger.Discard())

	body, _ := json.Marshal(models.DeviceRequest{UserAgent: "Mozilla/5.0", ScreenWidth: 1920, ScreenHeight: 1080})
	rec, resp := registerDevice(t, h, bytes.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, host.WithClient("Mozilla/5.0", 1920, 1080).Fingerprint(), resp.Fingerprint)

	fp, err := iss.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.Fingerprint, fp)

	rec, bare := registerDevice(t, h, http.NoBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, host.Fingerprint(), bare.Fingerprint)

	rec, _ = registerDevice(t, h, bytes.NewReader([]byte("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = registerDevice(t, h, bytes.NewReader([]byte(`{"screen_width":-1}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
