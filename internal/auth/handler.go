package auth

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/enfq/app/internal/device"
	"github.com/enfq/app/internal/models"
)

type Handler struct {
	issuer   *Issuer
	signals  device.Signals
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler serves device registration. signals are the host traits every
// client fingerprint starts from.
func NewHandler(issuer *Issuer, signals device.Signals, validate *validator.Validate, logger *slog.Logger) *Handler {
	return &Handler{
		issuer:   issuer,
		signals:  signals,
		validate: validate,
		logger:   logger.With("component", "auth"),
	}
}

// RegisterDevice fingerprints the calling UI shell and returns a token bound
// to that fingerprint. An empty body fingerprints the host alone.
func (h *Handler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req models.DeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	fp := h.signals.WithClient(req.UserAgent, req.ScreenWidth, req.ScreenHeight).Fingerprint()
	token, err := h.issuer.Issue(fp)
	if err != nil {
		h.logger.Error("issuing device token", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}
	h.logger.Debug("device registered", "fingerprint", fp)
	writeJSON(w, http.StatusOK, models.DeviceResponse{Token: token, Fingerprint: fp})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
