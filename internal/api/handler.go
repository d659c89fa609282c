// Package api exposes the App over JSON HTTP for the UI shell.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/enfq/app/internal/access"
	"github.com/enfq/app/internal/app"
	"github.com/enfq/app/internal/exam"
	"github.com/enfq/app/internal/middleware"
	"github.com/enfq/app/internal/models"
	"github.com/enfq/app/internal/payment"
	"github.com/enfq/app/internal/practice"
	"github.com/enfq/app/internal/profile"
)

type Handler struct {
	app      *app.App
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(a *app.App, validate *validator.Validate, logger *slog.Logger) *Handler {
	return &Handler{app: a, validate: validate, logger: logger.With("component", "api")}
}

type deniedResponse struct {
	Error  string           `json:"error"`
	Access app.AccessStatus `json:"access"`
}

// ── Profile & Settings ───────────────────────────────────

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Profile())
}

func (h *Handler) UpdateOnboarding(w http.ResponseWriter, r *http.Request) {
	var req models.OnboardingRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.app.Onboard(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.SettingsRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.app.UpdateSettings(req))
}

func (h *Handler) GetAccess(w http.ResponseWriter, r *http.Request) {
	st, err := h.app.Access(r.Context(), fingerprint(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ── Practice ─────────────────────────────────────────────

func (h *Handler) NextPractice(w http.ResponseWriter, r *http.Request) {
	snap, err := h.app.PracticeNext(r.Context(), fingerprint(r))
	if err != nil {
		switch {
		case errors.Is(err, practice.ErrStale):
			writeJSON(w, http.StatusConflict, snap)
		case snap.State == practice.StateFailed:
			// generation failed; the snapshot carries the error and the view offers a retry
			writeJSON(w, http.StatusBadGateway, snap)
		default:
			h.fail(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) AnswerPractice(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerRequest
	if !h.decode(w, r, &req) {
		return
	}
	snap, err := h.app.PracticeAnswer(r.Context(), req.Index)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) GetPractice(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Practice())
}

func (h *Handler) LeavePractice(w http.ResponseWriter, r *http.Request) {
	h.app.LeavePractice()
	w.WriteHeader(http.StatusNoContent)
}

// ── Exam ─────────────────────────────────────────────────

func (h *Handler) GetExamOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.app.ExamOptions(r.Context(), fingerprint(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (h *Handler) StartExam(w http.ResponseWriter, r *http.Request) {
	var cfg models.ExamConfig
	if !h.decode(w, r, &cfg) {
		return
	}
	view, err := h.app.StartExam(r.Context(), fingerprint(r), cfg)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, view)
}

func (h *Handler) GetExam(w http.ResponseWriter, r *http.Request) {
	view, err := h.app.Exam()
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) AnswerExam(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.examResult(w)(h.app.ExamAnswer(req.Index))
}

func (h *Handler) NextExam(w http.ResponseWriter, r *http.Request) {
	h.examResult(w)(h.app.ExamNext())
}

func (h *Handler) PrevExam(w http.ResponseWriter, r *http.Request) {
	h.examResult(w)(h.app.ExamPrev())
}

func (h *Handler) JumpExam(w http.ResponseWriter, r *http.Request) {
	var req models.JumpRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.examResult(w)(h.app.ExamJump(req.Position))
}

func (h *Handler) FinishExam(w http.ResponseWriter, r *http.Request) {
	h.examResult(w)(h.app.FinishExam())
}

func (h *Handler) AbandonExam(w http.ResponseWriter, r *http.Request) {
	h.app.AbandonExam()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) examResult(w http.ResponseWriter) func(app.ExamView, error) {
	return func(view app.ExamView, err error) {
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// ── Summary ──────────────────────────────────────────────

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	var req models.SummaryRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.app.Summary(r.Context(), fingerprint(r), req.Subject)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ── Payment ──────────────────────────────────────────────

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	snap, err := h.app.Checkout(r.Context(), fingerprint(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, snap)
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Payment())
}

func (h *Handler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.CancelPayment())
}

// ── Helpers ──────────────────────────────────────────────

func fingerprint(r *http.Request) string {
	fp, _ := middleware.FingerprintFrom(r.Context())
	return fp
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	var denied *app.DeniedError
	switch {
	case errors.Is(err, access.ErrUnknownOption),
		errors.Is(err, exam.ErrInvalidChoice),
		errors.Is(err, exam.ErrInvalidPosition),
		errors.Is(err, practice.ErrInvalidChoice),
		errors.Is(err, profile.ErrInvalidArea):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.As(err, &denied):
		writeJSON(w, http.StatusForbidden, deniedResponse{Error: err.Error(), Access: denied.Status})
	case errors.Is(err, app.ErrNoExam), errors.Is(err, app.ErrNoPractice):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, exam.ErrNotRunning),
		errors.Is(err, exam.ErrAtFirstQuestion),
		errors.Is(err, exam.ErrAtLastQuestion),
		errors.Is(err, practice.ErrNotReady),
		errors.Is(err, practice.ErrClosed),
		errors.Is(err, payment.ErrBusy):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, app.ErrGeneration):
		h.logger.Warn("generation failed", "error", err)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
