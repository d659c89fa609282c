package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/enfq/app/internal/auth"
	"github.com/enfq/app/internal/middleware"
)

// NewRouter mounts every route under /api/v1. Only device registration and
// the health check are reachable without a device token.
func NewRouter(h *Handler, authHandler *auth.Handler, tokens middleware.TokenParser) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/device", authHandler.RegisterDevice).Methods("POST")
	api.HandleFunc("/health", health).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.DeviceAuth(tokens))

	protected.HandleFunc("/profile", h.GetProfile).Methods("GET")
	protected.HandleFunc("/profile/onboarding", h.UpdateOnboarding).Methods("PUT")
	protected.HandleFunc("/settings", h.UpdateSettings).Methods("PUT")
	protected.HandleFunc("/access", h.GetAccess).Methods("GET")

	protected.HandleFunc("/practice", h.GetPractice).Methods("GET")
	protected.HandleFunc("/practice", h.LeavePractice).Methods("DELETE")
	protected.HandleFunc("/practice/next", h.NextPractice).Methods("POST")
	protected.HandleFunc("/practice/answer", h.AnswerPractice).Methods("POST")

	protected.HandleFunc("/exam/options", h.GetExamOptions).Methods("GET")
	protected.HandleFunc("/exam", h.StartExam).Methods("POST")
	protected.HandleFunc("/exam", h.GetExam).Methods("GET")
	protected.HandleFunc("/exam", h.AbandonExam).Methods("DELETE")
	protected.HandleFunc("/exam/answer", h.AnswerExam).Methods("POST")
	protected.HandleFunc("/exam/next", h.NextExam).Methods("POST")
	protected.HandleFunc("/exam/prev", h.PrevExam).Methods("POST")
	protected.HandleFunc("/exam/jump", h.JumpExam).Methods("POST")
	protected.HandleFunc("/exam/finish", h.FinishExam).Methods("POST")

	protected.HandleFunc("/summary", h.Summary).Methods("POST")

	protected.HandleFunc("/payment/checkout", h.Checkout).Methods("POST")
	protected.HandleFunc("/payment", h.GetPayment).Methods("GET")
	protected.HandleFunc("/payment/cancel", h.CancelPayment).Methods("POST")

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
