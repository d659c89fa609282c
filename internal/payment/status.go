package payment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/enfq/app/internal/models"
)

// HTTPStatusSource asks the payment backend for an attempt's status. The
// backend answers with a JSON object carrying a "status" field.
type HTTPStatusSource struct {
	statusURL string
	client    *http.Client
}

func NewHTTPStatusSource(statusURL string, timeout time.Duration) *HTTPStatusSource {
	return &HTTPStatusSource{
		statusURL: statusURL,
		client:    &http.Client{Timeout: timeout},
	}
}

func (s *HTTPStatusSource) Status(ctx context.Context, attemptID string) (models.PaymentStatus, error) {
	u, err := url.Parse(s.statusURL)
	if err != nil {
		return "", fmt.Errorf("parse status url: %w", err)
	}
	q := u.Query()
	q.Set("order_nsu", attemptID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("status request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("read status response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("status endpoint returned invalid JSON")
	}
	return ParseStatus(gjson.GetBytes(body, "status").String()), nil
}

// ParseStatus maps a provider status string onto the three states the gate
// understands. Anything unrecognized counts as still pending.
func ParseStatus(raw string) models.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approved", "paid":
		return models.PaymentApproved
	case "failed", "rejected", "canceled", "cancelled":
		return models.PaymentFailed
	}
	return models.PaymentPending
}

// Simulator stands in for the payment backend during development. Each
// attempt reports approved once the delay has passed since its checkout was
// opened, or immediately after ForceApprove.
type Simulator struct {
	after time.Duration
	next  Opener
	now   func() time.Time

	mu     sync.Mutex
	opened map[string]time.Time
	forced bool
}

// NewSimulator returns a simulator that also acts as the gate's Opener,
// forwarding to next when it is non-nil.
func NewSimulator(after time.Duration, next Opener) *Simulator {
	return &Simulator{
		after:  after,
		next:   next,
		now:    time.Now,
		opened: make(map[string]time.Time),
	}
}

func (s *Simulator) Open(ctx context.Context, checkoutURL string) error {
	id := attemptFromURL(checkoutURL)
	s.mu.Lock()
	s.opened[id] = s.now()
	s.mu.Unlock()
	if s.next != nil {
		return s.next.Open(ctx, checkoutURL)
	}
	return nil
}

func (s *Simulator) Status(_ context.Context, attemptID string) (models.PaymentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.forced {
		return models.PaymentApproved, nil
	}
	opened, ok := s.opened[attemptID]
	if !ok {
		return models.PaymentPending, nil
	}
	if s.now().Sub(opened) >= s.after {
		return models.PaymentApproved, nil
	}
	return models.PaymentPending, nil
}

// ForceApprove makes every later status query report approval.
func (s *Simulator) ForceApprove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced = true
}

func attemptFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Query().Get("order_nsu")
}
