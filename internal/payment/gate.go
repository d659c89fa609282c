// Package payment drives the subscription checkout: it opens the provider's
// checkout page and polls an external status endpoint until the payment is
// approved, rejected, or the attempt budget runs out.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/enfq/app/internal/models"
)

var ErrBusy = errors.New("a checkout is already in progress")

// StatusSource reports the provider-side state of one checkout attempt.
type StatusSource interface {
	Status(ctx context.Context, attemptID string) (models.PaymentStatus, error)
}

// Opener presents the checkout page to the learner.
type Opener interface {
	Open(ctx context.Context, checkoutURL string) error
}

// OpenerFunc adapts a plain function to Opener.
type OpenerFunc func(ctx context.Context, checkoutURL string) error

func (f OpenerFunc) Open(ctx context.Context, checkoutURL string) error { return f(ctx, checkoutURL) }

// Activator commits an approved payment. It runs while the gate holds its
// lock, so a concurrent Cancel cannot interleave with the profile write.
type Activator func(ctx context.Context, approvedAt time.Time) error

// Snapshot is the observable gate state.
type Snapshot struct {
	State       models.GateState `json:"state"`
	AttemptID   string           `json:"attempt_id,omitempty"`
	CheckoutURL string           `json:"checkout_url,omitempty"`
	Attempts    int              `json:"attempts"`
	MaxAttempts int              `json:"max_attempts"`
	ApprovedAt  *time.Time       `json:"approved_at,omitempty"`
	Error       string           `json:"error,omitempty"`
}

type Gate struct {
	checkoutURL string
	opener      Opener
	source      StatusSource
	logger      *slog.Logger
	interval    time.Duration
	maxAttempts int
	now         func() time.Time

	mu         sync.Mutex
	state      models.GateState
	run        uint64
	attemptID  string
	attemptURL string
	attempts   int
	approvedAt *time.Time
	err        error
	cancel     context.CancelFunc
	done       chan struct{}
}

type Option func(*Gate)

func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// NewGate builds an idle gate. interval and maxAttempts bound how long a
// single checkout may stay unconfirmed.
func NewGate(checkoutURL string, opener Opener, source StatusSource, interval time.Duration, maxAttempts int, logger *slog.Logger, opts ...Option) *Gate {
	g := &Gate{
		checkoutURL: checkoutURL,
		opener:      opener,
		source:      source,
		logger:      logger.With("component", "payment"),
		interval:    interval,
		maxAttempts: maxAttempts,
		now:         time.Now,
		state:       models.GateIdle,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Begin opens the checkout and starts polling in the background. activate
// is called at most once, when the provider first reports approval.
func (g *Gate) Begin(ctx context.Context, activate Activator) (Snapshot, error) {
	g.mu.Lock()
	if g.state == models.GateCheckoutOpened || g.state == models.GatePolling {
		g.mu.Unlock()
		return Snapshot{}, ErrBusy
	}
	g.run++
	run := g.run
	g.attemptID = uuid.NewString()
	g.attemptURL = withAttempt(g.checkoutURL, g.attemptID)
	g.attempts = 0
	g.approvedAt = nil
	g.err = nil
	g.state = models.GateCheckoutOpened
	attemptID, attemptURL := g.attemptID, g.attemptURL
	g.mu.Unlock()

	g.logger.Info("opening checkout", "attempt", attemptID)
	if err := g.opener.Open(ctx, attemptURL); err != nil {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.run == run && g.state == models.GateCheckoutOpened {
			g.state = models.GateFailed
			g.err = fmt.Errorf("open checkout: %w", err)
		}
		return g.snapshotLocked(), g.err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.run != run || g.state != models.GateCheckoutOpened {
		// cancelled while the checkout was opening
		return g.snapshotLocked(), nil
	}
	pollCtx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.done = make(chan struct{})
	g.state = models.GatePolling
	go g.poll(pollCtx, run, activate, g.done)
	return g.snapshotLocked(), nil
}

func (g *Gate) poll(ctx context.Context, run uint64, activate Activator, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	g.mu.Lock()
	attemptID := g.attemptID
	g.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := g.source.Status(ctx, attemptID)
		if ctx.Err() != nil {
			return
		}
		if g.observe(ctx, run, status, err, activate) {
			return
		}
	}
}

// observe applies one poll result and reports whether polling should stop.
func (g *Gate) observe(ctx context.Context, run uint64, status models.PaymentStatus, err error, activate Activator) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.run != run || g.state != models.GatePolling {
		return true
	}
	g.attempts++

	switch {
	case err != nil:
		g.logger.Warn("payment status check failed", "attempt", g.attemptID, "poll", g.attempts, "error", err)
	case status == models.PaymentApproved:
		at := g.now().UTC()
		if err := activate(ctx, at); err != nil {
			g.logger.Error("activating subscription failed", "attempt", g.attemptID, "error", err)
			g.stopLocked(models.GateFailed, fmt.Errorf("activate subscription: %w", err))
			return true
		}
		g.approvedAt = &at
		g.logger.Info("payment approved", "attempt", g.attemptID, "polls", g.attempts)
		g.stopLocked(models.GateApproved, nil)
		return true
	case status == models.PaymentFailed:
		g.logger.Info("payment rejected", "attempt", g.attemptID)
		g.stopLocked(models.GateFailed, errors.New("payment was not approved"))
		return true
	}

	if g.attempts >= g.maxAttempts {
		g.logger.Info("payment confirmation timed out", "attempt", g.attemptID, "polls", g.attempts)
		g.stopLocked(models.GateExpired, fmt.Errorf("no confirmation after %d checks", g.attempts))
		return true
	}
	return false
}

func (g *Gate) stopLocked(state models.GateState, err error) {
	g.state = state
	g.err = err
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// Cancel stops an unfinished checkout and returns the gate to idle. The
// profile is never touched. Terminal states are left as they are.
func (g *Gate) Cancel() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case models.GateCheckoutOpened, models.GatePolling:
		g.run++
		g.stopLocked(models.GateIdle, nil)
		g.logger.Info("checkout cancelled", "attempt", g.attemptID)
	}
	return g.snapshotLocked()
}

// Reset clears a terminal state so the gate can be shown fresh.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Terminal() {
		g.state = models.GateIdle
		g.err = nil
	}
}

// Close stops any polling. It is safe to call more than once.
func (g *Gate) Close() {
	g.Cancel()
}

// Wait blocks until the current polling run has stopped.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	done := g.done
	g.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gate) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Gate) snapshotLocked() Snapshot {
	s := Snapshot{
		State:       g.state,
		AttemptID:   g.attemptID,
		CheckoutURL: g.attemptURL,
		Attempts:    g.attempts,
		MaxAttempts: g.maxAttempts,
	}
	if g.approvedAt != nil {
		at := *g.approvedAt
		s.ApprovedAt = &at
	}
	if g.err != nil {
		s.Error = g.err.Error()
	}
	return s
}

func withAttempt(raw, attemptID string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("order_nsu", attemptID)
	u.RawQuery = q.Encode()
	return u.String()
}
