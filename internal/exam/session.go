// Package exam runs a timed multi-question attempt.
//
// A session fetches every question before the clock starts. Once running, a
// countdown ticks once per second regardless of navigation, and reaching
// zero finalizes the attempt wherever the cursor is.
package exam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/enfq/app/internal/models"
)

var (
	ErrNotRunning      = errors.New("exam is not running")
	ErrNotPrefetching  = errors.New("exam questions already loaded")
	ErrInvalidPosition = errors.New("question position out of range")
	ErrInvalidChoice   = errors.New("alternative index out of range")
	ErrAtLastQuestion  = errors.New("already at the last question")
	ErrAtFirstQuestion = errors.New("already at the first question")
	ErrAborted         = errors.New("exam aborted")
)

// QuestionSource produces one question per call.
type QuestionSource interface {
	Question(ctx context.Context, req models.QuestionRequest) (models.Question, error)
}

type Session struct {
	id      string
	cfg     models.ExamConfig
	request models.QuestionRequest
	logger  *slog.Logger
	now     func() time.Time

	tickInterval time.Duration
	manualClock  bool

	mu            sync.Mutex
	state         models.ExamState
	questions     []models.Question
	answers       map[int]int
	cursor        int
	remaining     int
	report        *models.ExamReport
	err           error
	prefetchStart time.Time
	cancelFetch   context.CancelFunc
	onFinish      func(models.ExamReport)

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
}

type Option func(*Session)

// WithTickInterval changes how often the countdown loses one second.
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) { s.tickInterval = d }
}

// WithManualClock disables the internal ticker; the caller drives Tick.
func WithManualClock() Option {
	return func(s *Session) { s.manualClock = true }
}

// New creates a session for cfg. Every question is requested with the
// objective, board, difficulty and area in req.
func New(cfg models.ExamConfig, req models.QuestionRequest, logger *slog.Logger, opts ...Option) *Session {
	s := &Session{
		id:           uuid.NewString(),
		cfg:          cfg,
		request:      req,
		now:          time.Now,
		tickInterval: time.Second,
		state:        models.ExamPrefetching,
		answers:      make(map[int]int),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	s.logger = logger.With("component", "exam", "session", s.id)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Config() models.ExamConfig { return s.cfg }

// OnFinish registers fn to receive the report once. It runs outside the
// session lock.
func (s *Session) OnFinish(fn func(models.ExamReport)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFinish = fn
}

// Done is closed when the session reaches DONE or is aborted.
func (s *Session) Done() <-chan struct{} { return s.done }

// Prefetch acquires all questions one after another, alternating category
// hints, then starts the countdown. Any failure aborts the whole exam.
func (s *Session) Prefetch(ctx context.Context, src QuestionSource) error {
	s.mu.Lock()
	switch {
	case s.state == models.ExamAborted:
		s.mu.Unlock()
		return ErrAborted
	case s.state != models.ExamPrefetching || s.cancelFetch != nil:
		s.mu.Unlock()
		return ErrNotPrefetching
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancelFetch = cancel
	s.prefetchStart = s.now()
	s.mu.Unlock()

	s.logger.Info("prefetching exam", "questions", s.cfg.Questions, "minutes", s.cfg.Minutes)

	var last *models.QuestionType
	for i := 0; i < s.cfg.Questions; i++ {
		req := s.request
		req.AvoidType = last

		q, err := src.Question(ctx, req)

		s.mu.Lock()
		if s.state != models.ExamPrefetching {
			s.mu.Unlock()
			return ErrAborted
		}
		if err != nil {
			s.state = models.ExamAborted
			s.err = fmt.Errorf("prefetch question %d of %d: %w", i+1, s.cfg.Questions, err)
			s.questions = nil
			s.mu.Unlock()
			s.logger.Warn("exam prefetch failed", "error", err, "fetched", i)
			s.finishChannels()
			return s.err
		}
		s.questions = append(s.questions, q)
		s.mu.Unlock()

		qt := q.Type
		last = &qt
	}

	s.mu.Lock()
	s.state = models.ExamRunning
	s.remaining = s.cfg.LimitSeconds()
	s.cursor = 0
	s.mu.Unlock()

	s.logger.Info("exam started", "limit_seconds", s.cfg.LimitSeconds())
	if !s.manualClock {
		go s.run()
	}
	return nil
}

func (s *Session) run() {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if !s.Tick() {
				return
			}
		}
	}
}

// Tick removes one second from the countdown. It reports whether the exam
// is still running afterwards.
func (s *Session) Tick() bool {
	s.mu.Lock()
	if s.state != models.ExamRunning {
		s.mu.Unlock()
		return false
	}
	s.remaining--
	if s.remaining%60 == 0 {
		s.logger.Debug("countdown", "remaining", s.remaining)
	}
	if s.remaining > 0 {
		s.mu.Unlock()
		return true
	}
	s.remaining = 0
	report, notify := s.finalizeLocked(true)
	s.mu.Unlock()

	s.deliver(report, notify)
	return false
}

// Answer records or replaces the choice for the question under the cursor.
func (s *Session) Answer(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.ExamRunning {
		return ErrNotRunning
	}
	if !s.questions[s.cursor].ValidChoice(index) {
		return ErrInvalidChoice
	}
	s.answers[s.cursor] = index
	return nil
}

// Next moves forward one question. It never finishes the exam.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.ExamRunning {
		return ErrNotRunning
	}
	if s.cursor >= len(s.questions)-1 {
		return ErrAtLastQuestion
	}
	s.cursor++
	return nil
}

func (s *Session) Prev() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.ExamRunning {
		return ErrNotRunning
	}
	if s.cursor == 0 {
		return ErrAtFirstQuestion
	}
	s.cursor--
	return nil
}

func (s *Session) Jump(position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.ExamRunning {
		return ErrNotRunning
	}
	if position < 0 || position >= len(s.questions) {
		return ErrInvalidPosition
	}
	s.cursor = position
	return nil
}

// Finish ends the exam now, from any position.
func (s *Session) Finish() (models.ExamReport, error) {
	s.mu.Lock()
	if s.state != models.ExamRunning {
		s.mu.Unlock()
		return models.ExamReport{}, ErrNotRunning
	}
	report, notify := s.finalizeLocked(false)
	s.mu.Unlock()

	s.deliver(report, notify)
	return report, nil
}

// Report returns the scored report once the exam is done.
func (s *Session) Report() (models.ExamReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil {
		return models.ExamReport{}, false
	}
	return *s.report, true
}

// Close tears the session down. A running countdown stops without
// producing a report and an unfinished prefetch is abandoned.
func (s *Session) Close() {
	s.mu.Lock()
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	switch s.state {
	case models.ExamPrefetching, models.ExamRunning:
		s.state = models.ExamAborted
		s.err = ErrAborted
		s.logger.Info("exam abandoned")
	}
	s.mu.Unlock()
	s.finishChannels()
}

func (s *Session) finalizeLocked(timedOut bool) (models.ExamReport, func(models.ExamReport)) {
	s.state = models.ExamFinalizing
	report := buildReport(s.id, s.questions, s.answers, s.cfg.LimitSeconds(), s.remaining, timedOut)
	s.report = &report
	s.state = models.ExamDone
	s.logger.Info("exam finished",
		"correct", report.Correct, "wrong", report.Wrong, "unanswered", report.Unanswered,
		"elapsed_seconds", report.ElapsedSeconds, "timed_out", timedOut)
	return report, s.onFinish
}

func (s *Session) deliver(report models.ExamReport, notify func(models.ExamReport)) {
	s.finishChannels()
	if notify != nil {
		notify(report)
	}
}

func (s *Session) finishChannels() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.doneOnce.Do(func() { close(s.done) })
}
