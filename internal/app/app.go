// Package app owns the running state of one installation: the profile
// store, the question source, the current practice and exam sessions and
// the payment gate. Every view action goes through an App method.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/enfq/app/internal/access"
	"github.com/enfq/app/internal/exam"
	"github.com/enfq/app/internal/models"
	"github.com/enfq/app/internal/payment"
	"github.com/enfq/app/internal/practice"
	"github.com/enfq/app/internal/profile"
)

var (
	ErrNoExam     = errors.New("no exam in progress")
	ErrNoPractice = errors.New("no practice question requested")
	ErrGeneration = errors.New("content generation failed")
)

// Source produces questions and study summaries.
type Source interface {
	Question(ctx context.Context, req models.QuestionRequest) (models.Question, error)
	Summary(ctx context.Context, subject string) (string, error)
}

// Settings are the study preferences held for the lifetime of the process.
type Settings struct {
	Board      models.ExamBoard  `json:"board"`
	Difficulty models.Difficulty `json:"difficulty"`
}

func DefaultSettings() Settings {
	return Settings{Board: models.BoardENARE, Difficulty: models.DifficultyMedium}
}

// AccessStatus is a policy decision plus the support contact shown when
// the account is locked.
type AccessStatus struct {
	access.Decision
	SupportURL string `json:"support_url,omitempty"`
}

// DeniedError reports that the access policy refused an action.
type DeniedError struct {
	Status AccessStatus
	Err    error
}

func (e *DeniedError) Error() string { return e.Err.Error() }
func (e *DeniedError) Unwrap() error { return e.Err }

type App struct {
	store      *profile.Store
	source     Source
	gate       *payment.Gate
	supportURL string
	logger     *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	settings Settings
	practice *practice.Session
	exam     *exam.Session
	analysis bool
	examOpts []exam.Option
}

type Option func(*App)

func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithExamOptions passes options to every exam session the app creates.
func WithExamOptions(opts ...exam.Option) Option {
	return func(a *App) { a.examOpts = opts }
}

func New(store *profile.Store, source Source, gate *payment.Gate, supportURL string, logger *slog.Logger, opts ...Option) *App {
	a := &App{
		store:      store,
		source:     source,
		gate:       gate,
		supportURL: supportURL,
		logger:     logger.With("component", "app"),
		now:        time.Now,
		settings:   DefaultSettings(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ── Profile & Access ─────────────────────────────────────

func (a *App) Profile() models.Profile {
	return a.store.Snapshot()
}

func (a *App) Onboard(ctx context.Context, req models.OnboardingRequest) (models.Profile, error) {
	return a.store.Update(ctx, func(p *models.Profile) (bool, error) {
		return profile.ApplyOnboarding(p, req)
	})
}

func (a *App) Settings() Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings
}

func (a *App) UpdateSettings(req models.SettingsRequest) Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	if req.Board != nil {
		a.settings.Board = *req.Board
	}
	if req.Difficulty != nil {
		a.settings.Difficulty = *req.Difficulty
	}
	return a.settings
}

// Access evaluates the policy for fingerprint fp and persists any device
// registration or lock it causes in the same profile update.
func (a *App) Access(ctx context.Context, fp string) (AccessStatus, error) {
	var d access.Decision
	_, err := a.store.Update(ctx, func(p *models.Profile) (bool, error) {
		dec, next, changed := access.Evaluate(*p, fp, a.now())
		d = dec
		if changed {
			*p = next
		}
		return changed, nil
	})
	if err != nil {
		return AccessStatus{}, fmt.Errorf("evaluate access: %w", err)
	}
	if d.Locked() {
		a.logger.Warn("account locked", "fingerprint", fp)
		return AccessStatus{Decision: d, SupportURL: a.supportURL}, nil
	}
	return AccessStatus{Decision: d}, nil
}

func (a *App) questionRequest() models.QuestionRequest {
	p := a.store.Snapshot()
	s := a.Settings()
	return models.QuestionRequest{
		Objective:  p.ObjectiveLabel(),
		Difficulty: s.Difficulty,
		Board:      s.Board,
		Area:       p.ResidencyArea,
	}
}

func (a *App) allowStudy(ctx context.Context, fp string) (AccessStatus, error) {
	st, err := a.Access(ctx, fp)
	if err != nil {
		return st, err
	}
	if err := access.AllowsStudy(st.Decision); err != nil {
		return st, &DeniedError{Status: st, Err: err}
	}
	return st, nil
}

// ── Practice ─────────────────────────────────────────────

// PracticeNext fetches the next practice question, replacing the current one.
func (a *App) PracticeNext(ctx context.Context, fp string) (practice.Snapshot, error) {
	if _, err := a.allowStudy(ctx, fp); err != nil {
		return practice.Snapshot{}, err
	}
	a.mu.Lock()
	if a.practice == nil {
		a.practice = practice.New(a.source, a.store, a.logger)
	}
	sess := a.practice
	a.mu.Unlock()

	return sess.Next(ctx, a.questionRequest())
}

func (a *App) PracticeAnswer(ctx context.Context, index int) (practice.Snapshot, error) {
	a.mu.Lock()
	sess := a.practice
	a.mu.Unlock()
	if sess == nil {
		return practice.Snapshot{}, ErrNoPractice
	}
	return sess.Select(ctx, index)
}

// LeavePractice abandons the practice loop. A question still loading is
// discarded when it arrives.
func (a *App) LeavePractice() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.practice != nil {
		a.practice.Close()
		a.practice = nil
	}
}

func (a *App) Practice() practice.Snapshot {
	a.mu.Lock()
	sess := a.practice
	a.mu.Unlock()
	if sess == nil {
		return practice.Snapshot{State: practice.StateIdle}
	}
	return sess.Snapshot()
}

// ── Exam ─────────────────────────────────────────────────

// ExamView is the current exam plus, once it is done, the result as the
// learner's tier may see it.
type ExamView struct {
	Exam   exam.Snapshot      `json:"exam"`
	Result *models.ExamResult `json:"result,omitempty"`
}

func (a *App) ExamOptions(ctx context.Context, fp string) (access.ExamOptions, error) {
	st, err := a.allowStudy(ctx, fp)
	if err != nil {
		return access.ExamOptions{}, err
	}
	return access.Options(st.Decision), nil
}

// StartExam replaces any current exam with a new one and begins fetching
// its questions in the background.
func (a *App) StartExam(ctx context.Context, fp string, cfg models.ExamConfig) (ExamView, error) {
	st, err := a.Access(ctx, fp)
	if err != nil {
		return ExamView{}, err
	}
	if err := access.AllowsExam(st.Decision, cfg); err != nil {
		return ExamView{}, &DeniedError{Status: st, Err: err}
	}

	sess := exam.New(cfg, a.questionRequest(), a.logger, a.examOpts...)
	sess.OnFinish(a.recordExam)

	a.mu.Lock()
	if a.exam != nil {
		a.exam.Close()
	}
	a.exam = sess
	a.analysis = st.Limits.Analysis
	a.mu.Unlock()

	go func() {
		if err := sess.Prefetch(context.Background(), a.source); err != nil && !errors.Is(err, exam.ErrAborted) {
			a.logger.Warn("exam could not start", "session", sess.ID(), "error", err)
		}
	}()
	return a.view(sess, st.Limits.Analysis), nil
}

func (a *App) recordExam(r models.ExamReport) {
	if _, err := a.store.Update(context.Background(), func(p *models.Profile) (bool, error) {
		return profile.RecordExam(p, r.Total, r.Correct), nil
	}); err != nil {
		a.logger.Error("recording exam result", "session", r.SessionID, "error", err)
	}
}

func (a *App) current() (*exam.Session, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.exam == nil {
		return nil, false, ErrNoExam
	}
	return a.exam, a.analysis, nil
}

func (a *App) view(sess *exam.Session, analysis bool) ExamView {
	v := ExamView{Exam: sess.Snapshot()}
	if r, ok := sess.Report(); ok {
		res := exam.Result(r, analysis)
		v.Result = &res
	}
	return v
}

func (a *App) Exam() (ExamView, error) {
	sess, analysis, err := a.current()
	if err != nil {
		return ExamView{}, err
	}
	return a.view(sess, analysis), nil
}

// ExamDone returns a channel closed when the current exam ends, whether by
// finishing, timing out or being abandoned.
func (a *App) ExamDone() (<-chan struct{}, error) {
	sess, _, err := a.current()
	if err != nil {
		return nil, err
	}
	return sess.Done(), nil
}

func (a *App) examAction(fn func(*exam.Session) error) (ExamView, error) {
	sess, analysis, err := a.current()
	if err != nil {
		return ExamView{}, err
	}
	if err := fn(sess); err != nil {
		return a.view(sess, analysis), err
	}
	return a.view(sess, analysis), nil
}

func (a *App) ExamAnswer(index int) (ExamView, error) {
	return a.examAction(func(s *exam.Session) error { return s.Answer(index) })
}

func (a *App) ExamNext() (ExamView, error) {
	return a.examAction((*exam.Session).Next)
}

func (a *App) ExamPrev() (ExamView, error) {
	return a.examAction((*exam.Session).Prev)
}

func (a *App) ExamJump(position int) (ExamView, error) {
	return a.examAction(func(s *exam.Session) error { return s.Jump(position) })
}

func (a *App) FinishExam() (ExamView, error) {
	return a.examAction(func(s *exam.Session) error {
		_, err := s.Finish()
		return err
	})
}

// AbandonExam drops the current exam without recording anything.
func (a *App) AbandonExam() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.exam != nil {
		a.exam.Close()
		a.exam = nil
	}
}

// ── Summary ──────────────────────────────────────────────

func (a *App) Summary(ctx context.Context, fp, subject string) (models.SummaryResponse, error) {
	st, err := a.allowStudy(ctx, fp)
	if err != nil {
		return models.SummaryResponse{}, err
	}
	text, err := a.source.Summary(ctx, subject)
	if err != nil {
		return models.SummaryResponse{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	content, truncated := access.TruncateSummary(st.Decision, text)
	return models.SummaryResponse{Subject: subject, Content: content, Truncated: truncated}, nil
}

// ── Payment ──────────────────────────────────────────────

// Checkout starts a payment for the device fp. On approval the subscription
// is bound to fp alone. A locked account only gets the support contact.
func (a *App) Checkout(ctx context.Context, fp string) (payment.Snapshot, error) {
	st, err := a.Access(ctx, fp)
	if err != nil {
		return a.gate.Snapshot(), err
	}
	if st.Locked() {
		return a.gate.Snapshot(), &DeniedError{Status: st, Err: access.ErrLocked}
	}
	return a.gate.Begin(ctx, func(ctx context.Context, approvedAt time.Time) error {
		_, err := a.store.Update(ctx, func(p *models.Profile) (bool, error) {
			profile.ActivatePremium(p, fp, approvedAt)
			return true, nil
		})
		return err
	})
}

func (a *App) Payment() payment.Snapshot {
	return a.gate.Snapshot()
}

func (a *App) CancelPayment() payment.Snapshot {
	return a.gate.Cancel()
}

// WaitPayment blocks until the current checkout stops polling.
func (a *App) WaitPayment(ctx context.Context) (payment.Snapshot, error) {
	if err := a.gate.Wait(ctx); err != nil {
		return a.gate.Snapshot(), err
	}
	return a.gate.Snapshot(), nil
}

// Close stops every background timer the app owns.
func (a *App) Close() {
	a.mu.Lock()
	if a.practice != nil {
		a.practice.Close()
		a.practice = nil
	}
	if a.exam != nil {
		a.exam.Close()
		a.exam = nil
	}
	a.mu.Unlock()
	a.gate.Close()
}
