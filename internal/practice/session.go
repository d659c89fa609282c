// Package practice runs the untimed one-question-at-a-time loop.
package practice

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/enfq/app/internal/models"
	"github.com/enfq/app/internal/profile"
)

var (
	ErrNotReady      = errors.New("no question is waiting for an answer")
	ErrStale         = errors.New("question request was superseded")
	ErrInvalidChoice = errors.New("alternative index out of range")
	ErrClosed        = errors.New("practice session closed")
)

// QuestionSource produces one question per call.
type QuestionSource interface {
	Question(ctx context.Context, req models.QuestionRequest) (models.Question, error)
}

// ProfileUpdater applies a read-modify-write to the stored profile.
type ProfileUpdater interface {
	Update(ctx context.Context, fn profile.UpdateFunc) (models.Profile, error)
}

type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateAnswered State = "answered"
	StateFailed   State = "failed"
)

// Snapshot is what a view renders. The answer key is present only once the
// learner has answered.
type Snapshot struct {
	State        State                  `json:"state"`
	Question     *models.PublicQuestion `json:"question,omitempty"`
	Selected     *int                   `json:"selected,omitempty"`
	Correct      *bool                  `json:"correct,omitempty"`
	CorrectIndex *int                   `json:"correct_index,omitempty"`
	Explanation  string                 `json:"explanation,omitempty"`
	CoachTip     string                 `json:"coach_tip,omitempty"`
	Phrase       string                 `json:"phrase,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

type Session struct {
	src      QuestionSource
	profiles ProfileUpdater
	logger   *slog.Logger
	now      func() time.Time

	mu           sync.Mutex
	state        State
	seq          uint64
	cancel       context.CancelFunc
	current      *models.Question
	selected     *int
	lastType     *models.QuestionType
	loadingSince time.Time
	err          error
	closed       bool
}

func New(src QuestionSource, profiles ProfileUpdater, logger *slog.Logger) *Session {
	return &Session{
		src:      src,
		profiles: profiles,
		logger:   logger.With("component", "practice"),
		now:      time.Now,
		state:    StateIdle,
	}
}

// Next discards the current question and fetches another, biased away from
// the category of the previous one. A fetch that is overtaken by a newer
// Next or by Close returns ErrStale and leaves the session untouched.
func (s *Session) Next(ctx context.Context, req models.QuestionRequest) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = StateLoading
	s.current = nil
	s.selected = nil
	s.err = nil
	s.loadingSince = s.now()
	if s.lastType != nil {
		t := *s.lastType
		req.AvoidType = &t
	}
	s.mu.Unlock()

	q, err := s.src.Question(fetchCtx, req)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.seq {
		return s.snapshotLocked(), ErrStale
	}
	s.cancel = nil
	if err != nil {
		s.state = StateFailed
		s.err = err
		s.logger.Warn("question fetch failed", "error", err)
		return s.snapshotLocked(), err
	}

	s.current = &q
	qt := q.Type
	s.lastType = &qt
	s.state = StateReady
	s.logger.Debug("question ready", "type", q.Type, "difficulty", q.Difficulty)
	return s.snapshotLocked(), nil
}

// Select scores the first answer to the current question. Later selections
// on the same question change nothing. The answer is revealed only after
// the profile counters have been persisted.
func (s *Session) Select(ctx context.Context, index int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateAnswered:
		return s.snapshotLocked(), nil
	case StateReady:
	default:
		return s.snapshotLocked(), ErrNotReady
	}
	if !s.current.ValidChoice(index) {
		return s.snapshotLocked(), ErrInvalidChoice
	}

	correct := s.current.IsCorrect(index)
	if _, err := s.profiles.Update(ctx, func(p *models.Profile) (bool, error) {
		profile.RecordAnswer(p, correct)
		return true, nil
	}); err != nil {
		return s.snapshotLocked(), err
	}

	s.selected = &index
	s.state = StateAnswered
	s.logger.Debug("answer scored", "correct", correct)
	return s.snapshotLocked(), nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close abandons the session. An in-flight fetch is cancelled and its
// result dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.closed = true
	s.state = StateIdle
	s.current = nil
	s.selected = nil
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state}
	switch s.state {
	case StateLoading:
		snap.Phrase = models.PhraseAt(s.now().Sub(s.loadingSince))
	case StateFailed:
		snap.Error = s.err.Error()
	}
	if s.current != nil {
		pub := s.current.Public()
		snap.Question = &pub
	}
	if s.state == StateAnswered {
		sel := *s.selected
		idx := s.current.CorrectIndex
		correct := s.current.IsCorrect(sel)
		snap.Selected = &sel
		snap.CorrectIndex = &idx
		snap.Correct = &correct
		snap.Explanation = s.current.Explanation
		snap.CoachTip = s.current.CoachTip
	}
	return snap
}
