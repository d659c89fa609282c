package exam

import (
	"sort"

	"github.com/enfq/app/internal/models"
)

// Snapshot is the observable state of a session. During prefetch only the
// progress fields are meaningful.
type Snapshot struct {
	ID        string                 `json:"id"`
	State     models.ExamState       `json:"state"`
	Progress  int                    `json:"progress"`
	Total     int                    `json:"total"`
	Phrase    string                 `json:"phrase,omitempty"`
	Cursor    int                    `json:"cursor"`
	Remaining int                    `json:"remaining_seconds"`
	Clock     string                 `json:"clock"`
	Question  *models.PublicQuestion `json:"question,omitempty"`
	Selected  *int                   `json:"selected,omitempty"`
	Answered  []int                  `json:"answered"`
	Error     string                 `json:"error,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.id,
		State:     s.state,
		Progress:  len(s.questions),
		Total:     s.cfg.Questions,
		Cursor:    s.cursor,
		Remaining: s.remaining,
		Clock:     FormatClock(s.remaining),
		Answered:  make([]int, 0, len(s.answers)),
	}
	if s.state == models.ExamPrefetching {
		snap.Phrase = models.PhraseAt(s.now().Sub(s.prefetchStart))
		snap.Clock = FormatClock(s.cfg.LimitSeconds())
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	if s.state == models.ExamRunning && s.cursor < len(s.questions) {
		pub := s.questions[s.cursor].Public()
		snap.Question = &pub
		if choice, ok := s.answers[s.cursor]; ok {
			c := choice
			snap.Selected = &c
		}
	}
	for pos := range s.answers {
		snap.Answered = append(snap.Answered, pos)
	}
	sort.Ints(snap.Answered)
	return snap
}
