package practice

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enfq/app/internal/logger"
	"github.com/enfq/app/internal/models"
	"github.com/enfq/app/internal/profile"
)

type fakeSource struct {
	mu       sync.Mutex
	requests []models.QuestionRequest
	types    []models.QuestionType
	err      error
	gate     chan struct{}
}

func (f *fakeSource) Question(ctx context.Context, req models.QuestionRequest) (models.Question, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	n := len(f.requests)
	gate := f.gate
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.Question{}, ctx.Err()
		}
	}
	if err != nil {
		return models.Question{}, err
	}
	qt := models.TypeTheoretical
	if len(f.types) > 0 {
		qt = f.types[(n-1)%len(f.types)]
	}
	return models.Question{
		ID:           "q",
		Case:         "caso",
		Alternatives: []string{"a", "b", "c", "d", "e"},
		CorrectIndex: 2,
		Explanation:  "Porque sim. Mais detalhes.",
		CoachTip:     "dica",
		Type:         qt,
	}, nil
}

type fakeProfiles struct {
	mu      sync.Mutex
	profile models.Profile
	calls   int
	err     error
}

func (f *fakeProfiles) Update(ctx context.Context, fn profile.UpdateFunc) (models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.profile, f.err
	}
	next := f.profile.Clone()
	if _, err := fn(&next); err != nil {
		return f.profile, err
	}
	f.profile = next
	return next, nil
}

var baseReq = models.QuestionRequest{Objective: "CONTEST", Difficulty: models.DifficultyMedium, Board: models.BoardENARE}

func TestNextThenAnswer(t *testing.T) {
	src := &fakeSource{}
	profiles := &fakeProfiles{profile: models.DefaultProfile()}
	s := New(src, profiles, logger.Discard())

	snap, err := s.Next(context.Background(), baseReq)
	require.NoError(t, err)
	assert.Equal(t, StateReady, snap.State)
	require.NotNil(t, snap.Question)
	assert.Nil(t, snap.CorrectIndex, "key must stay hidden before answering")

	snap, err = s.Select(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, StateAnswered, snap.State)
	require.NotNil(t, snap.Correct)
	assert.True(t, *snap.Correct)
	assert.Equal(t, 2, *snap.CorrectIndex)
	assert.Equal(t, "Porque sim. Mais detalhes.", snap.Explanation)

	assert.Equal(t, 1, profiles.profile.QuestionsAnswered)
	assert.Equal(t, 1, profiles.profile.CorrectAnswers)
	assert.Equal(t, 1, profiles.profile.Streak)
}

func TestSelectTwiceScoresOnce(t *testing.T) {
	profiles := &fakeProfiles{profile: models.DefaultProfile()}
	s := New(&fakeSource{}, profiles, logger.Discard())
	_, err := s.Next(context.Background(), baseReq)
	require.NoError(t, err)

	_, err = s.Select(context.Background(), 0)
	require.NoError(t, err)
	snap, err := s.Select(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 1, profiles.calls)
	assert.Equal(t, 1, profiles.profile.QuestionsAnswered)
	assert.Equal(t, 0, profiles.profile.CorrectAnswers)
	assert.Equal(t, 0, *snap.Selected, "first selection stands")
}

func TestConcurrentSelectScoresOnce(t *testing.T) {
	profiles := &fakeProfiles{profile: models.DefaultProfile()}
	s := New(&fakeSource{}, profiles, logger.Discard())
	_, err := s.Next(context.Background(), baseReq)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Select(context.Background(), i%5)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, profiles.calls)
}

func TestSelectBeforeReady(t *testing.T) {
	s := New(&fakeSource{}, &fakeProfiles{}, logger.Discard())
	_, err := s.Select(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestSelectInvalidIndex(t *testing.T) {
	profiles := &fakeProfiles{profile: models.DefaultProfile()}
	s := New(&fakeSource{}, profiles, logger.Discard())
	_, err := s.Next(context.Background(), baseReq)
	require.NoError(t, err)

	_, err = s.Select(context.Background(), 7)
	assert.ErrorIs(t, err, ErrInvalidChoice)
	assert.Equal(t, 0, profiles.calls)
	assert.Equal(t, StateReady, s.Snapshot().State)
}

func TestPersistFailureKeepsQuestionOpen(t *testing.T) {
	profiles := &fakeProfiles{profile: models.DefaultProfile(), err: errors.New("disk full")}
	s := New(&fakeSource{}, profiles, logger.Discard())
	_, err := s.Next(context.Background(), baseReq)
	require.NoError(t, err)

	snap, err := s.Select(context.Background(), 2)
	require.Error(t, err)
	assert.Equal(t, StateReady, snap.State)
	assert.Nil(t, snap.CorrectIndex, "answer must not be revealed unscored")
}

func TestFetchFailureOffersRetry(t *testing.T) {
	src := &fakeSource{err: errors.New("timeout")}
	s := New(src, &fakeProfiles{}, logger.Discard())

	snap, err := s.Next(context.Background(), baseReq)
	require.Error(t, err)
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, "timeout", snap.Error)

	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()
	snap, err = s.Next(context.Background(), baseReq)
	require.NoError(t, err)
	assert.Equal(t, StateReady, snap.State)
}

func TestNextPassesLastTypeAsAvoid(t *testing.T) {
	src := &fakeSource{types: []models.QuestionType{models.TypeClinical, models.TypeTheoretical}}
	s := New(src, &fakeProfiles{profile: models.DefaultProfile()}, logger.Discard())

	for i := 0; i < 3; i++ {
		_, err := s.Next(context.Background(), baseReq)
		require.NoError(t, err)
	}
	require.Len(t, src.requests, 3)
	assert.Nil(t, src.requests[0].AvoidType)
	require.NotNil(t, src.requests[1].AvoidType)
	assert.Equal(t, models.TypeClinical, *src.requests[1].AvoidType)
	require.NotNil(t, src.requests[2].AvoidType)
	assert.Equal(t, models.TypeTheoretical, *src.requests[2].AvoidType)
}

func TestLateResponseAfterCloseIsDropped(t *testing.T) {
	src := &fakeSource{gate: make(chan struct{})}
	s := New(src, &fakeProfiles{}, logger.Discard())

	done := make(chan error, 1)
	go func() {
		_, err := s.Next(context.Background(), baseReq)
		done <- err
	}()

	require.Eventually(t, func() bool { return s.Snapshot().State == StateLoading }, timeout, tick)
	assert.NotEmpty(t, s.Snapshot().Phrase)
	s.Close()

	assert.ErrorIs(t, <-done, ErrStale)
	assert.Equal(t, StateIdle, s.Snapshot().State)
	assert.Nil(t, s.Snapshot().Question)

	_, err := s.Next(context.Background(), baseReq)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNewerNextSupersedesOlder(t *testing.T) {
	src := &fakeSource{gate: make(chan struct{})}
	s := New(src, &fakeProfiles{}, logger.Discard())

	first := make(chan error, 1)
	go func() {
		_, err := s.Next(context.Background(), baseReq)
		first <- err
	}()
	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.requests) == 1
	}, timeout, tick)

	second := make(chan error, 1)
	go func() {
		_, err := s.Next(context.Background(), baseReq)
		second <- err
	}()

	assert.ErrorIs(t, <-first, ErrStale)
	close(src.gate)
	require.NoError(t, <-second)
	assert.Equal(t, StateReady, s.Snapshot().State)
}
