// Package profile keeps the single learner record and the rules that change it.
package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/enfq/app/internal/models"
)

// UpdateFunc mutates p in place and reports whether anything changed.
// Returning an error discards the mutation.
type UpdateFunc func(p *models.Profile) (bool, error)

// Store holds the profile in memory and rewrites the whole row after every
// mutation. Updates are serialized so each one is applied to the latest
// value, never to a stale copy.
type Store struct {
	db     *sql.DB
	name   string
	logger *slog.Logger

	mu      sync.Mutex
	current models.Profile
}

// Open reads the named record, creating it with defaults when absent.
func Open(ctx context.Context, db *sql.DB, name string, logger *slog.Logger) (*Store, error) {
	s := &Store{db: db, name: name, logger: logger.With("component", "profile")}

	p, err := s.load(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		p = models.DefaultProfile()
		if err := s.save(ctx, p); err != nil {
			return nil, err
		}
		s.logger.Info("created profile", "name", name)
	case err != nil:
		return nil, err
	}
	s.current = p
	return s, nil
}

// Snapshot returns a copy of the current profile.
func (s *Store) Snapshot() models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Update applies fn to the latest profile and persists the result when fn
// reports a change. The in-memory value only advances once the write
// succeeds.
func (s *Store) Update(ctx context.Context, fn UpdateFunc) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Clone()
	changed, err := fn(&next)
	if err != nil {
		return s.current.Clone(), err
	}
	if !changed {
		return s.current.Clone(), nil
	}
	if err := s.save(ctx, next); err != nil {
		s.logger.Error("persist profile", "error", err)
		return s.current.Clone(), err
	}
	s.current = next
	return next.Clone(), nil
}

// ── Persistence ─────────────────────────────────────────

func (s *Store) load(ctx context.Context) (models.Profile, error) {
	var (
		p         models.Profile
		objective sql.NullString
		area      sql.NullString
		expiry    sql.NullInt64
		devices   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT display_name, objective, residency_area, experience_level, study_time,
		        daily_commitment, main_pain_point, is_premium, subscription_expiry,
		        questions_answered, correct_answers, streak, max_streak, device_ids, is_locked
		 FROM profiles WHERE name = $1`,
		s.name,
	).Scan(&p.Name, &objective, &area, &p.ExperienceLevel, &p.StudyTime,
		&p.DailyCommitment, &p.MainPainPoint, &p.IsPremium, &expiry,
		&p.QuestionsAnswered, &p.CorrectAnswers, &p.Streak, &p.MaxStreak, &devices, &p.IsLocked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("load profile: %w", err)
	}

	if objective.Valid {
		o := models.StudyObjective(objective.String)
		p.Objective = &o
	}
	if area.Valid {
		a := models.ResidencyArea(area.String)
		p.ResidencyArea = &a
	}
	if expiry.Valid {
		t := time.UnixMilli(expiry.Int64).UTC()
		p.SubscriptionExpiry = &t
	}
	if err := json.Unmarshal([]byte(devices), &p.DeviceIDs); err != nil {
		return p, fmt.Errorf("decode device ids: %w", err)
	}
	if p.DeviceIDs == nil {
		p.DeviceIDs = []string{}
	}
	return p, nil
}

func (s *Store) save(ctx context.Context, p models.Profile) error {
	devices, err := json.Marshal(p.DeviceIDs)
	if err != nil {
		return fmt.Errorf("encode device ids: %w", err)
	}

	var objective, area sql.NullString
	if p.Objective != nil {
		objective = sql.NullString{String: string(*p.Objective), Valid: true}
	}
	if p.ResidencyArea != nil {
		area = sql.NullString{String: string(*p.ResidencyArea), Valid: true}
	}
	var expiry sql.NullInt64
	if p.SubscriptionExpiry != nil {
		expiry = sql.NullInt64{Int64: p.SubscriptionExpiry.UnixMilli(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (name, display_name, objective, residency_area, experience_level,
		        study_time, daily_commitment, main_pain_point, is_premium, subscription_expiry,
		        questions_answered, correct_answers, streak, max_streak, device_ids, is_locked, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 ON CONFLICT (name) DO UPDATE SET
		        display_name = excluded.display_name,
		        objective = excluded.objective,
		        residency_area = excluded.residency_area,
		        experience_level = excluded.experience_level,
		        study_time = excluded.study_time,
		        daily_commitment = excluded.daily_commitment,
		        main_pain_point = excluded.main_pain_point,
		        is_premium = excluded.is_premium,
		        subscription_expiry = excluded.subscription_expiry,
		        questions_answered = excluded.questions_answered,
		        correct_answers = excluded.correct_answers,
		        streak = excluded.streak,
		        max_streak = excluded.max_streak,
		        device_ids = excluded.device_ids,
		        is_locked = excluded.is_locked,
		        updated_at = excluded.updated_at`,
		s.name, p.Name, objective, area, p.ExperienceLevel,
		p.StudyTime, p.DailyCommitment, p.MainPainPoint, p.IsPremium, expiry,
		p.QuestionsAnswered, p.CorrectAnswers, p.Streak, p.MaxStreak, string(devices), p.IsLocked,
		time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
