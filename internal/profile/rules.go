package profile

import (
	"errors"
	"strings"
	"time"

	"github.com/enfq/app/internal/models"
)

// SubscriptionPeriod is how long one approved payment keeps premium active.
const SubscriptionPeriod = 30 * 24 * time.Hour

var ErrInvalidArea = errors.New("invalid residency area")

// RecordAnswer applies one scored practice answer. The streak resets on a
// wrong answer; the best streak only ever grows.
func RecordAnswer(p *models.Profile, correct bool) {
	p.QuestionsAnswered++
	if correct {
		p.CorrectAnswers++
		p.Streak++
	} else {
		p.Streak = 0
	}
	if p.Streak > p.MaxStreak {
		p.MaxStreak = p.Streak
	}
}

// RecordExam adds a finished exam to the totals. Every question in the exam
// counts as answered; the streak is left alone.
func RecordExam(p *models.Profile, total, correct int) bool {
	if total <= 0 {
		return false
	}
	p.QuestionsAnswered += total
	p.CorrectAnswers += correct
	return true
}

// ActivatePremium binds the subscription to exactly the paying device.
// The lock flag is not touched: a locked account stays locked.
func ActivatePremium(p *models.Profile, fingerprint string, now time.Time) {
	expiry := now.Add(SubscriptionPeriod).UTC()
	p.IsPremium = true
	p.SubscriptionExpiry = &expiry
	p.DeviceIDs = []string{fingerprint}
}

// ApplyOnboarding copies the non-nil fields of req. A residency area is kept
// only while the objective is RESIDENCY.
func ApplyOnboarding(p *models.Profile, req models.OnboardingRequest) (bool, error) {
	before := p.Clone()

	if name := strings.TrimSpace(req.Name); name != "" {
		p.Name = name
	}
	if req.Objective != nil {
		o := *req.Objective
		p.Objective = &o
	}
	if req.ResidencyArea != nil {
		if !req.ResidencyArea.Valid() {
			return false, ErrInvalidArea
		}
		a := *req.ResidencyArea
		p.ResidencyArea = &a
	}
	if p.Objective == nil || *p.Objective != models.ObjectiveResidency {
		p.ResidencyArea = nil
	}
	if req.ExperienceLevel != nil {
		p.ExperienceLevel = *req.ExperienceLevel
	}
	if req.StudyTime != nil {
		p.StudyTime = *req.StudyTime
	}
	if req.DailyCommitment != nil {
		p.DailyCommitment = *req.DailyCommitment
	}
	if req.MainPainPoint != nil {
		p.MainPainPoint = *req.MainPainPoint
	}
	return !equal(before, *p), nil
}

func equal(a, b models.Profile) bool {
	if a.Name != b.Name || a.ExperienceLevel != b.ExperienceLevel || a.StudyTime != b.StudyTime ||
		a.DailyCommitment != b.DailyCommitment || a.MainPainPoint != b.MainPainPoint {
		return false
	}
	if (a.Objective == nil) != (b.Objective == nil) || (a.Objective != nil && *a.Objective != *b.Objective) {
		return false
	}
	if (a.ResidencyArea == nil) != (b.ResidencyArea == nil) || (a.ResidencyArea != nil && *a.ResidencyArea != *b.ResidencyArea) {
		return false
	}
	return true
}
