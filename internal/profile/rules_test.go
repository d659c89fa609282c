package profile

import (
	"testing"
	"time"

	"github.com/enfq/app/internal/models"
)

func TestRecordAnswerStreakLaw(t *testing.T) {
	tests := []struct {
		name          string
		outcomes      []bool
		wantAnswered  int
		wantCorrect   int
		wantStreak    int
		wantMaxStreak int
	}{
		{"all correct", []bool{true, true, true}, 3, 3, 3, 3},
		{"wrong resets streak", []bool{true, true, false}, 3, 2, 0, 2},
		{"recovers after miss", []bool{true, true, false, true}, 4, 3, 1, 2},
		{"new best streak", []bool{true, false, true, true, true}, 5, 4, 3, 3},
		{"all wrong", []bool{false, false}, 2, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.DefaultProfile()
			prevMax := 0
			for _, ok := range tt.outcomes {
				RecordAnswer(&p, ok)
				if !ok && p.Streak != 0 {
					t.Fatalf("streak = %d after wrong answer", p.Streak)
				}
				if p.MaxStreak < prevMax {
					t.Fatalf("max streak decreased from %d to %d", prevMax, p.MaxStreak)
				}
				prevMax = p.MaxStreak
			}
			if p.QuestionsAnswered != tt.wantAnswered || p.CorrectAnswers != tt.wantCorrect {
				t.Errorf("answered/correct = %d/%d, want %d/%d",
					p.QuestionsAnswered, p.CorrectAnswers, tt.wantAnswered, tt.wantCorrect)
			}
			if p.Streak != tt.wantStreak || p.MaxStreak != tt.wantMaxStreak {
				t.Errorf("streak/max = %d/%d, want %d/%d",
					p.Streak, p.MaxStreak, tt.wantStreak, tt.wantMaxStreak)
			}
		})
	}
}

func TestRecordExam(t *testing.T) {
	p := models.DefaultProfile()
	p.Streak = 4

	if !RecordExam(&p, 10, 6) {
		t.Fatal("expected change")
	}
	if p.QuestionsAnswered != 10 || p.CorrectAnswers != 6 {
		t.Errorf("answered/correct = %d/%d", p.QuestionsAnswered, p.CorrectAnswers)
	}
	if p.Streak != 4 {
		t.Errorf("exam should not touch the streak, got %d", p.Streak)
	}
	if RecordExam(&p, 0, 0) {
		t.Error("empty exam should not report a change")
	}
}

func TestActivatePremium(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	p := models.DefaultProfile()
	p.DeviceIDs = []string{"old-1", "old-2"}

	ActivatePremium(&p, "payer", now)

	if !p.IsPremium {
		t.Error("premium flag not set")
	}
	if len(p.DeviceIDs) != 1 || p.DeviceIDs[0] != "payer" {
		t.Errorf("devices = %v, want [payer]", p.DeviceIDs)
	}
	if p.SubscriptionExpiry == nil || !p.SubscriptionExpiry.Equal(now.Add(30*24*time.Hour)) {
		t.Errorf("expiry = %v", p.SubscriptionExpiry)
	}
	if p.IsLocked {
		t.Error("activation must not set the lock")
	}
}

func TestActivatePremiumKeepsLock(t *testing.T) {
	p := models.DefaultProfile()
	p.IsLocked = true
	ActivatePremium(&p, "payer", time.Now())
	if !p.IsLocked {
		t.Error("activation cleared the lock")
	}
}

func ptr[T any](v T) *T { return &v }

func TestApplyOnboarding(t *testing.T) {
	residency := models.ObjectiveResidency
	contest := models.ObjectiveContest
	icu := models.AreaICU

	tests := []struct {
		name        string
		start       func() models.Profile
		req         models.OnboardingRequest
		wantChanged bool
		wantArea    *models.ResidencyArea
		wantErr     bool
	}{
		{
			name:        "residency keeps area",
			start:       models.DefaultProfile,
			req:         models.OnboardingRequest{Name: "Ana", Objective: &residency, ResidencyArea: &icu},
			wantChanged: true,
			wantArea:    &icu,
		},
		{
			name: "switch to contest clears area",
			start: func() models.Profile {
				p := models.DefaultProfile()
				p.Objective = ptr(models.ObjectiveResidency)
				p.ResidencyArea = ptr(models.AreaICU)
				return p
			},
			req:         models.OnboardingRequest{Objective: &contest},
			wantChanged: true,
		},
		{
			name:        "area without residency is dropped",
			start:       models.DefaultProfile,
			req:         models.OnboardingRequest{Objective: &contest, ResidencyArea: &icu},
			wantChanged: true,
		},
		{
			name:    "invalid area",
			start:   models.DefaultProfile,
			req:     models.OnboardingRequest{ResidencyArea: ptr(models.ResidencyArea("dermatology"))},
			wantErr: true,
		},
		{
			name:  "nothing to change",
			start: models.DefaultProfile,
			req:   models.OnboardingRequest{},
		},
		{
			name:        "experience level",
			start:       models.DefaultProfile,
			req:         models.OnboardingRequest{ExperienceLevel: ptr("Vou começar")},
			wantChanged: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.start()
			changed, err := ApplyOnboarding(&p, tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
			switch {
			case tt.wantArea == nil && p.ResidencyArea != nil:
				t.Errorf("area = %v, want nil", *p.ResidencyArea)
			case tt.wantArea != nil && (p.ResidencyArea == nil || *p.ResidencyArea != *tt.wantArea):
				t.Errorf("area = %v, want %v", p.ResidencyArea, *tt.wantArea)
			}
		})
	}
}
