// Package access decides what a profile may use on a given device.
//
// Evaluate is pure: it never reads the clock or the device itself, and it
// returns the profile it would persist instead of writing it.
package access

import (
	"errors"
	"time"

	"github.com/enfq/app/internal/models"
)

var (
	ErrLocked        = errors.New("account locked: subscription bound to other devices")
	ErrFeatureLocked = errors.New("feature requires an active subscription")
	ErrUnknownOption = errors.New("unsupported exam option")
)

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
	TierLocked  Tier = "locked"
)

// Limits are the feature bounds that follow from a tier. Zero SummaryPreview
// means summaries are returned in full.
type Limits struct {
	MaxQuestions   int  `json:"max_questions"`
	MaxMinutes     int  `json:"max_minutes"`
	Analysis       bool `json:"analysis"`
	SummaryPreview int  `json:"summary_preview"`
}

var (
	FreeLimits = Limits{MaxQuestions: 5, MaxMinutes: 10, Analysis: false, SummaryPreview: 400}
	PaidLimits = Limits{MaxQuestions: 50, MaxMinutes: 120, Analysis: true}
)

type Decision struct {
	Tier   Tier   `json:"tier"`
	Limits Limits `json:"limits"`
	// Reason is set for free decisions on a premium profile and for locks.
	Reason string `json:"reason,omitempty"`
}

func (d Decision) Locked() bool  { return d.Tier == TierLocked }
func (d Decision) Premium() bool { return d.Tier == TierPremium }

func free(reason string) Decision {
	return Decision{Tier: TierFree, Limits: FreeLimits, Reason: reason}
}

func premium() Decision {
	return Decision{Tier: TierPremium, Limits: PaidLimits}
}

func locked() Decision {
	return Decision{Tier: TierLocked, Limits: Limits{}, Reason: "device limit exceeded"}
}

// Evaluate applies the device binding policy for fingerprint fp. It returns
// the decision, the profile after any binding side effect and whether that
// profile differs from p and must be persisted.
//
// Order matters: a non-premium profile is never locked; a lock beats any
// device match; a lapsed subscription degrades to free without touching the
// device list; an unknown device takes a free slot or locks the account.
func Evaluate(p models.Profile, fp string, now time.Time) (Decision, models.Profile, bool) {
	if !p.IsPremium {
		return free(""), p, false
	}
	if p.IsLocked {
		return locked(), p, false
	}
	if p.SubscriptionExpired(now) {
		return free("subscription expired"), p, false
	}
	if p.HasDevice(fp) {
		return premium(), p, false
	}

	next := p.Clone()
	if len(next.DeviceIDs) < models.MaxDevices {
		next.DeviceIDs = append(next.DeviceIDs, fp)
		return premium(), next, true
	}
	next.IsLocked = true
	return locked(), next, true
}
