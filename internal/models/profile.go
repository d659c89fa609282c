package models

import "time"

type StudyObjective string

const (
	ObjectiveContest    StudyObjective = "CONTEST"
	ObjectiveResidency  StudyObjective = "RESIDENCY"
	ObjectiveGraduation StudyObjective = "GRADUATION"
)

var ValidObjectives = map[StudyObjective]bool{
	ObjectiveContest:    true,
	ObjectiveResidency:  true,
	ObjectiveGraduation: true,
}

type ResidencyArea string

const (
	AreaObstetrics     ResidencyArea = "obstetrics"
	AreaICU            ResidencyArea = "icu"
	AreaEmergency      ResidencyArea = "emergency"
	AreaCardiology     ResidencyArea = "cardiology"
	AreaOncology       ResidencyArea = "oncology"
	AreaFamilyHealth   ResidencyArea = "family_health"
	AreaPediatrics     ResidencyArea = "pediatrics"
	AreaSurgicalCenter ResidencyArea = "surgical_center"
)

var areaLabels = map[ResidencyArea]string{
	AreaObstetrics:     "Obstetrícia",
	AreaICU:            "UTI Adulto/Pediátrica",
	AreaEmergency:      "Urgência e Emergência",
	AreaCardiology:     "Cardiologia",
	AreaOncology:       "Oncologia",
	AreaFamilyHealth:   "Saúde da Família",
	AreaPediatrics:     "Pediatria e Neonatologia",
	AreaSurgicalCenter: "Centro Cirúrgico/CME",
}

// AllAreas lists the specialties in display order.
var AllAreas = []ResidencyArea{
	AreaObstetrics, AreaICU, AreaEmergency, AreaCardiology,
	AreaOncology, AreaFamilyHealth, AreaPediatrics, AreaSurgicalCenter,
}

func (a ResidencyArea) Valid() bool {
	_, ok := areaLabels[a]
	return ok
}

func (a ResidencyArea) Label() string {
	if l, ok := areaLabels[a]; ok {
		return l
	}
	return string(a)
}

// Experience levels offered during onboarding.
var ExperienceLevels = []string{"Já estudo", "Vou começar", "Falta motivação"}

// MaxDevices is the number of devices a subscription may be bound to.
const MaxDevices = 2

// Profile is the single learner record kept per installation.
type Profile struct {
	Name            string          `json:"name"`
	Objective       *StudyObjective `json:"objective"`
	ResidencyArea   *ResidencyArea  `json:"residency_area"`
	ExperienceLevel string          `json:"experience_level"`
	StudyTime       string          `json:"study_time"`
	DailyCommitment string          `json:"daily_commitment"`
	MainPainPoint   string          `json:"main_pain_point"`

	IsPremium          bool       `json:"is_premium"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry"`

	QuestionsAnswered int `json:"questions_answered"`
	CorrectAnswers    int `json:"correct_answers"`
	Streak            int `json:"streak"`
	MaxStreak         int `json:"max_streak"`

	DeviceIDs []string `json:"device_ids"`
	IsLocked  bool     `json:"is_locked"`
}

// DefaultProfile is the record created on first launch.
func DefaultProfile() Profile {
	return Profile{DeviceIDs: []string{}}
}

// Clone returns a deep copy so callers never share slices or pointers.
func (p Profile) Clone() Profile {
	c := p
	c.DeviceIDs = append([]string{}, p.DeviceIDs...)
	if p.Objective != nil {
		o := *p.Objective
		c.Objective = &o
	}
	if p.ResidencyArea != nil {
		a := *p.ResidencyArea
		c.ResidencyArea = &a
	}
	if p.SubscriptionExpiry != nil {
		e := *p.SubscriptionExpiry
		c.SubscriptionExpiry = &e
	}
	return c
}

func (p Profile) HasDevice(id string) bool {
	for _, d := range p.DeviceIDs {
		if d == id {
			return true
		}
	}
	return false
}

// SubscriptionExpired reports whether a premium subscription has lapsed at now.
func (p Profile) SubscriptionExpired(now time.Time) bool {
	return p.SubscriptionExpiry != nil && !now.Before(*p.SubscriptionExpiry)
}

// ObjectiveLabel is the focus string handed to the question source.
func (p Profile) ObjectiveLabel() string {
	if p.Objective == nil {
		return "Geral"
	}
	return string(*p.Objective)
}

// Accuracy is the share of answered questions that were correct, 0 when none.
func (p Profile) Accuracy() float64 {
	if p.QuestionsAnswered == 0 {
		return 0
	}
	return float64(p.CorrectAnswers) / float64(p.QuestionsAnswered)
}
