package models

// ── API Request/Response Types ────────────────────────────

type OnboardingRequest struct {
	Name            string          `json:"name" validate:"max=80"`
	Objective       *StudyObjective `json:"objective" validate:"omitempty,oneof=CONTEST RESIDENCY GRADUATION"`
	ResidencyArea   *ResidencyArea  `json:"residency_area"`
	ExperienceLevel *string         `json:"experience_level" validate:"omitempty,max=80"`
	StudyTime       *string         `json:"study_time" validate:"omitempty,max=80"`
	DailyCommitment *string         `json:"daily_commitment" validate:"omitempty,max=80"`
	MainPainPoint   *string         `json:"main_pain_point" validate:"omitempty,max=200"`
}

type SettingsRequest struct {
	Board      *ExamBoard  `json:"board" validate:"omitempty,oneof=ENARE FGV VUNESP FCC IBFC CEBRASPE"`
	Difficulty *Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard killer"`
}

type DeviceRequest struct {
	UserAgent    string `json:"user_agent" validate:"max=512"`
	ScreenWidth  int    `json:"screen_width" validate:"gte=0"`
	ScreenHeight int    `json:"screen_height" validate:"gte=0"`
}

type DeviceResponse struct {
	Token       string `json:"token"`
	Fingerprint string `json:"fingerprint"`
}

type AnswerRequest struct {
	Index int `json:"index" validate:"gte=0"`
}

type JumpRequest struct {
	Position int `json:"position" validate:"gte=0"`
}

type SummaryRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
}

type SummaryResponse struct {
	Subject   string `json:"subject"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
