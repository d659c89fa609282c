package models

// ExamConfig is what the learner confirms on the exam setup screen.
type ExamConfig struct {
	Questions int `json:"questions" validate:"required,gt=0,lte=100"`
	Minutes   int `json:"minutes" validate:"required,gt=0,lte=240"`
}

func (c ExamConfig) LimitSeconds() int {
	return c.Minutes * 60
}

type ExamState string

const (
	ExamPrefetching ExamState = "prefetching"
	ExamRunning     ExamState = "running"
	ExamFinalizing  ExamState = "finalizing"
	ExamDone        ExamState = "done"
	ExamAborted     ExamState = "aborted"
)

// ExamReport is the scored outcome handed off when an exam ends.
type ExamReport struct {
	SessionID      string     `json:"session_id"`
	Total          int        `json:"total"`
	Correct        int        `json:"correct"`
	Wrong          int        `json:"wrong"`
	Unanswered     int        `json:"unanswered"`
	ElapsedSeconds int        `json:"elapsed_seconds"`
	AverageSeconds float64    `json:"average_seconds"`
	TimedOut       bool       `json:"timed_out"`
	ScorePercent   int        `json:"score_percent"`
	Sufficient     bool       `json:"sufficient"`
	WrongQuestions []Question `json:"wrong_questions"`
}

// ReviewItem is one wrong answer surfaced on the results screen.
type ReviewItem struct {
	Case     string `json:"case"`
	Correct  string `json:"correct"`
	QuickTip string `json:"quick_tip"`
}

// ExamResult is the report as shown to the learner, with review gated by tier.
type ExamResult struct {
	Report         ExamReport   `json:"report"`
	Elapsed        string       `json:"elapsed"`
	Average        string       `json:"average"`
	Review         []ReviewItem `json:"review"`
	ReviewLocked   bool         `json:"review_locked"`
	UpgradeOffered bool         `json:"upgrade_offered"`
}
