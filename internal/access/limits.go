package access

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/enfq/app/internal/models"
)

var (
	QuestionCounts = []int{5, 10, 20, 50}
	TimeLimits     = []int{10, 30, 60, 120}
)

type Option struct {
	Value   int  `json:"value"`
	Enabled bool `json:"enabled"`
}

// ExamOptions is the exam setup menu for a decision.
type ExamOptions struct {
	Questions []Option          `json:"questions"`
	Minutes   []Option          `json:"minutes"`
	Default   models.ExamConfig `json:"default"`
}

func Options(d Decision) ExamOptions {
	opts := ExamOptions{
		Questions: menu(QuestionCounts, d.Limits.MaxQuestions),
		Minutes:   menu(TimeLimits, d.Limits.MaxMinutes),
	}
	if d.Premium() {
		opts.Default = models.ExamConfig{Questions: 10, Minutes: 30}
	} else {
		opts.Default = models.ExamConfig{Questions: FreeLimits.MaxQuestions, Minutes: FreeLimits.MaxMinutes}
	}
	return opts
}

func menu(values []int, max int) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v, Enabled: v <= max}
	}
	return out
}

// AllowsExam checks an exam configuration against the menu and the tier.
func AllowsExam(d Decision, cfg models.ExamConfig) error {
	if d.Locked() {
		return ErrLocked
	}
	if !contains(QuestionCounts, cfg.Questions) {
		return fmt.Errorf("%w: %d questions", ErrUnknownOption, cfg.Questions)
	}
	if !contains(TimeLimits, cfg.Minutes) {
		return fmt.Errorf("%w: %d minutes", ErrUnknownOption, cfg.Minutes)
	}
	if cfg.Questions > d.Limits.MaxQuestions || cfg.Minutes > d.Limits.MaxMinutes {
		return fmt.Errorf("%w: %d questions in %d minutes", ErrFeatureLocked, cfg.Questions, cfg.Minutes)
	}
	return nil
}

// AllowsStudy reports ErrLocked when nothing but support contact is available.
func AllowsStudy(d Decision) error {
	if d.Locked() {
		return ErrLocked
	}
	return nil
}

// TruncateSummary cuts a summary to the tier's preview length. The second
// return value reports whether anything was removed.
func TruncateSummary(d Decision, text string) (string, bool) {
	n := d.Limits.SummaryPreview
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text, false
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:n]), " ") + "...", true
}

func contains(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
