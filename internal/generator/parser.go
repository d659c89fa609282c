package generator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GeneratedQuestion is the JSON shape a model returns for one question.
type GeneratedQuestion struct {
	Case         string   `json:"case"`
	Alternatives []string `json:"alternatives"`
	CorrectIndex *int     `json:"correct_index"`
	Explanation  string   `json:"explanation"`
	CoachTip     string   `json:"coach_tip"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParseQuestion decodes a model response and checks it carries exactly
// wantAlternatives alternatives and an in-range answer key.
func ParseQuestion(responseBody string, wantAlternatives int) (*GeneratedQuestion, error) {
	cleaned := stripCodeFences(responseBody)

	var q GeneratedQuestion
	if err := json.Unmarshal([]byte(cleaned), &q); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	for i := range q.Alternatives {
		q.Alternatives[i] = strings.TrimSpace(q.Alternatives[i])
	}
	q.Case = strings.TrimSpace(q.Case)
	q.Explanation = strings.TrimSpace(q.Explanation)
	q.CoachTip = strings.TrimSpace(q.CoachTip)

	if err := validateQuestion(&q, wantAlternatives); err != nil {
		return nil, err
	}
	return &q, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func validateQuestion(q *GeneratedQuestion, wantAlternatives int) error {
	var errs []string

	if q.Case == "" {
		errs = append(errs, "empty case")
	}
	if len(q.Alternatives) != wantAlternatives {
		errs = append(errs, fmt.Sprintf("expected %d alternatives, got %d", wantAlternatives, len(q.Alternatives)))
	}
	for i, alt := range q.Alternatives {
		if alt == "" {
			errs = append(errs, fmt.Sprintf("alternative %d is empty", i+1))
		}
	}
	switch {
	case q.CorrectIndex == nil:
		errs = append(errs, "missing correct_index")
	case *q.CorrectIndex < 0 || *q.CorrectIndex >= len(q.Alternatives):
		errs = append(errs, fmt.Sprintf("correct_index %d out of range [0, %d)", *q.CorrectIndex, len(q.Alternatives)))
	}
	if q.Explanation == "" {
		errs = append(errs, "empty explanation")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// CleanSummary removes bold markers a model may emit despite instructions.
func CleanSummary(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "**", ""))
}
