package generator

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	minCaseRunes = 40
	maxCaseRunes = 1500
)

// Inspect returns non-fatal quality warnings for a parsed question. None of
// them reject the question; they are logged so prompt drift is visible.
func Inspect(q *GeneratedQuestion) []string {
	var warnings []string

	if n := utf8.RuneCountInString(q.Case); n < minCaseRunes || n > maxCaseRunes {
		warnings = append(warnings, fmt.Sprintf("case length %d outside range [%d, %d]", n, minCaseRunes, maxCaseRunes))
	}

	seen := make(map[string]int, len(q.Alternatives))
	for i, alt := range q.Alternatives {
		key := strings.ToLower(alt)
		if j, ok := seen[key]; ok {
			warnings = append(warnings, fmt.Sprintf("alternatives %d and %d are identical", j+1, i+1))
			continue
		}
		seen[key] = i
	}

	if q.CoachTip == "" {
		warnings = append(warnings, "missing coach_tip")
	}
	if len(q.Alternatives) > 2 && q.CorrectIndex != nil {
		if strings.Contains(strings.ToLower(q.Alternatives[*q.CorrectIndex]), "todas as alternativas") {
			warnings = append(warnings, "answer key is an all-of-the-above alternative")
		}
	}
	return warnings
}
