package exam

import (
	"fmt"
	"math"

	"github.com/enfq/app/internal/models"
)

// SufficientScore is the percentage from which a result counts as passing.
const SufficientScore = 50

// ReviewLimit caps how many wrong answers the results screen walks through.
const ReviewLimit = 3

func buildReport(id string, questions []models.Question, answers map[int]int, limit, remaining int, timedOut bool) models.ExamReport {
	r := models.ExamReport{
		SessionID:      id,
		Total:          len(questions),
		TimedOut:       timedOut,
		WrongQuestions: []models.Question{},
	}
	for i, q := range questions {
		choice, ok := answers[i]
		switch {
		case !ok:
			r.Unanswered++
		case q.IsCorrect(choice):
			r.Correct++
		default:
			r.Wrong++
			r.WrongQuestions = append(r.WrongQuestions, q)
		}
	}

	if timedOut {
		r.ElapsedSeconds = limit
	} else {
		r.ElapsedSeconds = limit - remaining
	}
	answered := r.Correct + r.Wrong
	r.AverageSeconds = float64(r.ElapsedSeconds) / float64(max(1, answered))

	if r.Total > 0 {
		r.ScorePercent = int(math.Round(float64(r.Correct) * 100 / float64(r.Total)))
	}
	r.Sufficient = r.ScorePercent >= SufficientScore
	return r
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Result prepares a report for display. Without the analysis feature the
// wrong-answer review is withheld and an upgrade is offered instead.
func Result(r models.ExamReport, analysis bool) models.ExamResult {
	res := models.ExamResult{
		Report:  r,
		Elapsed: FormatClock(r.ElapsedSeconds),
		Average: fmt.Sprintf("%.1f", r.AverageSeconds),
		Review:  []models.ReviewItem{},
	}
	if !analysis {
		res.Report.WrongQuestions = []models.Question{}
		res.ReviewLocked = true
		res.UpgradeOffered = true
		return res
	}
	for i, q := range r.WrongQuestions {
		if i == ReviewLimit {
			break
		}
		res.Review = append(res.Review, models.ReviewItem{
			Case:     q.Case,
			Correct:  q.Alternatives[q.CorrectIndex],
			QuickTip: q.QuickTip(),
		})
	}
	return res
}
