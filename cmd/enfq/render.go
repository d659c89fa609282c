package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/enfq/app/internal/app"
	"github.com/enfq/app/internal/models"
)

func letter(i int) string {
	return string(rune('A' + i))
}

// parseChoice maps learner input to an alternative index. Statement items
// take C (certo) or E (errado); the rest take a letter or a 1-based number.
func parseChoice(input string, alternatives int, trueFalse bool) (int, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return 0, false
	}
	if trueFalse {
		switch in {
		case "c", "certo":
			return 0, true
		case "e", "errado":
			return 1, true
		}
		return 0, false
	}
	if n, err := strconv.Atoi(in); err == nil {
		return n - 1, n >= 1 && n <= alternatives
	}
	if len(in) == 1 && in[0] >= 'a' && int(in[0]-'a') < alternatives {
		return int(in[0] - 'a'), true
	}
	return 0, false
}

func choiceHint(q models.PublicQuestion) string {
	if q.IsTrueFalse {
		return "C/E"
	}
	return "A-" + letter(len(q.Alternatives)-1)
}

func printQuestion(w io.Writer, q models.PublicQuestion, selected *int) {
	fmt.Fprintf(w, "\n%s\n\n", q.Case)
	for i, alt := range q.Alternatives {
		mark := " "
		if selected != nil && *selected == i {
			mark = "*"
		}
		fmt.Fprintf(w, " %s %s) %s\n", mark, letter(i), alt)
	}
	fmt.Fprintln(w)
}

func displayName(p models.Profile) string {
	if p.Name == "" {
		return "Estudante"
	}
	return p.Name
}

func printStatus(w io.Writer, p models.Profile, st app.AccessStatus, settings app.Settings) {
	fmt.Fprintf(w, "%s\n", displayName(p))
	fmt.Fprintf(w, "  Objetivo:     %s", p.ObjectiveLabel())
	if p.ResidencyArea != nil {
		fmt.Fprintf(w, " (%s)", p.ResidencyArea.Label())
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Banca:        %s, dificuldade %s\n", settings.Board, settings.Difficulty.Label())
	fmt.Fprintf(w, "  Questões:     %d respondidas, %d corretas (%.0f%%)\n",
		p.QuestionsAnswered, p.CorrectAnswers, p.Accuracy()*100)
	fmt.Fprintf(w, "  Sequência:    %d (recorde %d)\n", p.Streak, p.MaxStreak)
	fmt.Fprintf(w, "  Plano:        %s\n", st.Tier)
	if p.SubscriptionExpiry != nil {
		fmt.Fprintf(w, "  Expira em:    %s\n", p.SubscriptionExpiry.Local().Format("02/01/2006"))
	}
	fmt.Fprintf(w, "  Dispositivos: %d de %d\n", len(p.DeviceIDs), models.MaxDevices)
	if st.Locked() {
		fmt.Fprintf(w, "  Conta bloqueada. Suporte: %s\n", st.SupportURL)
	}
}

func printResult(w io.Writer, res models.ExamResult) {
	r := res.Report
	fmt.Fprintln(w)
	if r.TimedOut {
		fmt.Fprintln(w, "Tempo esgotado!")
	}
	fmt.Fprintf(w, "Resultado: %d%%", r.ScorePercent)
	if r.Sufficient {
		fmt.Fprintln(w, " - desempenho suficiente")
	} else {
		fmt.Fprintln(w, " - continue praticando")
	}
	fmt.Fprintf(w, "  Acertos: %d  Erros: %d  Em branco: %d  Total: %d\n", r.Correct, r.Wrong, r.Unanswered, r.Total)
	fmt.Fprintf(w, "  Tempo: %s  Média por questão: %ss\n", res.Elapsed, res.Average)

	if res.ReviewLocked {
		fmt.Fprintln(w, "\nA revisão dos erros faz parte do plano Premium: enfq subscribe")
		return
	}
	for i, item := range res.Review {
		fmt.Fprintf(w, "\n%d. %s\n   Resposta: %s\n   Dica: %s\n", i+1, item.Case, item.Correct, item.QuickTip)
	}
}
