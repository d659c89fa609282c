package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/enfq/app/internal/app"
	"github.com/enfq/app/internal/exam"
	"github.com/enfq/app/internal/models"
)

const progressPoll = 300 * time.Millisecond

func practiceCmd(flags *rootFlags) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Answer questions one at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags, nil, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.practice(cmd.Context(), count)
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "Stop after this many questions (0 asks after each one)")
	return cmd
}

func (s *session) practice(ctx context.Context, count int) error {
	for n := 1; count == 0 || n <= count; n++ {
		s.printf("Gerando questão %d...\n", n)
		snap, err := s.rt.App.PracticeNext(ctx, s.fp)
		if err != nil {
			var denied *app.DeniedError
			if errors.As(err, &denied) || ctx.Err() != nil {
				return s.explain(err)
			}
			s.printf("Não foi possível gerar a questão: %v\n", err)
			if line, ok := s.ask("Tentar novamente? (s/n) "); !ok || !yes(line) {
				return nil
			}
			n--
			continue
		}

		q := *snap.Question
		printQuestion(s.out, q, nil)
		var idx int
		for {
			line, ok := s.ask(fmt.Sprintf("Resposta (%s, q para sair): ", choiceHint(q)))
			if !ok || strings.EqualFold(strings.TrimSpace(line), "q") {
				return nil
			}
			var valid bool
			if idx, valid = parseChoice(line, len(q.Alternatives), q.IsTrueFalse); valid {
				break
			}
		}

		snap, err = s.rt.App.PracticeAnswer(ctx, idx)
		if err != nil {
			return err
		}
		if *snap.Correct {
			s.printf("Correta!\n")
		} else {
			s.printf("Incorreta. Resposta certa: %s) %s\n", letter(*snap.CorrectIndex), q.Alternatives[*snap.CorrectIndex])
		}
		s.printf("%s\n", snap.Explanation)
		if snap.CoachTip != "" {
			s.printf("Dica da coach: %s\n", snap.CoachTip)
		}

		if count == 0 {
			if line, ok := s.ask("\nPróxima questão? (s/n) "); !ok || !yes(line) {
				return nil
			}
		}
	}
	return nil
}

func yes(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "s", "sim", "y", "yes":
		return true
	}
	return false
}

func examCmd(flags *rootFlags) *cobra.Command {
	var cfg models.ExamConfig
	cmd := &cobra.Command{
		Use:   "exam",
		Short: "Take a timed mock exam",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags, nil, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.exam(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVar(&cfg.Questions, "questions", 0, "Number of questions: 5, 10, 20 or 50 (default depends on plan)")
	cmd.Flags().IntVar(&cfg.Minutes, "minutes", 0, "Time limit in minutes: 10, 30, 60 or 120 (default depends on plan)")
	return cmd
}

func (s *session) exam(ctx context.Context, cfg models.ExamConfig) error {
	opts, err := s.rt.App.ExamOptions(ctx, s.fp)
	if err != nil {
		return s.explain(err)
	}
	if cfg.Questions == 0 {
		cfg.Questions = opts.Default.Questions
	}
	if cfg.Minutes == 0 {
		cfg.Minutes = opts.Default.Minutes
	}

	if _, err := s.rt.App.StartExam(ctx, s.fp, cfg); err != nil {
		return s.explain(err)
	}
	defer s.rt.App.AbandonExam()

	if err := s.waitForQuestions(ctx); err != nil {
		return err
	}
	done, err := s.rt.App.ExamDone()
	if err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		for s.in.Scan() {
			lines <- s.in.Text()
		}
	}()

	for {
		view, err := s.rt.App.Exam()
		if err != nil {
			return err
		}
		if view.Result != nil {
			printResult(s.out, *view.Result)
			return nil
		}
		if view.Exam.State != models.ExamRunning {
			return fmt.Errorf("exam ended: %s", view.Exam.Error)
		}
		s.renderExam(view.Exam)

		select {
		case <-ctx.Done():
			return nil
		case <-done:
			continue
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := s.examCommand(line, *view.Exam.Question); quit {
				s.printf("Simulado abandonado.\n")
				return nil
			}
		}
	}
}

func (s *session) waitForQuestions(ctx context.Context) error {
	ticker := time.NewTicker(progressPoll)
	defer ticker.Stop()
	lastPhrase := ""
	for {
		view, err := s.rt.App.Exam()
		if err != nil {
			return err
		}
		switch view.Exam.State {
		case models.ExamRunning:
			return nil
		case models.ExamAborted:
			return fmt.Errorf("não foi possível montar o simulado: %s", view.Exam.Error)
		}
		if view.Exam.Phrase != lastPhrase {
			lastPhrase = view.Exam.Phrase
			s.printf("[%d/%d] %s\n", view.Exam.Progress, view.Exam.Total, lastPhrase)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *session) renderExam(snap exam.Snapshot) {
	s.printf("\n── Questão %d de %d ── tempo restante %s ── respondidas %d\n",
		snap.Cursor+1, snap.Total, snap.Clock, len(snap.Answered))
	printQuestion(s.out, *snap.Question, snap.Selected)
	s.printf("%s responde, n próxima, p anterior, g N vai para N, f finaliza, q abandona: ", choiceHint(*snap.Question))
}

// examCommand applies one line of input and reports whether the learner quit.
func (s *session) examCommand(line string, q models.PublicQuestion) bool {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false
	}
	var err error
	switch fields[0] {
	case "q":
		return true
	case "n":
		_, err = s.rt.App.ExamNext()
	case "p":
		_, err = s.rt.App.ExamPrev()
	case "f":
		_, err = s.rt.App.FinishExam()
	case "g":
		if len(fields) < 2 {
			s.printf("Informe o número da questão.\n")
			return false
		}
		n, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			s.printf("Número inválido.\n")
			return false
		}
		_, err = s.rt.App.ExamJump(n - 1)
	default:
		idx, ok := parseChoice(fields[0], len(q.Alternatives), q.IsTrueFalse)
		if !ok {
			s.printf("Opção inválida.\n")
			return false
		}
		_, err = s.rt.App.ExamAnswer(idx)
	}

	switch {
	case errors.Is(err, exam.ErrAtLastQuestion):
		s.printf("Esta é a última questão. Use f para finalizar.\n")
	case errors.Is(err, exam.ErrAtFirstQuestion):
		s.printf("Esta é a primeira questão.\n")
	case errors.Is(err, exam.ErrInvalidPosition):
		s.printf("Questão inexistente.\n")
	case err != nil && !errors.Is(err, exam.ErrNotRunning):
		s.printf("Erro: %v\n", err)
	}
	return false
}
