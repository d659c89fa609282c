package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/enfq/app/internal/models"
)

// AvoidBias is the probability of switching away from the question type the
// caller asked to avoid. The remainder keeps the sequence from becoming a
// strict alternation.
const AvoidBias = 0.8

// ChooseType picks the category for the next question given a uniform draw
// r in [0, 1).
func ChooseType(avoid *models.QuestionType, r float64) models.QuestionType {
	if avoid == nil {
		if r < 0.5 {
			return models.TypeTheoretical
		}
		return models.TypeClinical
	}
	if r < AvoidBias {
		return avoid.Opposite()
	}
	return *avoid
}

// Generator turns model output into questions and summaries.
type Generator struct {
	llm        LLMClient
	model      string
	logger     *slog.Logger
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Generator)

// WithRetries sets how many times a failed call is retried and the base
// delay of the exponential backoff.
func WithRetries(n int, base time.Duration) Option {
	return func(g *Generator) {
		g.maxRetries = n
		g.retryDelay = base
	}
}

// WithRequestTimeout bounds each model call. A call that times out is
// retried like any other failure.
func WithRequestTimeout(d time.Duration) Option {
	return func(g *Generator) { g.timeout = d }
}

// WithRand fixes the random source, for deterministic type selection.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

func New(llm LLMClient, model string, logger *slog.Logger, opts ...Option) *Generator {
	g := &Generator{
		llm:        llm,
		model:      model,
		logger:     logger.With("component", "generator", "model", model),
		maxRetries: 2,
		retryDelay: time.Second,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) ModelName() string {
	return g.model
}

func (g *Generator) generate(ctx context.Context, p Prompt) (*LLMResponse, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.llm.Generate(ctx, p)
}

func (g *Generator) draw() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

// Question requests one question. The returned type is the one asked of the
// model; the caller passes it back as AvoidType on the next request.
func (g *Generator) Question(ctx context.Context, req models.QuestionRequest) (models.Question, error) {
	qtype := ChooseType(req.AvoidType, g.draw())
	want := req.Board.Alternatives()
	prompt := Prompt{
		Kind:         KindQuestion,
		System:       QuestionSystemPrompt(),
		User:         BuildQuestionPrompt(req, qtype),
		Alternatives: want,
	}

	var parsed *GeneratedQuestion
	err := g.withRetry(ctx, "question", func() error {
		resp, err := g.generate(ctx, prompt)
		if err != nil {
			return err
		}
		parsed, err = ParseQuestion(resp.Content, want)
		return err
	})
	if err != nil {
		return models.Question{}, fmt.Errorf("generate question: %w", err)
	}

	for _, w := range Inspect(parsed) {
		g.logger.Warn("question quality", "warning", w, "type", qtype)
	}

	return models.Question{
		ID:           uuid.NewString(),
		Case:         parsed.Case,
		Alternatives: parsed.Alternatives,
		CorrectIndex: *parsed.CorrectIndex,
		IsTrueFalse:  req.Board.IsBinary(),
		Explanation:  parsed.Explanation,
		CoachTip:     parsed.CoachTip,
		Difficulty:   req.Difficulty,
		Type:         qtype,
	}, nil
}

// Summary requests study notes for subject.
func (g *Generator) Summary(ctx context.Context, subject string) (string, error) {
	prompt := Prompt{
		Kind:   KindSummary,
		System: SummarySystemPrompt(),
		User:   BuildSummaryPrompt(subject),
	}

	var text string
	err := g.withRetry(ctx, "summary", func() error {
		resp, err := g.generate(ctx, prompt)
		if err != nil {
			return err
		}
		text = CleanSummary(resp.Content)
		if text == "" {
			return ErrEmptyResponse
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	return text, nil
}

// withRetry retries fn with exponential backoff and jitter. Blocked content
// and context cancellation are not retried.
func (g *Generator) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := float64(g.retryDelay) * math.Pow(2, float64(attempt-1))
			delay := time.Duration(backoff * (0.5 + g.draw()*0.5))
			g.logger.Warn("retrying model call", "op", op, "attempt", attempt+1, "delay", delay, "error", lastErr)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, ErrContentBlocked) || ctx.Err() != nil {
			return err
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", g.maxRetries+1, lastErr)
}
