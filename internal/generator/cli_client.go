package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoJSONObject means a question reply from the CLI carried no JSON object.
var ErrNoJSONObject = errors.New("cli reply has no JSON object")

// CLIClient shells out to a locally installed claude CLI. The CLI has no
// structured output mode, so question prompts restate the alternative count
// and replies are cut down to the outermost JSON object.
type CLIClient struct {
	cliPath string
}

func NewCLIClient(cliPath string) *CLIClient {
	return &CLIClient{cliPath: cliPath}
}

func (c *CLIClient) Generate(ctx context.Context, p Prompt) (*LLMResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.cliPath, cliArgs(p)...)
	cmd.Stdin = strings.NewReader(p.User)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("claude CLI (%s prompt): %w\nstderr: %s", p.Kind, err, strings.TrimSpace(stderr.String()))
	}

	text, err := cliReply(p.Kind, stdout.String())
	if err != nil {
		return nil, err
	}
	return &LLMResponse{Content: text}, nil
}

func cliArgs(p Prompt) []string {
	system := p.System
	if p.Kind == KindQuestion && p.Alternatives > 0 {
		system += fmt.Sprintf("\n\nO array \"alternatives\" deve ter exatamente %d itens.", p.Alternatives)
	}
	return []string{
		"--print",
		"--output-format", "text",
		"--system-prompt", system,
		"--max-turns", "1",
	}
}

// cliReply trims the raw CLI output. Summaries pass through; questions keep
// only the span from the first '{' to the last '}'.
func cliReply(kind PromptKind, raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptyResponse
	}
	if kind != KindQuestion {
		return text, nil
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrNoJSONObject
	}
	return text[start : end+1], nil
}
