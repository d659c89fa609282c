package generator

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIArgsRestateAlternatives(t *testing.T) {
	args := cliArgs(Prompt{Kind: KindQuestion, System: "sys", Alternatives: 2})
	require.Len(t, args, 7)
	assert.Equal(t, "--system-prompt", args[4])
	assert.Contains(t, args[5], "exatamente 2 itens")

	args = cliArgs(Prompt{Kind: KindSummary, System: "sys"})
	assert.Equal(t, "sys", args[5])
}

func TestCLIReply(t *testing.T) {
	tests := []struct {
		name string
		kind PromptKind
		raw  string
		want string
		err  error
	}{
		{"summary passes through", KindSummary, "  Bizu: PA a cada 15 min.\n", "Bizu: PA a cada 15 min.", nil},
		{"question keeps object", KindQuestion, "Aqui está:\n{\"case\": \"x\"}\nBons estudos!", `{"case": "x"}`, nil},
		{"question in fences", KindQuestion, "```json\n{\"a\": {\"b\": 1}}\n```", `{"a": {"b": 1}}`, nil},
		{"question without object", KindQuestion, "não sei", "", ErrNoJSONObject},
		{"empty", KindSummary, " \n", "", ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cliReply(tt.kind, tt.raw)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCLIClientRunsBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	script := filepath.Join(t.TempDir(), "claude")
	body := "#!/bin/sh\necho 'Resposta:'\ncat\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

	c := NewCLIClient(script)
	resp, err := c.Generate(context.Background(), Prompt{Kind: KindQuestion, System: "sys", User: `{"case": "eco"}`, Alternatives: 5})
	require.NoError(t, err)
	assert.Equal(t, `{"case": "eco"}`, resp.Content)

	_, err = NewCLIClient(filepath.Join(t.TempDir(), "missing")).Generate(context.Background(), Prompt{Kind: KindSummary})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary prompt")
}
