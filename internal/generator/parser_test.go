package generator

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validQuestionJSON(alternatives int, correct int) string {
	alts := make([]string, alternatives)
	for i := range alts {
		alts[i] = "Alternativa " + string(rune('A'+i))
	}
	q := GeneratedQuestion{
		Case:         "Paciente internado na UTI apresenta queda de saturação após aspiração traqueal.",
		Alternatives: alts,
		CorrectIndex: &correct,
		Explanation:  "A hiperoxigenação antes da aspiração previne a hipoxemia. Este é o protocolo.",
		CoachTip:     "Oxigene antes de aspirar.",
	}
	data, _ := json.Marshal(q)
	return string(data)
}

func TestParseQuestion_Valid(t *testing.T) {
	q, err := ParseQuestion(validQuestionJSON(5, 2), 5)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(q.Alternatives) != 5 {
		t.Errorf("expected 5 alternatives, got %d", len(q.Alternatives))
	}
	if *q.CorrectIndex != 2 {
		t.Errorf("correct index = %d, want 2", *q.CorrectIndex)
	}
}

func TestParseQuestion_Binary(t *testing.T) {
	q, err := ParseQuestion(validQuestionJSON(2, 1), 2)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(q.Alternatives) != 2 {
		t.Errorf("expected 2 alternatives, got %d", len(q.Alternatives))
	}
}

func TestParseQuestion_CodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"json fence", "```json\n" + validQuestionJSON(5, 0) + "\n```"},
		{"bare fence", "```\n" + validQuestionJSON(5, 0) + "\n```"},
		{"surrounding whitespace", "\n\n  " + validQuestionJSON(5, 0) + "  \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseQuestion(tt.input, 5); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseQuestion_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q map[string]any)
		want    int
		wantMsg string
	}{
		{"wrong alternative count", func(q map[string]any) {}, 2, "expected 2 alternatives, got 5"},
		{"index too high", func(q map[string]any) { q["correct_index"] = 5 }, 5, "out of range"},
		{"negative index", func(q map[string]any) { q["correct_index"] = -1 }, 5, "out of range"},
		{"missing index", func(q map[string]any) { delete(q, "correct_index") }, 5, "missing correct_index"},
		{"empty case", func(q map[string]any) { q["case"] = "  " }, 5, "empty case"},
		{"empty explanation", func(q map[string]any) { q["explanation"] = "" }, 5, "empty explanation"},
		{"blank alternative", func(q map[string]any) {
			q["alternatives"] = []string{"a", "", "c", "d", "e"}
		}, 5, "alternative 2 is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw map[string]any
			if err := json.Unmarshal([]byte(validQuestionJSON(5, 1)), &raw); err != nil {
				t.Fatal(err)
			}
			tt.mutate(raw)
			data, _ := json.Marshal(raw)

			_, err := ParseQuestion(string(data), tt.want)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(ve.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", ve.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParseQuestion_MalformedJSON(t *testing.T) {
	_, err := ParseQuestion("{not json", 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "failed to parse JSON") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCleanSummary(t *testing.T) {
	got := CleanSummary("  **Bizu: Sepse**\npor professora Kátia\n**Atenção**  ")
	want := "Bizu: Sepse\npor professora Kátia\nAtenção"
	if got != want {
		t.Errorf("CleanSummary = %q, want %q", got, want)
	}
}
