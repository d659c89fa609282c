package generator

import (
	"strings"
	"testing"
)

func TestInspect(t *testing.T) {
	idx := func(i int) *int { return &i }
	longCase := strings.Repeat("Paciente com dispneia. ", 5)

	tests := []struct {
		name     string
		q        GeneratedQuestion
		wantWarn string
	}{
		{
			name: "clean",
			q: GeneratedQuestion{
				Case: longCase, Alternatives: []string{"a", "b", "c", "d", "e"},
				CorrectIndex: idx(0), CoachTip: "dica",
			},
		},
		{
			name: "short case",
			q: GeneratedQuestion{
				Case: "Curto", Alternatives: []string{"Certo", "Errado"},
				CorrectIndex: idx(0), CoachTip: "dica",
			},
			wantWarn: "case length",
		},
		{
			name: "duplicate alternatives",
			q: GeneratedQuestion{
				Case: longCase, Alternatives: []string{"Sonda", "sonda", "c", "d", "e"},
				CorrectIndex: idx(2), CoachTip: "dica",
			},
			wantWarn: "alternatives 1 and 2 are identical",
		},
		{
			name: "missing tip",
			q: GeneratedQuestion{
				Case: longCase, Alternatives: []string{"a", "b", "c", "d", "e"},
				CorrectIndex: idx(1),
			},
			wantWarn: "missing coach_tip",
		},
		{
			name: "all of the above key",
			q: GeneratedQuestion{
				Case: longCase, Alternatives: []string{"a", "b", "c", "d", "Todas as alternativas estão corretas"},
				CorrectIndex: idx(4), CoachTip: "dica",
			},
			wantWarn: "all-of-the-above",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := Inspect(&tt.q)
			if tt.wantWarn == "" {
				if len(warnings) != 0 {
					t.Errorf("expected no warnings, got %v", warnings)
				}
				return
			}
			joined := strings.Join(warnings, "; ")
			if !strings.Contains(joined, tt.wantWarn) {
				t.Errorf("warnings %q do not contain %q", joined, tt.wantWarn)
			}
		})
	}
}
