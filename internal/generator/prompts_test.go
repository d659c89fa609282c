package generator

import (
	"strings"
	"testing"

	"github.com/enfq/app/internal/models"
)

func TestBuildQuestionPrompt(t *testing.T) {
	icu := models.AreaICU
	tests := []struct {
		name     string
		req      models.QuestionRequest
		qtype    models.QuestionType
		contains []string
		excludes []string
	}{
		{
			name:     "multiple choice contest",
			req:      models.QuestionRequest{Objective: "CONTEST", Difficulty: models.DifficultyHard, Board: models.BoardFGV},
			qtype:    models.TypeClinical,
			contains: []string{"Difícil", "FGV", "Foco: CONTEST", "Caso Clínico", "exatamente 5 alternativas"},
			excludes: []string{"CERTO ou ERRADO"},
		},
		{
			name:     "binary board",
			req:      models.QuestionRequest{Objective: "CONTEST", Difficulty: models.DifficultyEasy, Board: models.BoardCEBRASPE},
			qtype:    models.TypeTheoretical,
			contains: []string{"CERTO ou ERRADO", "Conceito Teórico"},
			excludes: []string{"exatamente 5 alternativas"},
		},
		{
			name:     "residency area focus",
			req:      models.QuestionRequest{Objective: "RESIDENCY", Difficulty: models.DifficultyKiller, Board: models.BoardENARE, Area: &icu},
			qtype:    models.TypeClinical,
			contains: []string{"Foco: UTI Adulto/Pediátrica", "Assassina"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := BuildQuestionPrompt(tt.req, tt.qtype)
			for _, s := range tt.contains {
				if !strings.Contains(prompt, s) {
					t.Errorf("prompt missing %q:\n%s", s, prompt)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(prompt, s) {
					t.Errorf("prompt should not contain %q", s)
				}
			}
		})
	}
}

func TestQuestionSystemPromptNamesFields(t *testing.T) {
	sys := QuestionSystemPrompt()
	for _, field := range []string{`"case"`, `"alternatives"`, `"correct_index"`, `"explanation"`, `"coach_tip"`} {
		if !strings.Contains(sys, field) {
			t.Errorf("system prompt missing field %s", field)
		}
	}
}

func TestBuildSummaryPrompt(t *testing.T) {
	p := BuildSummaryPrompt("Sepse")
	if !strings.Contains(p, "Enfermagem: Sepse") {
		t.Errorf("summary prompt missing subject: %s", p)
	}
	if !strings.Contains(p, "Sem asteriscos") {
		t.Error("summary prompt should forbid asterisks")
	}
}
