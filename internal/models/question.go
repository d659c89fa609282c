package models

import "strings"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyKiller Difficulty = "killer"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
	DifficultyKiller: true,
}

// Label returns the wording used in prompts and on screen.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "Fácil"
	case DifficultyHard:
		return "Difícil"
	case DifficultyKiller:
		return "Assassina"
	default:
		return "Médio"
	}
}

type ExamBoard string

const (
	BoardENARE    ExamBoard = "ENARE"
	BoardFGV      ExamBoard = "FGV"
	BoardVUNESP   ExamBoard = "VUNESP"
	BoardFCC      ExamBoard = "FCC"
	BoardIBFC     ExamBoard = "IBFC"
	BoardCEBRASPE ExamBoard = "CEBRASPE"
)

var ValidBoards = map[ExamBoard]bool{
	BoardENARE:    true,
	BoardFGV:      true,
	BoardVUNESP:   true,
	BoardFCC:      true,
	BoardIBFC:     true,
	BoardCEBRASPE: true,
}

const (
	StandardAlternatives = 5
	BinaryAlternatives   = 2
)

// IsBinary reports whether the board grades statements as right/wrong
// instead of multiple choice.
func (b ExamBoard) IsBinary() bool {
	return b == BoardCEBRASPE
}

// Alternatives is the number of alternatives a question for this board carries.
func (b ExamBoard) Alternatives() int {
	if b.IsBinary() {
		return BinaryAlternatives
	}
	return StandardAlternatives
}

type QuestionType string

const (
	TypeTheoretical QuestionType = "theoretical"
	TypeClinical    QuestionType = "clinical"
)

func (t QuestionType) Opposite() QuestionType {
	if t == TypeClinical {
		return TypeTheoretical
	}
	return TypeClinical
}

// ── Core Structs ───────────────────────────────────────

type Question struct {
	ID           string       `json:"id"`
	Case         string       `json:"case"`
	Alternatives []string     `json:"alternatives"`
	CorrectIndex int          `json:"correct_index"`
	IsTrueFalse  bool         `json:"is_true_false"`
	Explanation  string       `json:"explanation"`
	CoachTip     string       `json:"coach_tip"`
	Difficulty   Difficulty   `json:"difficulty"`
	Type         QuestionType `json:"type"`
}

func (q Question) IsCorrect(index int) bool {
	return index == q.CorrectIndex
}

func (q Question) ValidChoice(index int) bool {
	return index >= 0 && index < len(q.Alternatives)
}

// QuickTip returns the first sentence of the explanation.
func (q Question) QuickTip() string {
	text := strings.TrimSpace(q.Explanation)
	if i := strings.Index(text, "."); i >= 0 {
		return text[:i+1]
	}
	return text
}

// QuestionRequest carries the parameters sent to the question source.
type QuestionRequest struct {
	Objective  string         `json:"objective"`
	Difficulty Difficulty     `json:"difficulty"`
	Board      ExamBoard      `json:"board"`
	Area       *ResidencyArea `json:"area,omitempty"`
	AvoidType  *QuestionType  `json:"avoid_type,omitempty"`
}

// Focus is the subject the generator should center the question on.
func (r QuestionRequest) Focus() string {
	if r.Area != nil {
		return r.Area.Label()
	}
	if r.Objective == "" {
		return "Geral"
	}
	return r.Objective
}

// PublicQuestion is a question as shown during a running exam, without the key.
type PublicQuestion struct {
	ID           string       `json:"id"`
	Case         string       `json:"case"`
	Alternatives []string     `json:"alternatives"`
	IsTrueFalse  bool         `json:"is_true_false"`
	Difficulty   Difficulty   `json:"difficulty"`
	Type         QuestionType `json:"type"`
}

func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:           q.ID,
		Case:         q.Case,
		Alternatives: append([]string(nil), q.Alternatives...),
		IsTrueFalse:  q.IsTrueFalse,
		Difficulty:   q.Difficulty,
		Type:         q.Type,
	}
}
