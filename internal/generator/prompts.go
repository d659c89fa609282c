package generator

import (
	"fmt"
	"strings"

	"github.com/enfq/app/internal/models"
)

var typeInstructions = map[models.QuestionType]string{
	models.TypeTheoretical: "Conceito Teórico Direto: cobre uma definição, protocolo ou norma sem narrativa de paciente.",
	models.TypeClinical:    "Caso Clínico Realista: descreve um paciente, sinais e conduta esperada da enfermagem.",
}

var boardStyles = map[models.ExamBoard]string{
	models.BoardENARE:    "enunciados objetivos centrados em protocolos do SUS",
	models.BoardFGV:      "textos longos e interpretativos com distratores muito próximos",
	models.BoardVUNESP:   "cobrança literal de legislação e procedimentos",
	models.BoardFCC:      "perguntas diretas com foco em letra de lei e técnica",
	models.BoardIBFC:     "questões curtas de memorização e conceitos básicos",
	models.BoardCEBRASPE: "assertivas para julgar como CERTO ou ERRADO, com pegadinhas em palavras absolutas",
}

// QuestionSystemPrompt describes the role and the JSON contract.
func QuestionSystemPrompt() string {
	return `Você é a Profª Kátia, mentora de candidatos de Enfermagem para concursos, residências e provas de graduação.
Você escreve questões inéditas, tecnicamente corretas e alinhadas às diretrizes 2024/2025 (Ministério da Saúde, COFEN, AHA).

Responda APENAS com um objeto JSON, sem texto antes ou depois, com os campos:
  "case":          enunciado da questão (string)
  "alternatives":  lista de alternativas (array de strings, sem letras ou numeração)
  "correct_index": posição da alternativa correta, começando em 0 (inteiro)
  "explanation":   comentário conciso justificando o gabarito (string)
  "coach_tip":     dica curta de mentoria para memorizar o tema (string)`
}

// BuildQuestionPrompt asks for one question of the given type.
func BuildQuestionPrompt(req models.QuestionRequest, qtype models.QuestionType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Questão de Enfermagem nível %s (banca %s).\n", req.Difficulty.Label(), req.Board)
	fmt.Fprintf(&b, "Foco: %s.\n", req.Focus())
	fmt.Fprintf(&b, "Tipo: %s\n", typeInstructions[qtype])
	if style, ok := boardStyles[req.Board]; ok {
		fmt.Fprintf(&b, "Estilo da banca: %s.\n", style)
	}
	if req.Board.IsBinary() {
		b.WriteString(`Formato: CERTO ou ERRADO. "alternatives" deve ser exatamente ["Certo", "Errado"].` + "\n")
	} else {
		fmt.Fprintf(&b, "Formato: exatamente %d alternativas, apenas uma correta.\n", models.StandardAlternatives)
	}
	b.WriteString("Responda em JSON estrito. Seja conciso no comentário.")
	return b.String()
}

// SummarySystemPrompt is the mentor voice used for study summaries.
func SummarySystemPrompt() string {
	return "Você é a Profª Kátia, mentora de Enfermagem. Escreva em português do Brasil, em tom direto de mentoria."
}

// BuildSummaryPrompt asks for an executive summary ("Bizu") on subject.
func BuildSummaryPrompt(subject string) string {
	return fmt.Sprintf(`Resumo executivo (Bizu) para Enfermagem: %s.
Foco em diretrizes 2024/2025. Sem introduções longas.
Linguagem de mentoria da Profª Kátia. Sem asteriscos.
Dê um spoiler do próximo tema.
Título na primeira linha e "por professora Kátia" logo abaixo.`, subject)
}
