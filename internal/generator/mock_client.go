package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MockClient serves a small built-in question bank so the app runs offline.
type MockClient struct {
	mu   sync.Mutex
	next int
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

type mockQuestion struct {
	Case         string
	Alternatives []string
	Correct      int
	Explanation  string
	Tip          string
}

var mockBank = []mockQuestion{
	{
		Case: "Paciente de 58 anos, na sala de emergência, apresenta dor torácica retroesternal há 40 minutos, sudorese e náuseas. Qual a primeira conduta de enfermagem?",
		Alternatives: []string{
			"Realizar eletrocardiograma de 12 derivações em até 10 minutos da chegada",
			"Administrar dipirona endovenosa para controle da dor",
			"Encaminhar o paciente para radiografia de tórax",
			"Aguardar resultado de troponina antes de qualquer exame",
			"Oferecer dieta leve e manter em observação",
		},
		Correct:     0,
		Explanation: "O ECG deve ser feito em até 10 minutos na suspeita de síndrome coronariana aguda. Ele orienta a reperfusão precoce.",
		Tip:         "Dor no peito: ECG em 10 minutos, sempre.",
	},
	{
		Case: "Segundo a Resolução COFEN vigente, a prescrição de cuidados de enfermagem integra qual etapa do Processo de Enfermagem?",
		Alternatives: []string{
			"Avaliação de enfermagem",
			"Planejamento de enfermagem",
			"Histórico de enfermagem",
			"Diagnóstico de enfermagem",
			"Evolução de enfermagem",
		},
		Correct:     1,
		Explanation: "A prescrição resulta do planejamento, quando se definem resultados esperados e intervenções. As demais etapas coletam dados, nomeiam problemas ou avaliam respostas.",
		Tip:         "Planejar é prescrever.",
	},
	{
		Case: "Puérpera no pós-parto imediato apresenta útero amolecido acima da cicatriz umbilical e sangramento vaginal volumoso. A principal hipótese e a conduta inicial são:",
		Alternatives: []string{
			"Retenção urinária; sondagem de alívio",
			"Atonia uterina; massagem uterina bimanual e acionar equipe",
			"Laceração de trajeto; compressão perineal",
			"Inversão uterina; reposicionamento manual imediato",
			"Coagulopatia; aguardar exames laboratoriais",
		},
		Correct:     1,
		Explanation: "Útero amolecido com sangramento volumoso caracteriza atonia, principal causa de hemorragia pós-parto. A massagem uterina e o protocolo de ocitocina são imediatos.",
		Tip:         "Os 4 Ts da hemorragia: Tônus, Trauma, Tecido e Trombina.",
	},
	{
		Case: "Em qual das situações abaixo estão indicadas compressões torácicas imediatas pela equipe de enfermagem?",
		Alternatives: []string{
			"Recém-nascido com frequência cardíaca abaixo de 60 bpm após ventilação adequada",
			"Adulto em parada com ritmo chocável antes do primeiro choque",
			"Criança com pulso presente e respiração agônica",
			"Adulto consciente com bradicardia sintomática",
			"Gestante com pulso presente e hipotensão",
		},
		Correct:     0,
		Explanation: "Em neonatos, compressões são indicadas com FC abaixo de 60 bpm apesar de ventilação efetiva. Nas demais situações há pulso ou outra prioridade.",
		Tip:         "Neonato: ventilar primeiro, comprimir abaixo de 60.",
	},
}

func (m *MockClient) Generate(ctx context.Context, p Prompt) (*LLMResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	item := mockBank[m.next%len(mockBank)]
	m.next++
	m.mu.Unlock()

	if p.Kind == KindSummary {
		return &LLMResponse{Content: mockSummary(p.User)}, nil
	}

	out := GeneratedQuestion{
		Case:         "[Mock] " + item.Case,
		Alternatives: item.Alternatives,
		Explanation:  item.Explanation,
		CoachTip:     item.Tip,
	}
	correct := item.Correct
	if p.Alternatives == 2 {
		out.Case = "[Mock] Julgue o item: " + item.Alternatives[0] + "."
		out.Alternatives = []string{"Certo", "Errado"}
		// the statement is the first alternative, so it holds only when it was the key
		correct = 1
		if item.Correct == 0 {
			correct = 0
		}
	}
	out.CorrectIndex = &correct

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode mock question: %w", err)
	}
	return &LLMResponse{Content: string(data)}, nil
}

func mockSummary(prompt string) string {
	subject := "Enfermagem"
	if _, after, ok := strings.Cut(prompt, "Enfermagem: "); ok {
		if line, _, _ := strings.Cut(after, "\n"); line != "" {
			subject = strings.TrimSuffix(line, ".")
		}
	}
	return fmt.Sprintf(`**Bizu: %s**
por professora Kátia

[Mock] Revise primeiro os protocolos do Ministério da Saúde sobre %s.
Monte um mapa com definição, sinais de alerta, condutas de enfermagem e registros obrigatórios.
Resolva questões da banca logo depois da leitura para fixar as pegadinhas.

Spoiler do próximo tema: segurança do paciente e as seis metas internacionais.`, subject, subject)
}
