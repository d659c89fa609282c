package models

import "time"

// CoachingPhrases rotate on screen while questions are being generated.
var CoachingPhrases = []string{
	"A persistência é o caminho do êxito.",
	"Um plantão por vez, uma questão por vez.",
	"90% dos alunos melhoram o desempenho com a enfQ®.",
	"Dica: Copie as respostas certas manualmente para fixar.",
	"Seu futuro como enfermeiro(a) começa agora.",
	"Calma. Vamos pensar juntas.",
}

// PhraseInterval is how long each phrase stays on screen.
const PhraseInterval = 3 * time.Second

// PhraseAt returns the phrase shown after waiting for elapsed.
func PhraseAt(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	return CoachingPhrases[int(elapsed/PhraseInterval)%len(CoachingPhrases)]
}
