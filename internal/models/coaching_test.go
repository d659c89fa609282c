package models

import (
	"testing"
	"time"
)

func TestPhraseAt(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{-time.Second, 0},
		{0, 0},
		{2999 * time.Millisecond, 0},
		{3 * time.Second, 1},
		{17 * time.Second, 5},
		{18 * time.Second, 0},
	}
	for _, tt := range tests {
		if got := PhraseAt(tt.elapsed); got != CoachingPhrases[tt.want] {
			t.Errorf("PhraseAt(%v) = %q, want %q", tt.elapsed, got, CoachingPhrases[tt.want])
		}
	}
}
