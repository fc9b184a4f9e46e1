package internal

import (
	"testing"

	"doudizhu/internal/domain"
)

var testWeights = PhaseWeights{
	PlaysWeight:        -3.0,
	SingleWeight:       -1.0,
	UseBombPenalty:     8.0,
	UseTwoPenalty:      2.0,
	UseHighCardPenalty: 0.2,
	FinishBonus:        1000.0,
}

func TestBuildScoredMoves_FinishingMoveWins(t *testing.T) {
	hand := handOf(t, "5", "5")
	moves := domain.GetValidMoves(hand, nil)

	scored := BuildScoredMoves(hand, moves, testWeights, false)
	best := scored[0]
	for _, s := range scored[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	if best.Combo.Type != domain.Pair {
		t.Fatalf("expected the pair to score best, got %v", best.Combo)
	}
	if !best.Remaining.Empty() {
		t.Fatalf("remaining = %v, want empty", best.Remaining)
	}
}

func TestBuildScoredMoves_SkipsPassAndPenalizesBombs(t *testing.T) {
	hand := handOf(t, "7", "7", "7", "7", "9")
	moves := domain.GetValidMoves(hand, []domain.Card{domain.Six})

	scored := BuildScoredMoves(hand, moves, testWeights, false)
	var single, bomb *ScoredMove
	for i := range scored {
		switch scored[i].Combo.Type {
		case domain.Pass:
			t.Fatal("pass must not be scored")
		case domain.Bomb:
			bomb = &scored[i]
		case domain.Single:
			if scored[i].Combo.Value == int32(domain.Nine) {
				single = &scored[i]
			}
		}
	}
	if single == nil || bomb == nil {
		t.Fatalf("expected both single 9 and the bomb, got %+v", scored)
	}
	if bomb.Score >= single.Score {
		t.Fatalf("bomb score %.2f should be below single score %.2f", bomb.Score, single.Score)
	}
}
