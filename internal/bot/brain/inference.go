package brain

import (
	"doudizhu/internal/domain"
)

// Estimator answers control questions from the bot's memory.
type Estimator struct {
	Memory *GameMemory
}

// NewEstimator creates a new reasoning engine.
func NewEstimator(m *GameMemory) *Estimator {
	return &Estimator{Memory: m}
}

// IsBoss reports whether no combination the unseen cards could form beats
// combo. Only plain sets are judged; every other shape returns false.
func (e *Estimator) IsBoss(combo domain.CardCombination) bool {
	width := 0
	switch combo.Type {
	case domain.Single:
		width = 1
	case domain.Pair:
		width = 2
	case domain.Triple:
		width = 3
	case domain.Rocket:
		return true
	default:
		return false
	}
	unseen := e.Memory.Unseen()
	if unseen.Count(domain.SmallJoker) == 1 && unseen.Count(domain.BigJoker) == 1 {
		return false
	}
	for c := domain.Three; c <= domain.Two; c++ {
		if unseen.Count(c) == domain.SuitsPerRank {
			return false
		}
	}
	for c := domain.Card(combo.Value) + 1; c <= domain.BigJoker; c++ {
		if unseen.Count(c) >= width {
			return false
		}
	}
	return true
}

// BossCount returns how many of moves are unbeatable by the unseen cards.
func (e *Estimator) BossCount(moves []domain.CardCombination) int {
	n := 0
	for _, m := range moves {
		if e.IsBoss(m) {
			n++
		}
	}
	return n
}

// Blocked reports whether every opponent has already passed on a weaker
// combination of the same shape as combo.
func (e *Estimator) Blocked(combo domain.CardCombination, self domain.Role) bool {
	for role, p := range e.Memory.Opponents {
		if domain.Teammate(role, self) {
			continue
		}
		if p.CardsRemaining > 0 && p.CanPossiblyBeat(combo) {
			return false
		}
	}
	return true
}
