package brain

import (
	"doudizhu/internal/domain"
)

// OpponentProfile tracks the behavioral history of one role.
type OpponentProfile struct {
	Role           domain.Role
	CardsRemaining int
	// Weaknesses maps a combination type to the weakest value the role declined to beat.
	Weaknesses map[domain.CardCombinationType]int32
	// PlayedStats tracks how many of each combination type the role has played.
	PlayedStats map[domain.CardCombinationType]int
}

// NewOpponentProfile initializes a profile for a role.
func NewOpponentProfile(role domain.Role) *OpponentProfile {
	return &OpponentProfile{
		Role:        role,
		Weaknesses:  make(map[domain.CardCombinationType]int32),
		PlayedStats: make(map[domain.CardCombinationType]int),
	}
}

// RecordPlay logs a combination played by this role.
func (p *OpponentProfile) RecordPlay(combo domain.CardCombination) {
	if combo.Type == domain.Invalid || combo.Type == domain.Pass {
		return
	}
	p.PlayedStats[combo.Type]++
}

// RecordFailure notes that this role passed on combo.
func (p *OpponentProfile) RecordFailure(combo domain.CardCombination) {
	if combo.Type == domain.Invalid || combo.Type == domain.Pass {
		return
	}
	current, ok := p.Weaknesses[combo.Type]
	if !ok || combo.Value < current {
		p.Weaknesses[combo.Type] = combo.Value
	}
}

// CanPossiblyBeat returns false only when the role already passed on a
// weaker combination of the same shape.
func (p *OpponentProfile) CanPossiblyBeat(combo domain.CardCombination) bool {
	failed, ok := p.Weaknesses[combo.Type]
	if !ok {
		return true
	}
	return combo.Value < failed
}
