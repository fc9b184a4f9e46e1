package brain

import (
	"doudizhu/internal/domain"
)

// GameMemory stores the bot's private view of the match, rebuilt from what
// an Observation exposes.
type GameMemory struct {
	Mine   domain.Hand
	Played domain.Hand
	// Opponents tracks behavioral profiles of the other two roles.
	Opponents map[domain.Role]*OpponentProfile
	// CurrentCombo is the combination currently on the table to beat.
	CurrentCombo domain.CardCombination
}

// NewMemory initializes a fresh memory state.
func NewMemory() *GameMemory {
	m := &GameMemory{}
	m.Reset()
	return m
}

// Reset clears the memory for a new match.
func (m *GameMemory) Reset() {
	m.Mine = domain.Hand{}
	m.Played = domain.Hand{}
	m.Opponents = make(map[domain.Role]*OpponentProfile)
	m.CurrentCombo = domain.CardCombination{Type: domain.Invalid}
}

// Sync replaces the memory with what obs reveals: the bot's own hand, every
// card already played and which roles passed on what.
func (m *GameMemory) Sync(obs domain.Observation) {
	m.Reset()
	m.Mine = domain.NewHand(obs.Hand...)
	for r := domain.Landlord; r <= domain.FarmerB; r++ {
		if r == obs.Role {
			continue
		}
		p := NewOpponentProfile(r)
		p.CardsRemaining = obs.HandCounts[r]
		m.Opponents[r] = p
	}

	var leader domain.Role
	round := -1
	for _, rec := range obs.History {
		if rec.Round != round {
			round = rec.Round
			m.CurrentCombo = domain.CardCombination{Type: domain.Invalid}
		}
		if rec.Combination.Type == domain.Pass {
			m.RecordPass(rec.Role, leader)
			continue
		}
		m.Played.Add(rec.Combination.Cards...)
		m.CurrentCombo = rec.Combination
		leader = rec.Role
		if p, ok := m.Opponents[rec.Role]; ok {
			p.RecordPlay(rec.Combination)
		}
	}
	if obs.Leading() {
		m.CurrentCombo = domain.CardCombination{Type: domain.Invalid}
	}
}

// RecordPass notes that role declined the current combination played by
// leader. Passing on a teammate says nothing about the hand.
func (m *GameMemory) RecordPass(role, leader domain.Role) {
	if m.CurrentCombo.Type == domain.Invalid || domain.Teammate(role, leader) {
		return
	}
	if p, ok := m.Opponents[role]; ok {
		p.RecordFailure(m.CurrentCombo)
	}
}

// Unseen returns the cards neither held by the bot nor played yet.
func (m *GameMemory) Unseen() domain.Hand {
	var unseen domain.Hand
	deck := domain.NewHand(domain.NewDeck()...)
	for c := domain.Three; c <= domain.BigJoker; c++ {
		unseen[c] = deck[c] - m.Mine[c] - m.Played[c]
	}
	return unseen
}

// IsPlayed reports whether every copy of c is already out of the game.
func (m *GameMemory) IsPlayed(c domain.Card) bool {
	deck := domain.NewHand(domain.NewDeck()...)
	return m.Played.Count(c) == deck.Count(c)
}
