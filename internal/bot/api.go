package bot

import (
	"fmt"
	"strings"

	"doudizhu/internal/domain"
)

// Move represents the decision made by the AI.
type Move struct {
	Pass  bool
	Cards []domain.Card
}

// Play returns the move in the form the engine accepts.
func (m Move) Play() []domain.Card {
	if m.Pass || len(m.Cards) == 0 {
		return domain.PassPlay()
	}
	return m.Cards
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	CalculateMove(obs domain.Observation) (Move, error)
}

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelRandom BotLevel = iota
	BotLevelGood
	BotLevelSmart
	BotLevelGod
)

var botLevelNames = map[string]BotLevel{
	"random": BotLevelRandom,
	"easy":   BotLevelRandom,
	"good":   BotLevelGood,
	"medium": BotLevelGood,
	"smart":  BotLevelSmart,
	"hard":   BotLevelSmart,
	"god":    BotLevelGod,
}

// ParseBotLevel maps a configured level or identity difficulty to a BotLevel.
func ParseBotLevel(name string) (BotLevel, error) {
	level, ok := botLevelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown bot level: %q", name)
	}
	return level, nil
}

// legalMoves returns the observation's menu, computing it when the
// observation was taken from a non-acting seat.
func legalMoves(obs domain.Observation) []domain.CardCombination {
	if len(obs.LegalMoves) > 0 {
		return obs.LegalMoves
	}
	return domain.GetValidMoves(domain.NewHand(obs.Hand...), obs.Incumbent)
}

// onlyPass reports whether passing is the sole option on the menu.
func onlyPass(moves []domain.CardCombination) bool {
	return len(moves) == 1 && moves[0].Type == domain.Pass
}
