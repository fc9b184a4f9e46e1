package bot

import (
	"fmt"
	"math/rand"
)

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	switch level {
	case BotLevelRandom:
		return &RandomBot{rng: rng}, nil
	case BotLevelGood:
		return &GoodBot{}, nil
	case BotLevelSmart:
		return &SmartBot{Tuning: DefaultTuning}, nil
	case BotLevelGod:
		return NewGodBot(), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}

// NewAgent builds an agent for a bot identity, using the identity's
// difficulty when set and level otherwise.
func NewAgent(identity BotIdentity, level BotLevel, rng *rand.Rand) (*Agent, error) {
	if identity.Difficulty != "" {
		if l, err := ParseBotLevel(identity.Difficulty); err == nil {
			level = l
		}
	}
	brain, err := NewBrain(level, rng)
	if err != nil {
		return nil, err
	}
	return &Agent{
		ID:       identity.UserID,
		Name:     identity.DisplayName,
		Strategy: brain,
		rng:      rng,
	}, nil
}
