package bot

import (
	botinternal "doudizhu/internal/bot/internal"
	"doudizhu/internal/domain"
)

const finishBonus = 1000.0

// DefaultTuning balances structure preservation and hand reduction by phase.
var DefaultTuning = botinternal.BotTuning{
	Opening: botinternal.PhaseWeights{
		PlaysWeight:         -4.0,
		HighCardWeight:      1.5,
		StraightCardWeight:  0.4,
		PairChainCardWeight: 0.4,
		AirplaneCardWeight:  0.5,
		PairWeight:          0.3,
		TripleWeight:        0.5,
		BombWeight:          6.0,
		SingleWeight:        -1.0,
		TotalCardWeight:     -0.1,
		UseTwoPenalty:       3.0,
		UseJokerPenalty:     4.0,
		UseBombPenalty:      8.0,
		UseHighCardPenalty:  0.3,
		FinishBonus:         finishBonus,
	},
	Mid: botinternal.PhaseWeights{
		PlaysWeight:         -4.0,
		HighCardWeight:      1.2,
		StraightCardWeight:  0.3,
		PairChainCardWeight: 0.3,
		AirplaneCardWeight:  0.4,
		PairWeight:          0.3,
		TripleWeight:        0.5,
		BombWeight:          5.0,
		SingleWeight:        -1.2,
		TotalCardWeight:     -0.3,
		UseTwoPenalty:       2.0,
		UseJokerPenalty:     3.0,
		UseBombPenalty:      6.0,
		UseHighCardPenalty:  0.25,
		FinishBonus:         finishBonus,
	},
	End: botinternal.PhaseWeights{
		PlaysWeight:          -5.0,
		HighCardWeight:       0.5,
		StraightCardWeight:   0.2,
		PairChainCardWeight:  0.2,
		AirplaneCardWeight:   0.3,
		PairWeight:           0.2,
		TripleWeight:         0.3,
		BombWeight:           3.0,
		SingleWeight:         -1.5,
		TotalCardWeight:      -1.0,
		UseTwoPenalty:        0.7,
		UseJokerPenalty:      1.0,
		UseBombPenalty:       2.0,
		UseHighCardPenalty:   0.2,
		FinishBonus:          finishBonus,
		BlockerHighCardBonus: 0.8,
	},
	PassThreshold:     -6.0,
	ThreatThreshold:   3,
	PartnerYieldValue: int32(domain.Jack),
}

// godBotTuning adds memory-driven adjustments on top of DefaultTuning.
var godBotTuning = struct {
	BossBonus        float64
	BlockedBonus     float64
	SaveBossPenalty  float64
	SaveBossMinPlays int
}{
	BossBonus:        5.0,
	BlockedBonus:     4.0,
	SaveBossPenalty:  3.0,
	SaveBossMinPlays: 3,
}
