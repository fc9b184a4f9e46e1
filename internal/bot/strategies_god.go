package bot

import (
	botinternal "doudizhu/internal/bot/internal"
	"doudizhu/internal/bot/brain"
	"doudizhu/internal/domain"
)

// GodBot extends SmartBot with card counting: it prefers plays the unseen
// cards cannot beat and shapes the opponents already declined.
type GodBot struct {
	SmartBot
	memory *brain.GameMemory
}

// NewGodBot returns a GodBot using DefaultTuning.
func NewGodBot() *GodBot {
	return &GodBot{
		SmartBot: SmartBot{Tuning: DefaultTuning},
		memory:   brain.NewMemory(),
	}
}

func (b *GodBot) CalculateMove(obs domain.Observation) (Move, error) {
	scored, weights, ok := b.score(obs)
	if !ok {
		return Move{Pass: true}, nil
	}

	b.memory.Sync(obs)
	estimator := brain.NewEstimator(b.memory)
	threat := botinternal.DetectThreat(obs, b.Tuning.ThreatThreshold)
	phase := botinternal.DetectPhase(obs)

	for i := range scored {
		s := &scored[i]
		if estimator.IsBoss(s.Combo) {
			// Seize control when it matters, hold the boss card otherwise.
			if threat || phase == botinternal.PhaseEnd || s.RemainingProfile.Plays < godBotTuning.SaveBossMinPlays {
				s.Score += godBotTuning.BossBonus
			} else {
				s.Score -= godBotTuning.SaveBossPenalty
			}
		}
		if obs.Leading() && estimator.Blocked(s.Combo, obs.Role) {
			s.Score += godBotTuning.BlockedBonus
		}
	}

	sortScored(scored)
	best := scored[0]
	bestIsBoss := estimator.IsBoss(best.Combo)

	if !bestIsBoss && b.shouldPass(obs, best, weights) {
		return Move{Pass: true}, nil
	}
	if bestIsBoss && partnerHolds(obs) && !best.Remaining.Empty() {
		return Move{Pass: true}, nil
	}
	return Move{Cards: best.Combo.Cards}, nil
}
