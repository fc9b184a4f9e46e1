package bot

import (
	botinternal "doudizhu/internal/bot/internal"
	"doudizhu/internal/domain"
)

// SmartBot scores each legal move by the structure of the hand it leaves.
type SmartBot struct {
	Tuning botinternal.BotTuning
}

func (b *SmartBot) CalculateMove(obs domain.Observation) (Move, error) {
	scored, weights, ok := b.score(obs)
	if !ok {
		return Move{Pass: true}, nil
	}
	sortScored(scored)
	best := scored[0]

	if b.shouldPass(obs, best, weights) {
		return Move{Pass: true}, nil
	}
	return Move{Cards: best.Combo.Cards}, nil
}

func (b *SmartBot) score(obs domain.Observation) ([]botinternal.ScoredMove, botinternal.PhaseWeights, bool) {
	moves := legalMoves(obs)
	if len(moves) == 0 || onlyPass(moves) {
		return nil, botinternal.PhaseWeights{}, false
	}
	hand := domain.NewHand(obs.Hand...)
	weights := b.Tuning.ForPhase(botinternal.DetectPhase(obs))
	threat := botinternal.DetectThreat(obs, b.Tuning.ThreatThreshold)
	scored := botinternal.BuildScoredMoves(hand, moves, weights, threat)
	return scored, weights, len(scored) > 0
}

// shouldPass applies the responding rules: always finish, let a strong
// teammate play stand, and otherwise pass when the best move costs more
// than PassThreshold.
func (b *SmartBot) shouldPass(obs domain.Observation, best botinternal.ScoredMove, weights botinternal.PhaseWeights) bool {
	if obs.Leading() || best.Remaining.Empty() {
		return false
	}
	if partnerHolds(obs) {
		incumbent := domain.IdentifyCombination(obs.Incumbent)
		if incumbent.Value >= b.Tuning.PartnerYieldValue || obs.HandCounts[obs.IncumbentRole] <= b.Tuning.ThreatThreshold {
			return true
		}
	}
	current := botinternal.ScoreHand(domain.NewHand(obs.Hand...), weights)
	return best.Score < current+b.Tuning.PassThreshold
}
