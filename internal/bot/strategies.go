package bot

import (
	"math/rand"
	"sort"

	botinternal "doudizhu/internal/bot/internal"
	"doudizhu/internal/domain"
)

// RandomBot plays a uniformly chosen legal move.
type RandomBot struct {
	rng *rand.Rand
}

func (b *RandomBot) CalculateMove(obs domain.Observation) (Move, error) {
	moves := legalMoves(obs)
	if len(moves) == 0 {
		return Move{Pass: true}, nil
	}
	var pick domain.CardCombination
	if b.rng != nil {
		pick = moves[b.rng.Intn(len(moves))]
	} else {
		pick = moves[rand.Intn(len(moves))]
	}
	if pick.Type == domain.Pass {
		return Move{Pass: true}, nil
	}
	return Move{Cards: pick.Cards}, nil
}

// sortScored orders moves best first, saving higher cards when scores are equal.
func sortScored(scored []botinternal.ScoredMove) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Combo.Value < scored[j].Combo.Value
	})
}

// partnerHolds reports whether the incumbent belongs to obs.Role's teammate.
func partnerHolds(obs domain.Observation) bool {
	return !obs.Leading() && obs.IncumbentRole != obs.Role && domain.Teammate(obs.IncumbentRole, obs.Role)
}
