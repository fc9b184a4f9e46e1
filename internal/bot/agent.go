package bot

import (
	"context"
	"math/rand"

	"doudizhu/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
	rng      *rand.Rand
}

// Play asks the agent to calculate its move for the observed position. A
// menu holding only Pass is answered without consulting the strategy, and a
// failing strategy falls back to a random legal move.
func (a *Agent) Play(obs domain.Observation) (Move, error) {
	moves := legalMoves(obs)
	if len(moves) == 0 || onlyPass(moves) {
		return Move{Pass: true}, nil
	}

	move, err := a.Strategy.CalculateMove(obs)
	if err != nil {
		return a.randomMove(moves), err
	}
	return move, nil
}

// ProposePlay implements the decision-maker contract used by hosts: it
// returns the cards to submit for the acting role. A previous rejection
// pushes the agent onto a random legal move so retries make progress.
func (a *Agent) ProposePlay(ctx context.Context, obs domain.Observation, lastErr error) ([]domain.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if lastErr != nil {
		return a.randomMove(legalMoves(obs)).Play(), nil
	}
	move, _ := a.Play(obs)
	return move.Play(), nil
}

func (a *Agent) randomMove(moves []domain.CardCombination) Move {
	if len(moves) == 0 {
		return Move{Pass: true}
	}
	var pick domain.CardCombination
	if a.rng != nil {
		pick = moves[a.rng.Intn(len(moves))]
	} else {
		pick = moves[rand.Intn(len(moves))]
	}
	if pick.Type == domain.Pass {
		return Move{Pass: true}
	}
	return Move{Cards: pick.Cards}
}
