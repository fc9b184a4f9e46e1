package bot

import (
	"doudizhu/internal/domain"
)

// GoodBot plays the cheapest legal move and lets a teammate's play stand.
type GoodBot struct{}

func (b *GoodBot) CalculateMove(obs domain.Observation) (Move, error) {
	moves := legalMoves(obs)
	if len(moves) == 0 || onlyPass(moves) || partnerHolds(obs) {
		return Move{Pass: true}, nil
	}

	lowest, ok := domain.LowestMove(moves)
	if !ok {
		return Move{Pass: true}, nil
	}
	return Move{Cards: lowest.Cards}, nil
}
