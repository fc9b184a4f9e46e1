package internal

import "doudizhu/internal/domain"

// PhaseWeights tune move scoring for a specific phase.
type PhaseWeights struct {
	PlaysWeight          float64
	HighCardWeight       float64
	StraightCardWeight   float64
	PairChainCardWeight  float64
	AirplaneCardWeight   float64
	PairWeight           float64
	TripleWeight         float64
	BombWeight           float64
	SingleWeight         float64
	TotalCardWeight      float64
	UseTwoPenalty        float64
	UseJokerPenalty      float64
	UseBombPenalty       float64
	UseHighCardPenalty   float64
	FinishBonus          float64
	BlockerHighCardBonus float64
}

// BotTuning defines phase weights and thresholds for a bot difficulty.
type BotTuning struct {
	Opening         PhaseWeights
	Mid             PhaseWeights
	End             PhaseWeights
	PassThreshold   float64
	ThreatThreshold int
	// PartnerYieldValue is the incumbent value at or above which a farmer
	// lets its teammate's play stand.
	PartnerYieldValue int32
}

// ForPhase returns the weights that match the supplied phase.
func (t BotTuning) ForPhase(phase GamePhase) PhaseWeights {
	switch phase {
	case PhaseOpening:
		return t.Opening
	case PhaseEnd:
		return t.End
	default:
		return t.Mid
	}
}

// ScoredMove holds a move with its computed score and supporting metadata.
type ScoredMove struct {
	Combo            domain.CardCombination
	Score            float64
	Remaining        domain.Hand
	RemainingProfile HandProfile
}

// ScoreHand evaluates a hand using the configured weights and structure profile.
func ScoreHand(hand domain.Hand, weights PhaseWeights) float64 {
	return scoreProfile(ProfileHand(hand), weights)
}

// BuildScoredMoves scores each non-pass move by the hand it leaves behind,
// minus the cost of the control cards it spends.
func BuildScoredMoves(hand domain.Hand, moves []domain.CardCombination, weights PhaseWeights, threat bool) []ScoredMove {
	scored := make([]ScoredMove, 0, len(moves))
	for _, combo := range moves {
		if combo.Type == domain.Pass {
			continue
		}
		remaining := hand
		if !remaining.RemoveCards(combo.Cards) {
			continue
		}
		profile := ProfileHand(remaining)
		score := scoreProfile(profile, weights)

		if remaining.Empty() {
			score += weights.FinishBonus
		}

		score -= weights.UseHighCardPenalty * float64(combo.Value)

		if combo.IsBomb() {
			score -= weights.UseBombPenalty
		}

		used := domain.NewHand(combo.Cards...)
		score -= weights.UseTwoPenalty * float64(used.Count(domain.Two))
		if combo.Type != domain.Rocket {
			jokers := used.Count(domain.SmallJoker) + used.Count(domain.BigJoker)
			score -= weights.UseJokerPenalty * float64(jokers)
		}

		if threat && (combo.Type == domain.Single || combo.Type == domain.Pair) {
			score += weights.BlockerHighCardBonus * float64(combo.Value)
		}

		scored = append(scored, ScoredMove{
			Combo:            combo,
			Score:            score,
			Remaining:        remaining,
			RemainingProfile: profile,
		})
	}
	return scored
}

func scoreProfile(profile HandProfile, weights PhaseWeights) float64 {
	score := 0.0
	score += weights.PlaysWeight * float64(profile.Plays)
	score += weights.HighCardWeight * float64(profile.HighCards)
	score += weights.StraightCardWeight * float64(profile.StraightCards)
	score += weights.PairChainCardWeight * float64(profile.PairChainCards)
	score += weights.AirplaneCardWeight * float64(profile.AirplaneCards)
	score += weights.PairWeight * float64(profile.Pairs)
	score += weights.TripleWeight * float64(profile.Triples)
	score += weights.BombWeight * float64(profile.Bombs+profile.Rockets)
	score += weights.SingleWeight * float64(profile.Singles)
	score += weights.TotalCardWeight * float64(profile.TotalCards)
	return score
}
