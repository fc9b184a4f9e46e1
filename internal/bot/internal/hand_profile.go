package internal

import "doudizhu/internal/domain"

// HandProfile summarizes a hand's strategic structure for phase-aware scoring.
type HandProfile struct {
	TotalCards     int
	Singles        int
	Pairs          int
	Triples        int
	Bombs          int
	Rockets        int
	Straights      int
	StraightCards  int
	MaxStraightLen int
	PairChains     int
	PairChainCards int
	Airplanes      int
	AirplaneCards  int
	HighCards      int // twos and jokers
	Plays          int // estimated turns needed to empty the hand
}

// ProfileHand decomposes a hand greedily into rocket, bombs, airplanes,
// straights, pair chains and leftover sets.
func ProfileHand(hand domain.Hand) HandProfile {
	profile := HandProfile{TotalCards: hand.Len()}
	if hand.Empty() {
		return profile
	}
	profile.HighCards = hand.Count(domain.Two) + hand.Count(domain.SmallJoker) + hand.Count(domain.BigJoker)

	h := hand
	if h[domain.SmallJoker] == 1 && h[domain.BigJoker] == 1 {
		profile.Rockets = 1
		h[domain.SmallJoker], h[domain.BigJoker] = 0, 0
	}
	for c := domain.Three; c <= domain.Two; c++ {
		if h[c] == domain.SuitsPerRank {
			profile.Bombs++
			h[c] = 0
		}
	}

	kickerSlots := 0
	for {
		start, length := longestRun(h, 3, 2)
		if length == 0 {
			break
		}
		take(&h, start, length, 3)
		profile.Airplanes++
		profile.AirplaneCards += 3 * length
		kickerSlots += length
	}
	for {
		start, length := longestRun(h, 1, 5)
		if length == 0 {
			break
		}
		take(&h, start, length, 1)
		profile.Straights++
		profile.StraightCards += length
		if length > profile.MaxStraightLen {
			profile.MaxStraightLen = length
		}
	}
	for {
		start, length := longestRun(h, 2, 3)
		if length == 0 {
			break
		}
		take(&h, start, length, 2)
		profile.PairChains++
		profile.PairChainCards += 2 * length
	}

	for c := domain.Three; c <= domain.BigJoker; c++ {
		switch h[c] {
		case 3:
			profile.Triples++
		case 2:
			profile.Pairs++
		case 1:
			profile.Singles++
		}
	}
	kickerSlots += profile.Triples

	profile.Plays = profile.Rockets + profile.Bombs + profile.Airplanes + profile.Straights +
		profile.PairChains + profile.Triples
	if loose := profile.Singles + profile.Pairs - kickerSlots; loose > 0 {
		profile.Plays += loose
	}
	return profile
}

// longestRun finds the longest run of sequenceable ranks holding at least
// width copies each, preferring the lowest start on ties.
func longestRun(h domain.Hand, width, minLen int) (domain.Card, int) {
	var bestStart domain.Card
	bestLen := 0
	for start := domain.Three; start <= domain.Ace; start++ {
		length := 0
		for c := start; c <= domain.Ace && int(h[c]) >= width; c++ {
			length++
		}
		if length >= minLen && length > bestLen {
			bestStart, bestLen = start, length
		}
	}
	return bestStart, bestLen
}

func take(h *domain.Hand, start domain.Card, length, width int) {
	for c := start; c < start+domain.Card(length); c++ {
		h[c] -= uint8(width)
	}
}
