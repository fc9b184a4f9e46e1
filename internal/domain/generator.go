package domain

import "sort"

// moveFamily produces candidate plays of one shape family from a hand.
// Candidates may overlap between families; GetValidMoves classifies and
// deduplicates them.
type moveFamily func(hand Hand) [][]Card

var moveFamilies = []moveFamily{
	findAllSingles,
	findAllPairs,
	findAllTriples,
	findAllTriplesWithKicker,
	findAllStraights,
	findAllConsecutivePairs,
	findAllAirplanes,
	findAllBombs,
	findAllBombsWithKickers,
	findRocket,
}

// GetValidMoves returns every distinct combination the hand can play against
// incumbent. With nothing in play Pass is excluded; otherwise Pass is always
// present and listed first. The result is ordered by shape, size and value.
func GetValidMoves(hand Hand, incumbent []Card) []CardCombination {
	var prev CardCombination
	leading := len(incumbent) == 0
	if !leading {
		prev = IdentifyCombination(incumbent)
	}

	seen := make(map[Hand]struct{})
	var moves []CardCombination
	for _, family := range moveFamilies {
		for _, cards := range family(hand) {
			key := NewHand(cards...)
			if _, dup := seen[key]; dup {
				continue
			}
			combo := IdentifyCombination(cards)
			if combo.Type == Invalid {
				continue
			}
			if !leading && !canBeatCombination(prev, combo) {
				continue
			}
			seen[key] = struct{}{}
			moves = append(moves, combo)
		}
	}

	sortMoves(moves)
	if !leading {
		moves = append([]CardCombination{IdentifyCombination(PassPlay())}, moves...)
	}
	return moves
}

// LowestMove picks the cheapest non-pass move: non-bombs before bombs, then
// the lowest value, then the most cards shed. It reports false when only
// Pass is available.
func LowestMove(moves []CardCombination) (CardCombination, bool) {
	var best CardCombination
	found := false
	for _, m := range moves {
		if m.Type == Pass || m.Type == Invalid {
			continue
		}
		if !found || lowerThan(m, best) {
			best, found = m, true
		}
	}
	return best, found
}

func lowerThan(a, b CardCombination) bool {
	if a.IsBomb() != b.IsBomb() {
		return !a.IsBomb()
	}
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	return len(a.Cards) > len(b.Cards)
}

func sortMoves(moves []CardCombination) {
	sort.Slice(moves, func(i, j int) bool {
		a, b := moves[i], moves[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Count != b.Count {
			return a.Count < b.Count
		}
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		for k := range a.Cards {
			if a.Cards[k] != b.Cards[k] {
				return a.Cards[k] < b.Cards[k]
			}
		}
		return false
	})
}

func repeat(c Card, n int) []Card {
	out := make([]Card, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func concat(parts ...[]Card) []Card {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]Card, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func findAllSingles(hand Hand) [][]Card {
	var moves [][]Card
	for c := Three; c <= BigJoker; c++ {
		if hand[c] >= 1 {
			moves = append(moves, []Card{c})
		}
	}
	return moves
}

func findAllPairs(hand Hand) [][]Card {
	var moves [][]Card
	for c := Three; c <= Two; c++ {
		if hand[c] >= 2 {
			moves = append(moves, repeat(c, 2))
		}
	}
	return moves
}

func findAllTriples(hand Hand) [][]Card {
	var moves [][]Card
	for c := Three; c <= Two; c++ {
		if hand[c] >= 3 {
			moves = append(moves, repeat(c, 3))
		}
	}
	return moves
}

// findAllTriplesWithKicker attaches every single and every pair of another rank.
func findAllTriplesWithKicker(hand Hand) [][]Card {
	var moves [][]Card
	for t := Three; t <= Two; t++ {
		if hand[t] < 3 {
			continue
		}
		body := repeat(t, 3)
		for k := Three; k <= BigJoker; k++ {
			if k == t {
				continue
			}
			if hand[k] >= 1 {
				moves = append(moves, concat(body, []Card{k}))
			}
			if hand[k] >= 2 {
				moves = append(moves, concat(body, repeat(k, 2)))
			}
		}
	}
	return moves
}

func findAllBombs(hand Hand) [][]Card {
	var moves [][]Card
	for c := Three; c <= Two; c++ {
		if hand[c] == 4 {
			moves = append(moves, repeat(c, 4))
		}
	}
	return moves
}

// findAllBombsWithKickers covers four-with-two-singles, four-with-one-pair
// and four-with-two-pairs. Kicker ranks are distinct and never the bomb rank.
func findAllBombsWithKickers(hand Hand) [][]Card {
	var moves [][]Card
	for b := Three; b <= Two; b++ {
		if hand[b] != 4 {
			continue
		}
		body := repeat(b, 4)
		pool := hand
		pool[b] = 0
		for _, kickers := range chooseSingles(pool, 2) {
			moves = append(moves, concat(body, kickers))
		}
		for _, kickers := range choosePairs(pool, 1) {
			moves = append(moves, concat(body, kickers))
		}
		for _, kickers := range choosePairs(pool, 2) {
			moves = append(moves, concat(body, kickers))
		}
	}
	return moves
}

func findRocket(hand Hand) [][]Card {
	if hand[SmallJoker] >= 1 && hand[BigJoker] >= 1 {
		return [][]Card{{SmallJoker, BigJoker}}
	}
	return nil
}

// runs calls fn for every contiguous sequenceable run of at least minLen
// ranks in which each rank is held at least width times.
func runs(hand Hand, width, minLen int, fn func(start Card, length int)) {
	for start := Three; start <= Ace; start++ {
		length := 0
		for c := start; c <= Ace && int(hand[c]) >= width; c++ {
			length++
			if length >= minLen {
				fn(start, length)
			}
		}
	}
}

func runCards(start Card, length, width int) []Card {
	out := make([]Card, 0, length*width)
	for c := start; c < start+Card(length); c++ {
		out = append(out, repeat(c, width)...)
	}
	return out
}

func findAllStraights(hand Hand) [][]Card {
	var moves [][]Card
	runs(hand, 1, minStraightLen, func(start Card, length int) {
		moves = append(moves, runCards(start, length, 1))
	})
	return moves
}

func findAllConsecutivePairs(hand Hand) [][]Card {
	var moves [][]Card
	runs(hand, 2, minConsecutivePairLen, func(start Card, length int) {
		moves = append(moves, runCards(start, length, 2))
	})
	return moves
}

// findAllAirplanes emits every triple run bare, with every multiset of
// run-length single kickers, and with every set of run-length distinct pairs.
// Kickers never share a rank with the body.
func findAllAirplanes(hand Hand) [][]Card {
	var moves [][]Card
	runs(hand, 3, minAirplaneLen, func(start Card, length int) {
		body := runCards(start, length, 3)
		moves = append(moves, body)

		pool := hand
		for c := start; c < start+Card(length); c++ {
			pool[c] = 0
		}
		for _, kickers := range chooseMultisets(pool, length) {
			moves = append(moves, concat(body, kickers))
		}
		for _, kickers := range choosePairs(pool, length) {
			moves = append(moves, concat(body, kickers))
		}
	})
	return moves
}

// chooseSingles returns every set of n distinct ranks from pool, one card each.
func chooseSingles(pool Hand, n int) [][]Card {
	return chooseDistinct(pool, n, 1)
}

// choosePairs returns every set of n distinct ranks from pool, two cards each.
func choosePairs(pool Hand, n int) [][]Card {
	return chooseDistinct(pool, n, 2)
}

func chooseDistinct(pool Hand, n, width int) [][]Card {
	var out [][]Card
	var pick func(from Card, chosen []Card)
	pick = func(from Card, chosen []Card) {
		if len(chosen) == n*width {
			out = append(out, append([]Card(nil), chosen...))
			return
		}
		for c := from; c <= BigJoker; c++ {
			if int(pool[c]) >= width {
				pick(c+1, append(chosen, repeat(c, width)...))
			}
		}
	}
	pick(Three, make([]Card, 0, n*width))
	return out
}

// chooseMultisets returns every multiset of exactly n cards drawable from pool.
func chooseMultisets(pool Hand, n int) [][]Card {
	var out [][]Card
	var pick func(from Card, chosen []Card)
	pick = func(from Card, chosen []Card) {
		if len(chosen) == n {
			out = append(out, append([]Card(nil), chosen...))
			return
		}
		for c := from; c <= BigJoker; c++ {
			next := chosen
			for k := 1; k <= int(pool[c]) && len(next) < n; k++ {
				next = append(next, c)
				pick(c+1, next)
			}
		}
	}
	pick(Three, make([]Card, 0, n))
	return out
}
