package domain

import (
	"sort"
	"strconv"
	"strings"
)

// CardCombinationType represents the type of card combination.
type CardCombinationType int

const (
	Invalid CardCombinationType = iota
	Pass
	Single
	Pair
	Triple
	TripleWithSingle
	TripleWithPair
	Straight
	ConsecutivePairs
	Airplane
	AirplaneWithSingles
	AirplaneWithPairs
	Bomb
	BombWithSingles
	BombWithPair
	Rocket
)

var combinationTypeNames = [...]string{
	Invalid:             "invalid",
	Pass:                "pass",
	Single:              "single",
	Pair:                "pair",
	Triple:              "triple",
	TripleWithSingle:    "triple_with_single",
	TripleWithPair:      "triple_with_pair",
	Straight:            "straight",
	ConsecutivePairs:    "consecutive_pairs",
	Airplane:            "airplane",
	AirplaneWithSingles: "airplane_with_singles",
	AirplaneWithPairs:   "airplane_with_pairs",
	Bomb:                "bomb",
	BombWithSingles:     "bomb_with_singles",
	BombWithPair:        "bomb_with_pair",
	Rocket:              "rocket",
}

func (t CardCombinationType) String() string {
	if t < 0 || int(t) >= len(combinationTypeNames) {
		return "CardCombinationType(" + strconv.Itoa(int(t)) + ")"
	}
	return combinationTypeNames[t]
}

// RocketValue is the fixed strength of the two-joker Rocket.
const RocketValue = int32(BigJoker)

// CardCombination represents a detected combination of cards.
type CardCombination struct {
	Type  CardCombinationType
	Cards []Card // The cards forming the combination, sorted
	Value int32  // Principal rank of the combination
	Count int    // Number of cards in the combination
}

// IsBomb reports whether the combination is a plain Bomb or the Rocket.
func (c CardCombination) IsBomb() bool {
	return c.Type == Bomb || c.Type == Rocket
}

func (c CardCombination) String() string {
	if c.Type == Pass {
		return "PASS"
	}
	return c.Type.String() + "[" + strings.Join(FormatCards(c.Cards), " ") + "]"
}

// rankCounts tallies a multiset per rank without the uint8 bound of Hand.
type rankCounts [cardSlots]int

func countCards(cards []Card) (rankCounts, bool) {
	var counts rankCounts
	for _, c := range cards {
		if !c.Valid() {
			return counts, false
		}
		counts[c]++
		if counts[c] > maxCopies(c) {
			return counts, false
		}
	}
	return counts, true
}

func maxCopies(c Card) int {
	if c.Joker() {
		return 1
	}
	return SuitsPerRank
}

// signature lists the non-zero per-rank counts in descending order, e.g. "411".
func (rc rankCounts) signature() string {
	counts := make([]int, 0, len(rc))
	for c := Three; c <= BigJoker; c++ {
		if rc[c] > 0 {
			counts = append(counts, rc[c])
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))
	var b strings.Builder
	for _, n := range counts {
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

// ranksWithCount returns, ascending, every rank held exactly n times.
func (rc rankCounts) ranksWithCount(n int) []Card {
	var out []Card
	for c := Three; c <= BigJoker; c++ {
		if rc[c] == n {
			out = append(out, c)
		}
	}
	return out
}

// IdentifyCombination classifies an unordered multiset of cards. It never
// fails: anything outside the closed set of shapes is Invalid.
func IdentifyCombination(cards []Card) CardCombination {
	if IsPass(cards) {
		return CardCombination{Type: Pass, Cards: PassPlay()}
	}
	if len(cards) == 0 {
		return CardCombination{Type: Invalid}
	}
	counts, ok := countCards(cards)
	if !ok {
		return CardCombination{Type: Invalid}
	}

	sorted := make([]Card, len(cards))
	copy(sorted, cards)
	SortHand(sorted)
	combo := func(t CardCombinationType, principal Card) CardCombination {
		return CardCombination{Type: t, Cards: sorted, Value: int32(principal), Count: len(sorted)}
	}

	if len(sorted) == 2 && counts[SmallJoker] == 1 && counts[BigJoker] == 1 {
		return combo(Rocket, BigJoker)
	}

	switch counts.signature() {
	case "1":
		return combo(Single, sorted[0])
	case "2":
		return combo(Pair, sorted[0])
	case "3":
		return combo(Triple, sorted[0])
	case "4":
		return combo(Bomb, sorted[0])
	case "31":
		return combo(TripleWithSingle, counts.ranksWithCount(3)[0])
	case "32":
		return combo(TripleWithPair, counts.ranksWithCount(3)[0])
	case "411":
		return combo(BombWithSingles, counts.ranksWithCount(4)[0])
	case "42", "422":
		return combo(BombWithPair, counts.ranksWithCount(4)[0])
	}

	if t, principal, ok := identifySequence(counts, len(sorted)); ok {
		return combo(t, principal)
	}
	return CardCombination{Type: Invalid}
}

// identifySequence recognises the run-based shapes: straights, consecutive
// pairs and the airplane family. Only ranks held exactly three times count
// as airplane body, and all of them must form one run.
func identifySequence(counts rankCounts, n int) (CardCombinationType, Card, bool) {
	singles := counts.ranksWithCount(1)
	pairs := counts.ranksWithCount(2)
	triples := counts.ranksWithCount(3)

	if n >= minStraightLen && len(singles) == n && isRun(singles) {
		return Straight, singles[len(singles)-1], true
	}
	if len(pairs) >= minConsecutivePairLen && len(pairs)*2 == n && isRun(pairs) {
		return ConsecutivePairs, pairs[len(pairs)-1], true
	}

	body := len(triples)
	if body < minAirplaneLen || !isRun(triples) {
		return Invalid, 0, false
	}
	top := triples[body-1]
	switch n {
	case body * 3:
		return Airplane, top, true
	case body * 4:
		return AirplaneWithSingles, top, true
	case body * 5:
		if len(pairs) == body {
			return AirplaneWithPairs, top, true
		}
	}
	return Invalid, 0, false
}

// isRun reports whether ascending ranks are contiguous and free of twos and jokers.
func isRun(ranks []Card) bool {
	for i, c := range ranks {
		if !c.Sequenceable() {
			return false
		}
		if i > 0 && c != ranks[i-1]+1 {
			return false
		}
	}
	return len(ranks) > 0
}

// CanBeat reports whether newCards may be played on top of prevCards. An
// empty prevCards means nothing is in play, so any real combination leads.
func CanBeat(prevCards, newCards []Card) bool {
	next := IdentifyCombination(newCards)
	if len(prevCards) == 0 {
		return next.Type != Invalid && next.Type != Pass
	}
	return canBeatCombination(IdentifyCombination(prevCards), next)
}

// canBeatCombination applies the ranking rules against a non-empty incumbent.
// Bombs with kickers get no bomb privileges: they only beat the same shape.
func canBeatCombination(prev, next CardCombination) bool {
	switch next.Type {
	case Pass:
		return true
	case Invalid:
		return false
	case Rocket:
		return prev.Type != Rocket
	case Bomb:
		switch prev.Type {
		case Rocket:
			return false
		case Bomb:
			return next.Value > prev.Value
		default:
			return true
		}
	}
	return next.Type == prev.Type && next.Count == prev.Count && next.Value > prev.Value
}
