package domain

import "strings"

// Hand is a multiset of cards stored as per-rank counts. Being an array it is
// comparable, so it can key maps when deduplicating plays.
type Hand [cardSlots]uint8

// NewHand builds a hand from the given cards. Invalid cards are ignored.
func NewHand(cards ...Card) Hand {
	var h Hand
	h.Add(cards...)
	return h
}

// Count returns how many copies of c the hand holds.
func (h Hand) Count(c Card) int {
	if !c.Valid() {
		return 0
	}
	return int(h[c])
}

// Len returns the total number of cards in the hand.
func (h Hand) Len() int {
	n := 0
	for c := Three; c <= BigJoker; c++ {
		n += int(h[c])
	}
	return n
}

// Empty reports whether the hand holds no cards.
func (h Hand) Empty() bool {
	return h.Len() == 0
}

// Add puts cards into the hand.
func (h *Hand) Add(cards ...Card) {
	for _, c := range cards {
		if c.Valid() {
			h[c]++
		}
	}
}

// Contains reports whether every card of the multiset is available in the hand.
// The pass token is always available.
func (h Hand) Contains(cards []Card) bool {
	if IsPass(cards) {
		return true
	}
	var need Hand
	for _, c := range cards {
		if !c.Valid() {
			return false
		}
		need[c]++
	}
	for c := Three; c <= BigJoker; c++ {
		if need[c] > h[c] {
			return false
		}
	}
	return true
}

// RemoveCards takes cards out of the hand. It leaves the hand untouched and
// returns false when the hand does not contain all of them.
func (h *Hand) RemoveCards(cards []Card) bool {
	if IsPass(cards) {
		return true
	}
	if !h.Contains(cards) {
		return false
	}
	for _, c := range cards {
		h[c]--
	}
	return true
}

// Cards lists the hand in ascending order.
func (h Hand) Cards() []Card {
	out := make([]Card, 0, h.Len())
	for c := Three; c <= BigJoker; c++ {
		for i := uint8(0); i < h[c]; i++ {
			out = append(out, c)
		}
	}
	return out
}

func (h Hand) String() string {
	return strings.Join(FormatCards(h.Cards()), " ")
}
