package domain

const (
	// DeckSize is the number of cards in a full deck including both jokers.
	DeckSize = 54
	// SuitsPerRank is how many copies of each non-joker rank a deck holds.
	SuitsPerRank = 4
	// HandSize is the number of cards every role is dealt before the bottom is revealed.
	HandSize = 17
	// BottomSize is the number of reserve cards handed to the Landlord.
	BottomSize = 3
	// RoleCount is the number of seats at a table.
	RoleCount = 3

	minStraightLen        = 5
	minConsecutivePairLen = 3
	minAirplaneLen        = 2

	// passesToClearRound is how many consecutive passes end a trick.
	passesToClearRound = 2
)
