package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// Card is a single suitless card. Its numeric value is also its rank power,
// so 3 is the weakest card and BigJoker the strongest.
type Card uint8

const (
	Three Card = iota + 3
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
	Two
	SmallJoker
	BigJoker
)

// PassCard is the sentinel token a player submits to decline a turn.
const PassCard Card = 0

// cardSlots sizes per-rank count arrays so a Card indexes them directly.
const cardSlots = int(BigJoker) + 1

// ErrUnknownCard is returned when a token does not name a card.
var ErrUnknownCard = errors.New("unknown card token")

var cardNames = map[Card]string{
	PassCard:   "PASS",
	Three:      "3",
	Four:       "4",
	Five:       "5",
	Six:        "6",
	Seven:      "7",
	Eight:      "8",
	Nine:       "9",
	Ten:        "10",
	Jack:       "J",
	Queen:      "Q",
	King:       "K",
	Ace:        "A",
	Two:        "2",
	SmallJoker: "SJ",
	BigJoker:   "BJ",
}

var cardAliases = map[string]Card{
	"PASS": PassCard,
	"3":    Three,
	"4":    Four,
	"5":    Five,
	"6":    Six,
	"7":    Seven,
	"8":    Eight,
	"9":    Nine,
	"10":   Ten,
	"T":    Ten,
	"J":    Jack,
	"Q":    Queen,
	"K":    King,
	"A":    Ace,
	"2":    Two,
	"SJ":   SmallJoker,
	"BJ":   BigJoker,
	"小王":   SmallJoker,
	"大王":   BigJoker,
}

// Valid reports whether c is a real card rank (the pass token is not).
func (c Card) Valid() bool {
	return c >= Three && c <= BigJoker
}

// Joker reports whether c is one of the two jokers.
func (c Card) Joker() bool {
	return c == SmallJoker || c == BigJoker
}

// Sequenceable reports whether c may appear inside a straight, consecutive
// pairs or an airplane. Twos and jokers never can.
func (c Card) Sequenceable() bool {
	return c >= Three && c <= Ace
}

func (c Card) String() string {
	if name, ok := cardNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Card(%d)", uint8(c))
}

// ParseCard converts a single token such as "10", "q", "SJ" or "PASS" to a Card.
func ParseCard(token string) (Card, error) {
	t := strings.ToUpper(strings.TrimSpace(token))
	if c, ok := cardAliases[t]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCard, token)
}

// ParseCards converts tokens to cards, failing on the first unknown token.
func ParseCards(tokens []string) ([]Card, error) {
	out := make([]Card, 0, len(tokens))
	for _, token := range tokens {
		c, err := ParseCard(token)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ParsePlay parses the tokens role submitted. An unknown token is reported
// as a *Rejection for an invalid shape, the same as an unplayable set.
func ParsePlay(role Role, tokens []string) ([]Card, error) {
	cards, err := ParseCards(tokens)
	if err != nil {
		return nil, &Rejection{Reason: fmt.Errorf("%w: %w", ErrInvalidShape, err), Role: role}
	}
	return cards, nil
}

// FormatCards renders cards as their display tokens.
func FormatCards(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// PassPlay returns the single-token play that declines a turn.
func PassPlay() []Card {
	return []Card{PassCard}
}

// IsPass reports whether cards is exactly the pass token.
func IsPass(cards []Card) bool {
	return len(cards) == 1 && cards[0] == PassCard
}

// NewDeck returns an ordered 54-card deck: four of each rank from 3 to 2 plus both jokers.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for c := Three; c <= Two; c++ {
		for i := 0; i < SuitsPerRank; i++ {
			deck = append(deck, c)
		}
	}
	return append(deck, SmallJoker, BigJoker)
}

// ShuffleDeck returns a shuffled copy of the given deck.
func ShuffleDeck(rng *rand.Rand, deck []Card) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// SortHand orders cards by ascending power.
func SortHand(cards []Card) {
	sort.Slice(cards, func(i, j int) bool { return cards[i] < cards[j] })
}
