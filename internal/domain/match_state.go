package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// ErrBadDeck is returned when a deck handed to DealFrom is not a full deck.
var ErrBadDeck = errors.New("deck is not a complete 54-card deck")

// PlayRecord is one accepted turn, appended to the history in turn order.
type PlayRecord struct {
	Role        Role
	Combination CardCombination // Type Pass for a declined turn
	Round       int
}

func (p PlayRecord) String() string {
	return fmt.Sprintf("%s: %s", p.Role, p.Combination)
}

// Match holds the authoritative state of one deal. It is not safe for
// concurrent use; hosts serialize calls per match.
type Match struct {
	phase         Phase
	hands         [RoleCount]Hand
	bottom        []Card
	acting        Role
	incumbent     []Card // empty means the acting role leads freely
	incumbentRole Role
	passes        int
	round         int
	history       []PlayRecord
	winner        Role
}

// NewMatch returns a match waiting to be dealt.
func NewMatch() *Match {
	return &Match{phase: PhaseDealing}
}

// NewMatchFromHands starts a match from fixed hands, with acting to move first.
// It exists for replays and tests; the bottom is informational only.
func NewMatchFromHands(hands [RoleCount]Hand, bottom []Card, acting Role) *Match {
	return &Match{
		phase:  PhasePlaying,
		hands:  hands,
		bottom: append([]Card(nil), bottom...),
		acting: acting,
	}
}

// Deal shuffles a fresh deck with rng and distributes it, resetting any
// previous state.
func (m *Match) Deal(rng *rand.Rand) {
	// A shuffled NewDeck is always complete.
	_ = m.DealFrom(ShuffleDeck(rng, NewDeck()))
}

// DealFrom distributes deck in order: the Landlord, FarmerA and FarmerB take
// 17 cards each and the final 3 form the bottom, which joins the Landlord's hand.
func (m *Match) DealFrom(deck []Card) error {
	if len(deck) != DeckSize || NewHand(deck...) != NewHand(NewDeck()...) {
		return ErrBadDeck
	}

	*m = Match{phase: PhaseDealing}
	for r := Landlord; r <= FarmerB; r++ {
		m.hands[r] = NewHand(deck[int(r)*HandSize : int(r+1)*HandSize]...)
	}
	m.bottom = append([]Card(nil), deck[DeckSize-BottomSize:]...)
	SortHand(m.bottom)
	m.hands[Landlord].Add(m.bottom...)

	m.acting = Landlord
	m.phase = PhasePlaying
	return nil
}

// Phase returns the lifecycle stage.
func (m *Match) Phase() Phase { return m.phase }

// Acting returns the role whose turn it is.
func (m *Match) Acting() Role { return m.acting }

// Hand returns a copy of the role's hand, empty for an unknown role.
func (m *Match) Hand(r Role) Hand {
	if !r.Valid() {
		return Hand{}
	}
	return m.hands[r]
}

// Bottom returns the reserve cards revealed at deal time.
func (m *Match) Bottom() []Card { return append([]Card(nil), m.bottom...) }

// Incumbent returns the combination in play, or nil when the acting role leads.
func (m *Match) Incumbent() []Card { return append([]Card(nil), m.incumbent...) }

// IncumbentRole returns who played the combination in play.
func (m *Match) IncumbentRole() (Role, bool) {
	return m.incumbentRole, len(m.incumbent) > 0
}

// Passes returns the consecutive pass counter.
func (m *Match) Passes() int { return m.passes }

// Round returns how many tricks have been cleared by consecutive passes.
func (m *Match) Round() int { return m.round }

// History returns a copy of the accepted plays in order.
func (m *Match) History() []PlayRecord {
	out := make([]PlayRecord, len(m.history))
	for i, rec := range m.history {
		rec.Combination.Cards = append([]Card(nil), rec.Combination.Cards...)
		out[i] = rec
	}
	return out
}

// IsFinished reports whether any hand has been emptied.
func (m *Match) IsFinished() bool {
	return m.phase == PhaseFinished
}

// Winner returns the role that emptied its hand first.
func (m *Match) Winner() (Role, bool) {
	return m.winner, m.phase == PhaseFinished
}

// Clone returns a deep copy that can be mutated independently.
func (m *Match) Clone() *Match {
	c := *m
	c.bottom = append([]Card(nil), m.bottom...)
	c.incumbent = append([]Card(nil), m.incumbent...)
	c.history = m.History()
	return &c
}

// ApplyPlay validates and applies one turn for role. Checks run in order and
// stop at the first failure: shape, ownership, leading pass, beat relation.
// A rejection is returned as *Rejection and leaves the match unchanged.
// Accepted turns always hand the move to the next role.
func (m *Match) ApplyPlay(role Role, cards []Card) (PlayRecord, error) {
	reject := func(reason error) (PlayRecord, error) {
		return PlayRecord{}, &Rejection{
			Reason:    reason,
			Role:      role,
			Cards:     append([]Card(nil), cards...),
			Incumbent: m.Incumbent(),
		}
	}

	if m.phase != PhasePlaying {
		return reject(ErrNotPlaying)
	}
	if role != m.acting {
		return reject(ErrNotActingPlayer)
	}

	combo := IdentifyCombination(cards)
	if combo.Type == Invalid {
		return reject(ErrInvalidShape)
	}
	if !m.hands[role].Contains(cards) {
		return reject(ErrCardsNotInHand)
	}
	leading := len(m.incumbent) == 0
	if leading && combo.Type == Pass {
		return reject(ErrPassNotAllowed)
	}
	if !leading && !canBeatCombination(IdentifyCombination(m.incumbent), combo) {
		return reject(ErrDoesNotBeat)
	}

	record := PlayRecord{Role: role, Combination: combo, Round: m.round}
	record.Combination.Cards = append([]Card(nil), combo.Cards...)
	m.history = append(m.history, record)

	if combo.Type == Pass {
		m.passes++
		if m.passes >= passesToClearRound {
			m.incumbent = nil
			m.passes = 0
			m.round++
		}
	} else {
		m.incumbent = append([]Card(nil), combo.Cards...)
		m.incumbentRole = role
		m.passes = 0
		m.hands[role].RemoveCards(combo.Cards)
		if m.hands[role].Empty() {
			m.phase = PhaseFinished
			m.winner = role
		}
	}

	m.acting = role.Next()
	return record, nil
}

// Observation is a read-only snapshot of the match from one role's seat.
type Observation struct {
	Role          Role
	Phase         Phase
	Acting        Role
	Hand          []Card
	LegalMoves    []CardCombination // populated only when Role is acting
	History       []PlayRecord
	Incumbent     []Card
	IncumbentRole Role
	HandCounts    [RoleCount]int
	Bottom        []Card
	Round         int
	Passes        int
	State         string
}

// Leading reports whether the observed position has nothing in play.
func (o Observation) Leading() bool {
	return len(o.Incumbent) == 0
}

// Observe snapshots the match for the acting role, including its legal moves.
func (m *Match) Observe() Observation {
	return m.ObserveAs(m.acting)
}

// ObserveAs snapshots the match from role's seat. Other hands are only
// exposed as card counts. An unknown role sees no hand.
func (m *Match) ObserveAs(role Role) Observation {
	obs := Observation{
		Role:          role,
		Phase:         m.phase,
		Acting:        m.acting,
		Hand:          m.Hand(role).Cards(),
		History:       m.History(),
		Incumbent:     m.Incumbent(),
		IncumbentRole: m.incumbentRole,
		Bottom:        m.Bottom(),
		Round:         m.round,
		Passes:        m.passes,
		State:         m.Summary(),
	}
	for r := Landlord; r <= FarmerB; r++ {
		obs.HandCounts[r] = m.hands[r].Len()
	}
	if role == m.acting && m.phase == PhasePlaying {
		obs.LegalMoves = GetValidMoves(m.hands[role], m.incumbent)
	}
	return obs
}

// Summary renders the public state: the bottom cards and each role's card count.
func (m *Match) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bottom: [%s]", strings.Join(FormatCards(m.bottom), " "))
	for r := Landlord; r <= FarmerB; r++ {
		fmt.Fprintf(&b, "; %s %d cards", r, m.hands[r].Len())
	}
	return b.String()
}
