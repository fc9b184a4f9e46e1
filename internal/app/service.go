package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"doudizhu/internal/config"
	"doudizhu/internal/domain"
)

// Service contains Doudizhu use-cases operating on domain state.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrNotPlaying      = errors.New("match not in playing phase")
	ErrTooFewPlayers   = errors.New("not enough players to start")
	ErrDuplicatePlayer = errors.New("player seated twice")
	ErrUnknownPlayer   = errors.New("player not found")
	ErrNoProposer      = errors.New("no proposer for acting role")
)

// Table binds the three roles of one match to user IDs. Seat index equals
// role: seat 0 is the Landlord.
type Table struct {
	ID    string
	Seats [domain.RoleCount]string
	Match *domain.Match
}

// RoleOf returns the role seated for userID.
func (t *Table) RoleOf(userID string) (domain.Role, bool) {
	for i, id := range t.Seats {
		if id != "" && id == userID {
			return domain.Role(i), true
		}
	}
	return 0, false
}

// UserAt returns the user ID seated in role.
func (t *Table) UserAt(role domain.Role) string {
	if !role.Valid() {
		return ""
	}
	return t.Seats[role]
}

// TurnPolicy bounds how long ResolveTurn waits on a proposer before
// substituting a fallback play.
type TurnPolicy struct {
	MaxRetries int
	Fallback   config.FallbackPolicy
}

// Proposer produces a candidate play for the acting role. lastErr carries
// the previous rejection, if any, so the proposer can correct itself.
type Proposer interface {
	ProposePlay(ctx context.Context, obs domain.Observation, lastErr error) ([]domain.Card, error)
}

// ProposerFunc adapts a function to Proposer.
type ProposerFunc func(ctx context.Context, obs domain.Observation, lastErr error) ([]domain.Card, error)

func (f ProposerFunc) ProposePlay(ctx context.Context, obs domain.Observation, lastErr error) ([]domain.Card, error) {
	return f(ctx, obs, lastErr)
}

// StartMatch deals a new match for the given players in seat order. The
// first seat is the Landlord; landlord assignment is fixed.
func (s *Service) StartMatch(playerIDs []string) (*Table, []Event, error) {
	table := &Table{ID: uuid.NewString()}
	seated := 0
	for _, userID := range playerIDs {
		if userID == "" {
			continue
		}
		if seated == MinPlayersToStartGame {
			break
		}
		if _, dup := table.RoleOf(userID); dup {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, userID)
		}
		table.Seats[seated] = userID
		seated++
	}
	if seated < MinPlayersToStartGame {
		return nil, nil, ErrTooFewPlayers
	}

	table.Match = domain.NewMatch()
	table.Match.Deal(s.rng)

	events := make([]Event, 0, domain.RoleCount+1)
	for r := domain.Landlord; r <= domain.FarmerB; r++ {
		userID := table.Seats[r]
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				UserID: userID,
				Role:   r,
				Hand:   table.Match.Hand(r).Cards(),
			},
			Recipients: []string{userID},
		})
	}
	events = append(events, Event{
		Kind: EventMatchStarted,
		Payload: MatchStartedPayload{
			TableID:         table.ID,
			Phase:           table.Match.Phase(),
			Seats:           table.Seats,
			Bottom:          table.Match.Bottom(),
			FirstTurnUserID: table.UserAt(table.Match.Acting()),
		},
	})
	return table, events, nil
}

// Observe returns the match as seen from userID's seat.
func (s *Service) Observe(t *Table, userID string) (domain.Observation, error) {
	role, ok := t.RoleOf(userID)
	if !ok {
		return domain.Observation{}, ErrUnknownPlayer
	}
	return t.Match.ObserveAs(role), nil
}

// PlayCards processes a play (or a pass) from actorUserID and emits the
// resulting events. Rejections are returned as *domain.Rejection.
func (s *Service) PlayCards(t *Table, actorUserID string, cards []domain.Card) ([]Event, error) {
	role, ok := t.RoleOf(actorUserID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	return s.apply(t, role, cards, false)
}

// PlayTokens parses card tokens and plays them. An unknown token is
// rejected as an invalid shape rather than surfaced as a parse error.
func (s *Service) PlayTokens(t *Table, actorUserID string, tokens []string) ([]Event, error) {
	role, ok := t.RoleOf(actorUserID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	cards, err := domain.ParsePlay(role, tokens)
	if err != nil {
		return nil, err
	}
	return s.apply(t, role, cards, false)
}

// PassTurn marks a player's pass action.
func (s *Service) PassTurn(t *Table, actorUserID string) ([]Event, error) {
	return s.PlayCards(t, actorUserID, domain.PassPlay())
}

// ResolveTurn drives one turn: it asks proposer for a play, retries with
// the rejection up to policy.MaxRetries times and then applies the
// fallback policy. Rejected attempts are reported to the acting user as
// EventPlayRejected.
func (s *Service) ResolveTurn(ctx context.Context, t *Table, proposer Proposer, policy TurnPolicy) ([]Event, error) {
	if t.Match.Phase() != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	if proposer == nil {
		return nil, ErrNoProposer
	}
	role := t.Match.Acting()

	var events []Event
	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		var rejection *domain.Rejection
		cards, err := proposer.ProposePlay(ctx, t.Match.Observe(), lastErr)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return events, ctxErr
			}
			lastErr = err
			// A proposal that could not be read as cards counts as a rejected play.
			if errors.As(err, &rejection) {
				events = append(events, rejectedEvent(t, role, err))
			}
			continue
		}
		evs, err := s.apply(t, role, cards, false)
		if err == nil {
			return append(events, evs...), nil
		}
		if !errors.As(err, &rejection) {
			return events, err
		}
		lastErr = err
		events = append(events, rejectedEvent(t, role, err))
	}

	evs, err := s.ForceTimeout(t, policy.Fallback)
	return append(events, evs...), err
}

// ForceTimeout plays the fallback move for the acting role, for hosts whose
// turn timer expired or whose proposer ran out of retries.
func (s *Service) ForceTimeout(t *Table, policy config.FallbackPolicy) ([]Event, error) {
	if t.Match.Phase() != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	obs := t.Match.Observe()
	return s.apply(t, obs.Role, FallbackPlay(obs, policy, s.rng), true)
}

// FallbackPlay picks a legal play for obs according to policy.
func FallbackPlay(obs domain.Observation, policy config.FallbackPolicy, rng *rand.Rand) []domain.Card {
	moves := obs.LegalMoves
	if len(moves) == 0 {
		moves = domain.GetValidMoves(domain.NewHand(obs.Hand...), obs.Incumbent)
	}
	if len(moves) == 0 {
		return domain.PassPlay()
	}

	switch policy {
	case config.FallbackPass:
		if !obs.Leading() {
			return domain.PassPlay()
		}
		return lowestPlay(moves)
	case config.FallbackLowest:
		return lowestPlay(moves)
	default:
		pick := moves[rng.Intn(len(moves))]
		if pick.Type == domain.Pass {
			return domain.PassPlay()
		}
		return pick.Cards
	}
}

func lowestPlay(moves []domain.CardCombination) []domain.Card {
	if lowest, ok := domain.LowestMove(moves); ok {
		return lowest.Cards
	}
	return domain.PassPlay()
}

func (s *Service) apply(t *Table, role domain.Role, cards []domain.Card, forced bool) ([]Event, error) {
	roundBefore := t.Match.Round()
	record, err := t.Match.ApplyPlay(role, cards)
	if err != nil {
		return nil, err
	}

	userID := t.UserAt(role)
	next := t.UserAt(t.Match.Acting())
	var events []Event
	if record.Combination.Type == domain.Pass {
		events = append(events, Event{
			Kind: EventTurnPassed,
			Payload: TurnPassedPayload{
				UserID:         userID,
				Role:           role,
				NewRound:       t.Match.Round() != roundBefore,
				NextTurnUserID: next,
				Forced:         forced,
			},
		})
		return events, nil
	}

	events = append(events, Event{
		Kind: EventCardPlayed,
		Payload: CardPlayedPayload{
			UserID:         userID,
			Role:           role,
			Combination:    record.Combination,
			CardsLeft:      t.Match.Hand(role).Len(),
			NextTurnUserID: next,
			Forced:         forced,
		},
	})

	if winner, ok := t.Match.Winner(); ok {
		events = append(events, Event{
			Kind:    EventMatchEnded,
			Payload: matchEndedPayload(t, winner),
		})
	}
	return events, nil
}

func matchEndedPayload(t *Table, winner domain.Role) MatchEndedPayload {
	side := SideFarmers
	if winner == domain.Landlord {
		side = SideLandlord
	}
	remaining := make(map[string][]domain.Card, domain.RoleCount)
	for r := domain.Landlord; r <= domain.FarmerB; r++ {
		remaining[t.UserAt(r)] = t.Match.Hand(r).Cards()
	}
	return MatchEndedPayload{
		WinnerUserID:   t.UserAt(winner),
		WinnerRole:     winner,
		WinningSide:    side,
		RemainingHands: remaining,
	}
}

func rejectedEvent(t *Table, role domain.Role, err error) Event {
	userID := t.UserAt(role)
	return Event{
		Kind: EventPlayRejected,
		Payload: PlayRejectedPayload{
			UserID: userID,
			Role:   role,
			Reason: domain.RejectionKind(err),
			Detail: err.Error(),
		},
		Recipients: []string{userID},
	}
}

// RejectedEvent wraps a rejection returned by PlayCards for delivery to the
// offending user.
func RejectedEvent(t *Table, userID string, err error) Event {
	role, _ := t.RoleOf(userID)
	return rejectedEvent(t, role, err)
}
