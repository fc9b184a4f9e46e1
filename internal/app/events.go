package app

import "doudizhu/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventPlayerJoined EventKind = "player_joined"
	EventPlayerLeft   EventKind = "player_left"
	EventMatchStarted EventKind = "match_started"
	EventHandDealt    EventKind = "hand_dealt"
	EventCardPlayed   EventKind = "card_played"
	EventTurnPassed   EventKind = "turn_passed"
	EventPlayRejected EventKind = "play_rejected"
	EventMatchEnded   EventKind = "match_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID string
	Seat   int
	Bot    bool
}

type PlayerLeftPayload struct {
	UserID string
}

type MatchStartedPayload struct {
	TableID         string
	Phase           domain.Phase
	Seats           [domain.RoleCount]string
	Bottom          []domain.Card
	FirstTurnUserID string
}

type HandDealtPayload struct {
	UserID string
	Role   domain.Role
	Hand   []domain.Card
}

type CardPlayedPayload struct {
	UserID         string
	Role           domain.Role
	Combination    domain.CardCombination
	CardsLeft      int
	NextTurnUserID string
	Forced         bool
}

type TurnPassedPayload struct {
	UserID         string
	Role           domain.Role
	NewRound       bool
	NextTurnUserID string
	Forced         bool
}

type PlayRejectedPayload struct {
	UserID string
	Role   domain.Role
	Reason string
	Detail string
}

type MatchEndedPayload struct {
	WinnerUserID string
	WinnerRole   domain.Role
	WinningSide  string
	// RemainingHands reveals what every role still held, keyed by user ID.
	RemainingHands map[string][]domain.Card
}
