package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidShape    = errors.New("invalid card combination")
	ErrCardsNotInHand  = errors.New("cards not in hand")
	ErrPassNotAllowed  = errors.New("cannot pass with no combination in play")
	ErrDoesNotBeat     = errors.New("play does not beat the combination in play")
	ErrNotActingPlayer = errors.New("role is not the acting player")
	ErrNotPlaying      = errors.New("match not in playing phase")
)

// Rejection describes a refused play. A rejected play leaves the match untouched
// and the caller is expected to solicit another candidate.
type Rejection struct {
	Reason    error
	Role      Role
	Cards     []Card
	Incumbent []Card
}

func (r *Rejection) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v [%s]", r.Role, r.Reason, strings.Join(FormatCards(r.Cards), " "))
	if errors.Is(r.Reason, ErrDoesNotBeat) {
		fmt.Fprintf(&b, " against [%s]", strings.Join(FormatCards(r.Incumbent), " "))
	}
	return b.String()
}

func (r *Rejection) Unwrap() error {
	return r.Reason
}

// RejectionKind names the rejection class of err, or "" when err is not a rejection.
func RejectionKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidShape):
		return "InvalidShape"
	case errors.Is(err, ErrCardsNotInHand):
		return "CardsNotInHand"
	case errors.Is(err, ErrPassNotAllowed):
		return "PassNotAllowed"
	case errors.Is(err, ErrDoesNotBeat):
		return "DoesNotBeatIncumbent"
	case errors.Is(err, ErrNotActingPlayer):
		return "ActingPlayerMismatch"
	case errors.Is(err, ErrNotPlaying):
		return "NotPlaying"
	}
	return ""
}
