package app

import (
	"testing"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doudizhu/internal/domain"
)

func TestSeatTicketRoundTrip(t *testing.T) {
	svc := NewSeatTicketService("test-secret", "doudizhu", time.Hour)
	want := SeatTicket{UserID: "user123", MatchID: "match-456.nakama", Role: domain.FarmerB}

	token, err := svc.Issue(want)
	require.NoError(t, err)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	got.ID = ""
	assert.Equal(t, want, got)

	again, err := svc.Issue(want)
	require.NoError(t, err)
	other, err := svc.Verify(again)
	require.NoError(t, err)
	assert.NotEqual(t, other.ID, got.ID, "each ticket carries its own id")

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "farmer_b", claims["role"])
	assert.Equal(t, "doudizhu", claims["iss"])
}

func TestSeatTicketRejections(t *testing.T) {
	svc := NewSeatTicketService("test-secret", "doudizhu", time.Hour)
	ticket := SeatTicket{UserID: "user123", MatchID: "m1", Role: domain.Landlord}
	token, err := svc.Issue(ticket)
	require.NoError(t, err)

	_, err = NewSeatTicketService("other-secret", "doudizhu", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSeatTicket)

	_, err = NewSeatTicketService("test-secret", "someone-else", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSeatTicket)

	expired, err := NewSeatTicketService("test-secret", "doudizhu", -time.Minute).Issue(ticket)
	require.NoError(t, err)
	_, err = svc.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidSeatTicket)

	_, err = svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSeatTicket)
}

func TestSeatTicketIssueRequiresConfig(t *testing.T) {
	_, err := NewSeatTicketService("", "doudizhu", time.Hour).Issue(SeatTicket{UserID: "u", MatchID: "m"})
	assert.Error(t, err)

	_, err = NewSeatTicketService("secret", "doudizhu", time.Hour).Issue(SeatTicket{MatchID: "m"})
	assert.Error(t, err)

	_, err = NewSeatTicketService("secret", "doudizhu", time.Hour).Issue(SeatTicket{UserID: "u", MatchID: "m", Role: domain.Role(7)})
	assert.Error(t, err)
}
