package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/form3tech-oss/jwt-go"

	"doudizhu/internal/domain"
)

var ErrInvalidSeatTicket = errors.New("invalid seat ticket")

// SeatTicket is what a signed ticket proves: userID owns role in matchID.
// The ticket is a bearer credential. Whoever presents it may take the seat,
// whatever account they connect with, so a player can rejoin from another
// device. The match consumes ID on rejoin so each ticket works once.
type SeatTicket struct {
	ID      string // jti, set by Verify
	UserID  string
	MatchID string
	Role    domain.Role
}

// SeatTicketService signs and verifies the HS256 tickets a client presents
// to rejoin its seat after a disconnect.
type SeatTicketService struct {
	secret string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewSeatTicketService(secret, issuer string, ttl time.Duration) *SeatTicketService {
	return &SeatTicketService{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *SeatTicketService) Issue(ticket SeatTicket) (string, error) {
	if s == nil {
		return "", fmt.Errorf("seat ticket service is nil")
	}
	if s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("seat ticket config is incomplete")
	}
	if ticket.UserID == "" || ticket.MatchID == "" {
		return "", fmt.Errorf("user and match are required")
	}
	if !ticket.Role.Valid() {
		return "", fmt.Errorf("invalid role %v", ticket.Role)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss":  s.issuer,
		"sub":  ticket.UserID,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
		"mid":  ticket.MatchID,
		"role": ticket.Role.String(),
		"jti":  fmt.Sprintf("%d-%d", now.UnixNano(), rand.Int63()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify checks the signature, expiry and issuer of tokenString and returns
// the seat it grants.
func (s *SeatTicketService) Verify(tokenString string) (SeatTicket, error) {
	if s == nil || s.secret == "" {
		return SeatTicket{}, fmt.Errorf("%w: service not configured", ErrInvalidSeatTicket)
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return SeatTicket{}, fmt.Errorf("%w: %v", ErrInvalidSeatTicket, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return SeatTicket{}, ErrInvalidSeatTicket
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return SeatTicket{}, fmt.Errorf("%w: wrong issuer", ErrInvalidSeatTicket)
	}

	jti, _ := claims["jti"].(string)
	sub, _ := claims["sub"].(string)
	mid, _ := claims["mid"].(string)
	roleName, _ := claims["role"].(string)
	role, err := domain.ParseRole(roleName)
	if err != nil || jti == "" || sub == "" || mid == "" {
		return SeatTicket{}, fmt.Errorf("%w: incomplete claims", ErrInvalidSeatTicket)
	}
	return SeatTicket{ID: jti, UserID: sub, MatchID: mid, Role: role}, nil
}
