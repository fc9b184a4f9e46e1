package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// SeatTicketRequest names the running match the caller is seated in.
type SeatTicketRequest struct {
	MatchID string `json:"match_id"`
}

// SeatTicketResponse carries a signed ticket the client presents as join
// metadata under SeatTicketMetadataKey when reconnecting.
type SeatTicketResponse struct {
	Ticket string `json:"ticket"`
}

// rpcSeatTicket asks the match, through MatchSignal, for a fresh ticket for
// the calling user.
//
// Payload: {"match_id": "..."}
func rpcSeatTicket(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("Authentication required", 16) // UNAUTHENTICATED
	}

	var req SeatTicketRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil || req.MatchID == "" {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}

	signal, _ := json.Marshal(seatTicketSignal{UserID: userID})
	token, err := nk.MatchSignal(ctx, req.MatchID, string(signal))
	if err != nil {
		logger.Error("rpcSeatTicket [User:%s]: Signal to match %s failed: %v", userID, req.MatchID, err)
		return "", runtime.NewError("Match not found", 5) // NOT_FOUND
	}
	if token == "" {
		return "", runtime.NewError("No seat to ticket", 9) // FAILED_PRECONDITION
	}

	resBytes, _ := json.Marshal(SeatTicketResponse{Ticket: token})
	return string(resBytes), nil
}
