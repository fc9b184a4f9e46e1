package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcSeatTicket, rpcSeatTicket)
}

// quickMatchQuery selects lobbies of this game with at least one open seat.
func quickMatchQuery() string {
	return fmt.Sprintf("+label.game:%s +label.phase:lobby +label.%s:>=1", LabelGame, MatchLabelKey_OpenSeats)
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	limit := 10
	authoritative := true
	minSize := 1
	maxSize := 2 // a third player fills the table

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery())
	if err != nil {
		logger.Error("rpcQuickMatch [User:%s]: Failed to list matches: %v", userID, err)
		return "", err
	}

	if len(matches) > 0 {
		logger.Info("rpcQuickMatch [User:%s]: Found existing match %s", userID, matches[0].MatchId)
		return marshalQuickMatch(QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false})
	}

	// Create new match; seat/owner assignment happens in MatchJoin (server-authoritative).
	matchID, err := nk.MatchCreate(ctx, MatchNameDoudizhu, map[string]interface{}{})
	if err != nil {
		logger.Error("rpcQuickMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}

	logger.Info("rpcQuickMatch [User:%s]: Created new match %s", userID, matchID)
	return marshalQuickMatch(QuickMatchResponse{MatchID: matchID, IsNew: true})
}

func marshalQuickMatch(resp QuickMatchResponse) (string, error) {
	b, err := json.Marshal(resp)
	if err != nil {
		return "", runtime.NewError("Internal error", 13)
	}
	return string(b), nil
}
