package nakama

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"doudizhu/internal/app"
	"doudizhu/internal/domain"
)

// Messages travel as google.protobuf.Struct so clients only need the
// well-known types to talk to the match.

func cardList(cards []domain.Card) []interface{} {
	out := make([]interface{}, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// decodeCards reads the "cards" token list of a PlayCards request.
func decodeCards(data []byte) ([]string, error) {
	request := &structpb.Struct{}
	if err := proto.Unmarshal(data, request); err != nil {
		return nil, err
	}
	list := request.GetFields()["cards"].GetListValue()
	if list == nil {
		return nil, fmt.Errorf("request has no cards list")
	}
	tokens := make([]string, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		s, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("card token %v is not a string", v)
		}
		tokens = append(tokens, s.StringValue)
	}
	return tokens, nil
}

func marshalStruct(fields map[string]interface{}) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// encodeLabel renders the match label Nakama indexes for MatchList queries.
func encodeLabel(open int, phase string) (string, error) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"game":  LabelGame,
		"open":  open,
		"phase": phase,
	})
	if err != nil {
		return "", err
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// encodeEvent maps an app event to its opcode and wire payload.
func encodeEvent(ev app.Event) (int64, []byte, error) {
	var opCode int64
	var fields map[string]interface{}

	switch p := ev.Payload.(type) {
	case app.PlayerJoinedPayload:
		opCode = OpSeatTaken
		fields = map[string]interface{}{"user_id": p.UserID, "seat": p.Seat, "bot": p.Bot}
	case app.PlayerLeftPayload:
		opCode = OpPlayerLeft
		fields = map[string]interface{}{"user_id": p.UserID}
	case app.MatchStartedPayload:
		opCode = OpMatchStarted
		seats := make([]interface{}, len(p.Seats))
		for i, s := range p.Seats {
			seats[i] = s
		}
		fields = map[string]interface{}{
			"table_id":           p.TableID,
			"phase":              string(p.Phase),
			"seats":              seats,
			"bottom":             cardList(p.Bottom),
			"first_turn_user_id": p.FirstTurnUserID,
		}
	case app.HandDealtPayload:
		opCode = OpHandDealt
		fields = map[string]interface{}{
			"user_id": p.UserID,
			"role":    p.Role.String(),
			"hand":    cardList(p.Hand),
		}
	case app.CardPlayedPayload:
		opCode = OpCardPlayed
		fields = map[string]interface{}{
			"user_id":           p.UserID,
			"role":              p.Role.String(),
			"type":              p.Combination.Type.String(),
			"cards":             cardList(p.Combination.Cards),
			"value":             int(p.Combination.Value),
			"cards_left":        p.CardsLeft,
			"next_turn_user_id": p.NextTurnUserID,
			"forced":            p.Forced,
		}
	case app.TurnPassedPayload:
		opCode = OpTurnPassed
		fields = map[string]interface{}{
			"user_id":           p.UserID,
			"role":              p.Role.String(),
			"new_round":         p.NewRound,
			"next_turn_user_id": p.NextTurnUserID,
			"forced":            p.Forced,
		}
	case app.PlayRejectedPayload:
		opCode = OpPlayRejected
		fields = map[string]interface{}{
			"user_id": p.UserID,
			"role":    p.Role.String(),
			"reason":  p.Reason,
			"detail":  p.Detail,
		}
	case app.MatchEndedPayload:
		opCode = OpMatchEnded
		remaining := make(map[string]interface{}, len(p.RemainingHands))
		for userID, cards := range p.RemainingHands {
			remaining[userID] = cardList(cards)
		}
		fields = map[string]interface{}{
			"winner_user_id":  p.WinnerUserID,
			"winner_role":     p.WinnerRole.String(),
			"winning_side":    p.WinningSide,
			"remaining_hands": remaining,
		}
	default:
		return 0, nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}

	data, err := marshalStruct(fields)
	if err != nil {
		return 0, nil, fmt.Errorf("encode %s: %w", ev.Kind, err)
	}
	return opCode, data, nil
}
