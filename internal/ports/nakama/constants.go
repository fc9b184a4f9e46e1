package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"
	// RpcSeatTicket returns a signed ticket that lets the caller reclaim its seat after a disconnect.
	RpcSeatTicket = "seat_ticket"

	// MatchNameDoudizhu is the authoritative match handler name registered with Nakama.
	MatchNameDoudizhu = "doudizhu_match"

	// LabelGame is the "game" value every Doudizhu match label carries.
	LabelGame = "doudizhu"

	// SeatTicketMetadataKey is the join metadata key a rejoining client puts its ticket under.
	SeatTicketMetadataKey = "seat_ticket"

	seatTicketIssuer = "doudizhu"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame   int64 = 1
	OpPlayCards   int64 = 2
	OpPassTurn    int64 = 3
	OpRequestHint int64 = 4

	// Server -> Client events
	OpPlayerJoined int64 = 101 // match state snapshot
	OpPlayerLeft   int64 = 102
	OpMatchStarted int64 = 103
	OpHandDealt    int64 = 104 // send privately
	OpCardPlayed   int64 = 105
	OpTurnPassed   int64 = 106
	OpMatchEnded   int64 = 107
	OpPlayRejected int64 = 108 // send privately
	OpHint         int64 = 109 // send privately
	OpSeatTicket   int64 = 110 // send privately
	OpSeatTaken    int64 = 111 // player_joined event
	OpGameError    int64 = 199
)
