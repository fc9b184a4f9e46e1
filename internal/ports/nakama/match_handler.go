package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"doudizhu/internal/app"
	"doudizhu/internal/bot"
	"doudizhu/internal/config"
	"doudizhu/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	MatchLabelKey_OpenSeats = "open" // Key for the open seats in the match label

	// gameStartTurnTimerBonusSeconds gives players time to sort their hand
	// before the first turn clock runs.
	gameStartTurnTimerBonusSeconds = 5
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	MatchID              string                      `json:"match_id"`
	Seats                [domain.RoleCount]string    `json:"seats"`                   // Seat index equals role; empty string means seat is empty
	OwnerSeat            int                         `json:"owner_seat"`              // Seat index of the human allowed to start
	Tick                 int64                       `json:"tick"`
	Presences            map[string]runtime.Presence `json:"-"`                       // Map UserId -> Presence for targeted messaging
	App                  *app.Service                `json:"-"`
	Table                *app.Table                  `json:"-"`                       // Current match (nil while in lobby)
	Config               config.GameConfig           `json:"-"`
	BotsEnabled          bool                        `json:"bots_enabled"`
	BotLevel             bot.BotLevel                `json:"bot_level"`
	BotWaitUntil         int64                       `json:"bot_wait_until"`          // Tick when the bot should act
	LastSinglePlayerTick int64                       `json:"last_single_player_tick"` // Tick when a single player started waiting
	TurnDeadline         int64                       `json:"turn_deadline"`           // Tick at which a human turn falls back
	Bots                 map[string]*bot.Agent       `json:"-"`
	Tickets              *app.SeatTicketService      `json:"-"`                       // nil disables ticket rejoin
	PendingRejoin        map[string]domain.Role      `json:"-"`                       // Verified tickets awaiting MatchJoin
	UsedTickets          map[string]bool             `json:"-"`                       // Ticket IDs already spent on a rejoin
	rng                  *rand.Rand
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

func (ms *MatchState) playing() bool {
	return ms.Table != nil && ms.Table.Match.Phase() == domain.PhasePlaying
}

func (ms *MatchState) seatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat != "" && seat == userID {
			return i
		}
	}
	return -1
}

// connectedSeats blanks human seats whose presence is gone. Bots count as
// connected.
func (ms *MatchState) connectedSeats() []string {
	out := make([]string, len(ms.Seats))
	for i, seat := range ms.Seats {
		if _, ok := ms.Presences[seat]; ok || isBotUserId(seat) {
			out[i] = seat
		}
	}
	return out
}

func (ms *MatchState) random() *rand.Rand {
	if ms.rng == nil {
		ms.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return ms.rng
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

type matchHandler struct {
	cfg         config.GameConfig
	botsEnabled bool
	tickets     *app.SeatTicketService
}

func newMatchHandler(cfg config.GameConfig, botsEnabled bool, tickets *app.SeatTicketService) *matchHandler {
	return &matchHandler{cfg: cfg, botsEnabled: botsEnabled, tickets: tickets}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	level, err := bot.ParseBotLevel(mh.cfg.BotLevel)
	if err != nil {
		logger.Warn("MatchInit: %v, using smart bots", err)
		level = bot.BotLevelSmart
	}
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	state := &MatchState{
		MatchID:       matchID,
		Tick:          0,
		Presences:     make(map[string]runtime.Presence),
		App:           app.NewService(nil),
		OwnerSeat:     -1,
		Config:        mh.cfg,
		BotsEnabled:   mh.botsEnabled,
		BotLevel:      level,
		Bots:          make(map[string]*bot.Agent),
		Tickets:       mh.tickets,
		PendingRejoin: make(map[string]domain.Role),
		UsedTickets:   make(map[string]bool),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	label, err := encodeLabel(state.GetOpenSeatsCount(), "lobby")
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1 // one tick per second; timers below count ticks as seconds
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	userID := presence.GetUserId()

	if matchState.playing() {
		if matchState.seatOf(userID) >= 0 {
			return state, true, ""
		}
		token := metadata[SeatTicketMetadataKey]
		if token == "" {
			return state, false, "Match in progress"
		}
		ticket, err := matchState.verifyTicket(token)
		if err != nil {
			logger.Warn("MatchJoinAttempt: User %s presented a bad seat ticket: %v", userID, err)
			return state, false, "Invalid seat ticket"
		}
		matchState.UsedTickets[ticket.ID] = true
		matchState.PendingRejoin[userID] = ticket.Role
		return state, true, ""
	}

	// Allow join if there is an empty seat OR a bot to replace
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		for _, seat := range matchState.Seats {
			if isBotUserId(seat) {
				hasBot = true
				break
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

// verifyTicket accepts an unspent ticket issued by this match for a seat
// whose holder is currently disconnected.
func (ms *MatchState) verifyTicket(token string) (app.SeatTicket, error) {
	ticket, err := ms.Tickets.Verify(token)
	if err != nil {
		return app.SeatTicket{}, err
	}
	if ticket.MatchID != ms.MatchID {
		return app.SeatTicket{}, errors.New("ticket issued for another match")
	}
	if ms.UsedTickets[ticket.ID] {
		return app.SeatTicket{}, errors.New("ticket already used")
	}
	holder := ms.Seats[ticket.Role]
	if _, connected := ms.Presences[holder]; connected {
		return app.SeatTicket{}, errors.New("seat holder still connected")
	}
	if isBotUserId(holder) {
		return app.SeatTicket{}, errors.New("seat held by a bot")
	}
	return ticket, nil
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if matchState.playing() {
			if role, ok := matchState.PendingRejoin[userID]; ok {
				delete(matchState.PendingRejoin, userID)
				logger.Info("MatchJoin: User %s reclaimed seat %d from %s", userID, role, matchState.Seats[role])
				matchState.Seats[role] = userID
				matchState.Table.Seats[role] = userID
				mh.announceSeat(ctx, matchState, dispatcher, logger, int(role))
			}
			if seat := matchState.seatOf(userID); seat >= 0 {
				mh.sendHand(matchState, dispatcher, logger, domain.Role(seat))
			}
			continue
		}

		if matchState.seatOf(userID) >= 0 {
			continue
		}

		// Assign seat: Try empty seats first, then bots
		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = userID
				mh.announceSeat(ctx, matchState, dispatcher, logger, i)
				assigned = true
				break
			}
		}

		if !assigned {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, userID, i)
					delete(matchState.Bots, seatUserId)
					matchState.Seats[i] = userID
					mh.announceSeat(ctx, matchState, dispatcher, logger, i)
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
		}
	}

	// Ensure owner seat is assigned to a human player only.
	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match. During a
// game the seat is kept so the player can rejoin; the turn timer covers
// their turns meanwhile.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)
		delete(matchState.PendingRejoin, userID)

		seat := matchState.seatOf(userID)
		if seat < 0 {
			continue
		}
		if matchState.playing() {
			logger.Debug("MatchLeave: User %s disconnected from seat %d mid-game.", userID, seat)
		} else {
			matchState.Seats[seat] = ""
			logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, seat)
		}
		mh.broadcastEvent(ctx, matchState, dispatcher, logger, app.Event{
			Kind:    app.EventPlayerLeft,
			Payload: app.PlayerLeftPayload{UserID: userID},
		})
	}

	if shouldTerminateNoHumans(matchState.connectedSeats()) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	newOwnerSeat := findFirstHumanSeat(matchState.connectedSeats())
	if newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
		logger.Debug("MatchLeave: Owner set to human seat %d.", newOwnerSeat)
	}

	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick
	wasRunning := matchState.Table != nil

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCards:
			mh.handlePlayCards(ctx, matchState, dispatcher, logger, msg)
		case OpPassTurn:
			mh.handlePassTurn(ctx, matchState, dispatcher, logger, msg)
		case OpRequestHint:
			mh.handleHint(matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}
	mh.processTurnTimer(ctx, matchState, dispatcher, logger)

	// Everyone left during the game that just ended.
	if wasRunning && matchState.Table == nil && shouldTerminateNoHumans(matchState.connectedSeats()) {
		logger.Info("MatchLoop: Terminating match with no humans after game end.")
		return nil
	}

	return matchState
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill lobby with bots if there's only one human player after delay
	if state.Table == nil {
		if state.GetHumanPlayerCount() == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= int64(state.Config.BotAutoFillDelaySeconds) {
				added := false
				for i, seat := range state.Seats {
					if seat != "" {
						continue
					}
					identity := bot.GetBotIdentity(i)
					agent, err := bot.NewAgent(identity, state.BotLevel, state.random())
					if err != nil {
						logger.Error("processBots: Failed to create bot agent for %s: %v", identity.UserID, err)
						continue
					}
					state.Seats[i] = identity.UserID
					state.Bots[identity.UserID] = agent
					logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Username, identity.UserID, i)
				mh.announceSeat(ctx, state, dispatcher, logger, i)
					added = true
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastMatchState(state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
	}

	// 2. Handle bot turns in-game
	if !state.playing() {
		return
	}
	acting := state.Table.Match.Acting()
	currentUserID := state.Seats[acting]
	if !isBotUserId(currentUserID) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := state.Config.BotMinDelaySeconds
		if spread := state.Config.BotMaxDelaySeconds - state.Config.BotMinDelaySeconds; spread > 0 {
			delay += state.random().Intn(spread + 1)
		}
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot %s (%s) will act at tick %d (current %d)", currentUserID, acting, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[currentUserID]
	if !exists {
		identity, ok := bot.GetBotConfig(currentUserID)
		if !ok {
			identity = bot.BotIdentity{UserID: currentUserID}
		}
		var err error
		agent, err = bot.NewAgent(identity, state.BotLevel, state.random())
		if err != nil {
			logger.Error("processBots: Failed to create fallback agent: %v", err)
			return
		}
		state.Bots[currentUserID] = agent
	}

	move, err := agent.Play(state.Table.Match.Observe())
	if err != nil {
		logger.Warn("processBots: Bot %s strategy failed, playing random legal move: %v", currentUserID, err)
	}
	events, err := state.App.PlayCards(state.Table, currentUserID, move.Play())
	if err != nil {
		logger.Error("processBots: Bot %s move %v rejected: %v", currentUserID, move.Cards, err)
		events, err = state.App.ForceTimeout(state.Table, state.Config.Fallback)
		if err != nil {
			logger.Error("processBots: Fallback for bot %s failed: %v", currentUserID, err)
			return
		}
	}
	mh.dispatchTurn(ctx, state, dispatcher, logger, events)
}

// processTurnTimer plays the configured fallback for a human who let the
// turn clock run out, connected or not.
func (mh *matchHandler) processTurnTimer(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if !state.playing() || state.TurnDeadline == 0 {
		return
	}
	acting := state.Table.Match.Acting()
	if isBotUserId(state.Seats[acting]) || state.Tick < state.TurnDeadline {
		return
	}

	logger.Info("processTurnTimer: Turn expired for %s (%s), applying %s fallback", state.Seats[acting], acting, state.Config.Fallback)
	events, err := state.App.ForceTimeout(state.Table, state.Config.Fallback)
	if err != nil {
		logger.Error("processTurnTimer: Fallback failed: %v", err)
		return
	}
	mh.dispatchTurn(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) resetTurnSecondsRemainingWithBonus(state *MatchState, logger runtime.Logger, bonus int) {
	if !state.playing() {
		state.TurnDeadline = 0
		return
	}
	state.TurnDeadline = state.Tick + int64(state.Config.TurnDurationSeconds+bonus)
	logger.Debug("Turn for %s ends at tick %d", state.Table.Match.Acting(), state.TurnDeadline)
}

// dispatchTurn broadcasts the events of an accepted turn and restarts the clock.
func (mh *matchHandler) dispatchTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.resetTurnSecondsRemainingWithBonus(state, logger, 0)
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	players := make([]interface{}, 0, len(state.Seats))
	for i, userId := range state.Seats {
		if userId == "" {
			continue
		}

		displayName := userId
		if p, exists := state.Presences[userId]; exists {
			displayName = p.GetUsername()
		} else if name := bot.GetBotDisplayName(userId); name != "" {
			displayName = name
		}

		cardsRemaining := 0
		if state.Table != nil {
			cardsRemaining = state.Table.Match.Hand(domain.Role(i)).Len()
		}
		_, connected := state.Presences[userId]

		players = append(players, map[string]interface{}{
			"user_id":         userId,
			"seat":            i,
			"role":            domain.Role(i).String(),
			"is_owner":        i == state.OwnerSeat,
			"is_bot":          isBotUserId(userId),
			"connected":       connected || isBotUserId(userId),
			"cards_remaining": cardsRemaining,
			"display_name":    displayName,
		})
	}

	seats := make([]interface{}, len(state.Seats))
	for i, s := range state.Seats {
		seats[i] = s
	}
	data, err := marshalStruct(map[string]interface{}{
		"seats":      seats,
		"owner_seat": state.OwnerSeat,
		"tick":       state.Tick,
		"players":    players,
	})
	if err != nil {
		logger.Error("broadcastMatchState: Failed to marshal snapshot: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpPlayerJoined, data, nil, nil, true)
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if state.Table != nil {
		logger.Warn("StartGame: Match already running.")
		return
	}
	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}

	table, events, err := state.App.StartMatch(state.Seats[:])
	if err != nil {
		logger.Warn("StartGame: Cannot start with %d players: %v", state.GetOccupiedSeatCount(), err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	state.Table = table

	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	mh.issueSeatTickets(state, dispatcher, logger)
	mh.resetTurnSecondsRemainingWithBonus(state, logger, gameStartTurnTimerBonusSeconds)

	logger.Info("StartGame: Match %s started, landlord %s.", table.ID, table.UserAt(domain.Landlord))
}

func (mh *matchHandler) handlePlayCards(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if !state.playing() {
		logger.Warn("handlePlayCards: Game not started.")
		return
	}

	tokens, err := decodeCards(msg.GetData())
	if err != nil {
		logger.Error("handlePlayCards: Failed to decode request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "malformed play request")
		return
	}

	events, err := state.App.PlayTokens(state.Table, senderID, tokens)
	if err != nil {
		logger.Warn("handlePlayCards: User %s failed to play %v: %v", senderID, tokens, err)
		mh.reject(ctx, state, dispatcher, logger, senderID, err)
		return
	}
	mh.dispatchTurn(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handlePassTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if !state.playing() {
		logger.Warn("handlePassTurn: Game not started.")
		return
	}

	events, err := state.App.PassTurn(state.Table, senderID)
	if err != nil {
		logger.Warn("handlePassTurn: User %s failed to pass turn: %v", senderID, err)
		mh.reject(ctx, state, dispatcher, logger, senderID, err)
		return
	}
	mh.dispatchTurn(ctx, state, dispatcher, logger, events)
}

// handleHint sends the acting player its legal move count and the move a
// smart bot would make in its place.
func (mh *matchHandler) handleHint(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if !state.playing() {
		return
	}
	role, ok := state.Table.RoleOf(senderID)
	if !ok || role != state.Table.Match.Acting() {
		mh.sendError(state, dispatcher, logger, senderID, 409, "not your turn")
		return
	}

	obs := state.Table.Match.ObserveAs(role)
	brain, err := bot.NewBrain(bot.BotLevelSmart, state.random())
	if err != nil {
		logger.Error("handleHint: %v", err)
		return
	}
	move, err := brain.CalculateMove(obs)
	if err != nil {
		logger.Warn("handleHint: No suggestion for %s: %v", senderID, err)
	}

	data, err := marshalStruct(map[string]interface{}{
		"legal_moves": len(obs.LegalMoves),
		"pass":        move.Pass,
		"cards":       cardList(move.Cards),
	})
	if err != nil {
		logger.Error("handleHint: Failed to marshal hint: %v", err)
		return
	}
	mh.sendTo(state, dispatcher, logger, senderID, OpHint, data)
}

// reject reports a refused play to its sender. Rule rejections go out as
// play_rejected events; anything else as a generic error.
func (mh *matchHandler) reject(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, err error) {
	var rejection *domain.Rejection
	if errors.As(err, &rejection) {
		mh.broadcastEvent(ctx, state, dispatcher, logger, app.RejectedEvent(state.Table, userID, err))
		return
	}
	mh.sendError(state, dispatcher, logger, userID, 400, err.Error())
}

// announceSeat tells everyone who just took seat.
func (mh *matchHandler) announceSeat(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat int) {
	userID := state.Seats[seat]
	mh.broadcastEvent(ctx, state, dispatcher, logger, app.Event{
		Kind:    app.EventPlayerJoined,
		Payload: app.PlayerJoinedPayload{UserID: userID, Seat: seat, Bot: isBotUserId(userID)},
	})
}

// sendHand resends a reconnecting player's private hand.
func (mh *matchHandler) sendHand(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, role domain.Role) {
	userID := state.Seats[role]
	mh.broadcastEvent(context.Background(), state, dispatcher, logger, app.Event{
		Kind: app.EventHandDealt,
		Payload: app.HandDealtPayload{
			UserID: userID,
			Role:   role,
			Hand:   state.Table.Match.Hand(role).Cards(),
		},
		Recipients: []string{userID},
	})
}

func (mh *matchHandler) issueSeatTickets(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Tickets == nil {
		return
	}
	for i, userID := range state.Seats {
		if !isHumanSeat(state.Seats[:], i) {
			continue
		}
		token, err := state.Tickets.Issue(app.SeatTicket{UserID: userID, MatchID: state.MatchID, Role: domain.Role(i)})
		if err != nil {
			logger.Error("issueSeatTickets: Failed to issue ticket for %s: %v", userID, err)
			continue
		}
		data, err := marshalStruct(map[string]interface{}{"ticket": token, "role": domain.Role(i).String()})
		if err != nil {
			logger.Error("issueSeatTickets: Failed to marshal ticket: %v", err)
			continue
		}
		mh.sendTo(state, dispatcher, logger, userID, OpSeatTicket, data)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, data, err := encodeEvent(ev)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// Intended recipients that are not connected (bots, dropped players)
		// must not turn a private event into a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)

	if ev.Kind == app.EventMatchEnded {
		p := ev.Payload.(app.MatchEndedPayload)
		logger.Info("Match ended: %s (%s) wins for the %s", p.WinnerUserID, p.WinnerRole, p.WinningSide)
		mh.returnToLobby(state, dispatcher, logger)
	}
}

// returnToLobby clears the finished game and frees the seats of players who
// disconnected during it, so the next game is dealt only to those present.
func (mh *matchHandler) returnToLobby(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	state.Table = nil
	state.TurnDeadline = 0
	state.BotWaitUntil = 0
	state.LastSinglePlayerTick = 0
	state.PendingRejoin = make(map[string]domain.Role)

	for i, userID := range state.Seats {
		if userID == "" || isBotUserId(userID) {
			continue
		}
		if _, connected := state.Presences[userID]; !connected {
			logger.Debug("returnToLobby: Releasing seat %d held by absent user %s.", i, userID)
			state.Seats[i] = ""
		}
	}
	state.OwnerSeat = findFirstHumanSeat(state.Seats[:])

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastMatchState(state, dispatcher, logger)
}

func (mh *matchHandler) sendTo(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, opCode int64, data []byte) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Debug("Cannot send opcode %d to %s: Presence not found", opCode, userID)
		return
	}
	dispatcher.BroadcastMessage(opCode, data, []runtime.Presence{presence}, nil, true)
}

// sendError sends an error payload to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	data, err := marshalStruct(map[string]interface{}{
		"code":    code,
		"message": message,
	})
	if err != nil {
		logger.Error("Failed to marshal error payload: %v", err)
		return
	}
	mh.sendTo(state, dispatcher, logger, userID, OpGameError, data)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	phase := "lobby"
	if state.Table != nil {
		phase = "playing"
	}

	label, err := encodeLabel(state.GetOpenSeatsCount(), phase)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

// seatTicketSignal is the MatchSignal payload RpcSeatTicket sends.
type seatTicketSignal struct {
	UserID string `json:"user_id"`
}

// MatchSignal issues a fresh seat ticket for a seated user; see rpcSeatTicket.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	var signal seatTicketSignal
	if err := json.Unmarshal([]byte(data), &signal); err != nil {
		logger.Warn("MatchSignal: Bad payload: %v", err)
		return state, ""
	}
	seat := matchState.seatOf(signal.UserID)
	if seat < 0 || matchState.Tickets == nil || matchState.Table == nil {
		return state, ""
	}
	token, err := matchState.Tickets.Issue(app.SeatTicket{UserID: signal.UserID, MatchID: matchState.MatchID, Role: domain.Role(seat)})
	if err != nil {
		logger.Error("MatchSignal: Failed to issue ticket: %v", err)
		return state, ""
	}
	return state, token
}
