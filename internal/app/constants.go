package app

import "doudizhu/internal/domain"

// MinPlayersToStartGame defines how many occupied seats a table needs before dealing.
// Every Doudizhu role must be filled, by a human or a bot.
const MinPlayersToStartGame = domain.RoleCount

// Winning sides reported in MatchEndedPayload.
const (
	SideLandlord = "landlord"
	SideFarmers  = "farmers"
)
