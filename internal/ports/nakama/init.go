package nakama

import (
	"context"
	"database/sql"
	"time"

	"doudizhu/internal/app"
	"doudizhu/internal/bot"
	"doudizhu/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("InitModule: Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if err := cfg.ApplyEnv(config.MapLookup(env)); err != nil {
		logger.Warn("InitModule: Ignoring malformed env override: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("InitModule: Invalid game config: %v", err)
		return err
	}
	botsEnabled := env[config.EnvBotsEnabled] == "true"

	var tickets *app.SeatTicketService
	if secret := env[config.EnvSeatTicketSecret]; secret != "" {
		tickets = app.NewSeatTicketService(secret, seatTicketIssuer, time.Duration(cfg.SeatTicketTTLSeconds)*time.Second)
	} else {
		logger.Warn("InitModule: %s not set, seat ticket rejoin disabled.", config.EnvSeatTicketSecret)
	}

	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	} else if err := bot.ProvisionBots(ctx, nk, logger); err != nil {
		logger.Warn("InitModule: Could not provision bots: %v", err)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameDoudizhu, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(cfg, botsEnabled, tickets), nil
	}); err != nil {
		return err
	}

	logger.Info("Doudizhu Go module loaded (bots=%t, bot_level=%s, fallback=%s).", botsEnabled, cfg.BotLevel, cfg.Fallback)
	return nil
}
