package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// FallbackPolicy names what a host plays for a role that failed to produce a
// legal play in time or within the retry budget.
type FallbackPolicy string

const (
	// FallbackRandom plays a uniformly chosen legal move.
	FallbackRandom FallbackPolicy = "random"
	// FallbackPass passes when allowed and otherwise plays the lowest legal move.
	FallbackPass FallbackPolicy = "pass"
	// FallbackLowest always plays the lowest legal non-pass move.
	FallbackLowest FallbackPolicy = "lowest"
)

type GameConfig struct {
	TurnDurationSeconds int `json:"turn_duration_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before filling a solo human lobby with bots.
	BotAutoFillDelaySeconds int            `json:"bot_auto_fill_delay_seconds"`
	BotMinDelaySeconds      int            `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds      int            `json:"bot_max_delay_seconds"`
	BotLevel                string         `json:"bot_level"`
	MaxProposalRetries      int            `json:"max_proposal_retries"`
	Fallback                FallbackPolicy `json:"fallback"`
	SeatTicketTTLSeconds    int            `json:"seat_ticket_ttl_seconds"`
}

// Default returns the configuration used when no file is present.
func Default() GameConfig {
	return GameConfig{
		TurnDurationSeconds:     20,
		BotAutoFillDelaySeconds: 5,
		BotMinDelaySeconds:      1,
		BotMaxDelaySeconds:      3,
		BotLevel:                "smart",
		MaxProposalRetries:      3,
		Fallback:                FallbackRandom,
		SeatTicketTTLSeconds:    3600,
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path. Missing
// fields keep their defaults.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c := Default()
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		if err := c.Validate(); err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or the defaults when
// none was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Default()
	}
	return *cfg
}

// Validate rejects settings the match loop cannot run with.
func (c GameConfig) Validate() error {
	if c.TurnDurationSeconds <= 0 {
		return fmt.Errorf("turn_duration_seconds must be positive, got %d", c.TurnDurationSeconds)
	}
	if c.BotMinDelaySeconds < 0 || c.BotMaxDelaySeconds < c.BotMinDelaySeconds {
		return fmt.Errorf("invalid bot delay range [%d, %d]", c.BotMinDelaySeconds, c.BotMaxDelaySeconds)
	}
	if c.MaxProposalRetries < 0 {
		return fmt.Errorf("max_proposal_retries must not be negative, got %d", c.MaxProposalRetries)
	}
	switch c.Fallback {
	case FallbackRandom, FallbackPass, FallbackLowest:
	default:
		return fmt.Errorf("unknown fallback policy %q", c.Fallback)
	}
	return nil
}

// Env keys understood by ApplyEnv.
const (
	EnvTurnDuration     = "ddz_turn_duration_sec"
	EnvBotsEnabled      = "ddz_bots_enabled"
	EnvBotMinDelay      = "ddz_bot_min_delay_sec"
	EnvBotMaxDelay      = "ddz_bot_max_delay_sec"
	EnvBotAutoFillDelay = "ddz_bot_auto_fill_delay_sec"
	EnvBotLevel         = "ddz_bot_level"
	EnvMaxRetries       = "ddz_max_proposal_retries"
	EnvFallback         = "ddz_fallback"
	EnvSeatTicketSecret = "ddz_seat_ticket_secret"
	EnvSeatTicketTTL    = "ddz_seat_ticket_ttl_sec"
)

// ApplyEnv overrides fields from a key lookup such as the Nakama runtime env
// map or os.LookupEnv. Unparseable integers are reported and skipped.
func (c *GameConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := []struct {
		key string
		dst *int
	}{
		{EnvTurnDuration, &c.TurnDurationSeconds},
		{EnvBotMinDelay, &c.BotMinDelaySeconds},
		{EnvBotMaxDelay, &c.BotMaxDelaySeconds},
		{EnvBotAutoFillDelay, &c.BotAutoFillDelaySeconds},
		{EnvMaxRetries, &c.MaxProposalRetries},
		{EnvSeatTicketTTL, &c.SeatTicketTTLSeconds},
	}
	var firstErr error
	for _, f := range ints {
		val, ok := lookup(f.key)
		if !ok || val == "" {
			continue
		}
		i, err := strconv.Atoi(val)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", f.key, err)
			}
			continue
		}
		*f.dst = i
	}
	if val, ok := lookup(EnvBotLevel); ok && val != "" {
		c.BotLevel = val
	}
	if val, ok := lookup(EnvFallback); ok && val != "" {
		c.Fallback = FallbackPolicy(val)
	}
	return firstErr
}

// MapLookup adapts a plain map to the lookup signature ApplyEnv expects.
func MapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}
