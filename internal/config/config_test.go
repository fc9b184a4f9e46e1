package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(MapLookup(map[string]string{
		EnvTurnDuration: "30",
		EnvBotMaxDelay:  "5",
		EnvBotLevel:     "good",
		EnvFallback:     "pass",
		EnvMaxRetries:   "not-a-number",
	}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvMaxRetries)
	assert.Equal(t, 30, c.TurnDurationSeconds)
	assert.Equal(t, 5, c.BotMaxDelaySeconds)
	assert.Equal(t, "good", c.BotLevel)
	assert.Equal(t, FallbackPass, c.Fallback)
	assert.Equal(t, Default().MaxProposalRetries, c.MaxProposalRetries)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *GameConfig)
	}{
		{name: "ZeroTurnDuration", mutate: func(c *GameConfig) { c.TurnDurationSeconds = 0 }},
		{name: "InvertedBotDelay", mutate: func(c *GameConfig) { c.BotMinDelaySeconds, c.BotMaxDelaySeconds = 4, 2 }},
		{name: "NegativeRetries", mutate: func(c *GameConfig) { c.MaxProposalRetries = -1 }},
		{name: "UnknownFallback", mutate: func(c *GameConfig) { c.Fallback = "coinflip" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestGetGameConfigFallsBackToDefault(t *testing.T) {
	if cfg != nil {
		t.Skip("config already loaded by another test")
	}
	assert.Equal(t, Default(), GetGameConfig())
}
