package llm

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doudizhu/internal/domain"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []string
		wantErr bool
	}{
		{name: "Quoted list", text: "[THOUGHT]: lead the straight\n[ACTION]: ['8','9','10','J','Q']", want: []string{"8", "9", "10", "J", "Q"}},
		{name: "Double quotes and spaces", text: `[ACTION]: [ "K", "K" ]`, want: []string{"K", "K"}},
		{name: "Pass", text: "[ACTION]: ['PASS']", want: []string{"PASS"}},
		{name: "Last action wins", text: "[ACTION]: ['3']\nactually\n[ACTION]: ['4']", want: []string{"4"}},
		{name: "Missing action", text: "I would play a pair", wantErr: true},
		{name: "Empty list", text: "[ACTION]: []", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAction(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoAction)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	env := map[string]string{
		EnvModelID: "deepseek-chat",
		EnvAPIKey:  "sk-test",
		EnvBaseURL: "https://api.example.com/v1/",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg, err := ConfigFromEnv(lookup)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1", cfg.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Timeout)

	env[EnvTimeout] = "15"
	cfg, err = ConfigFromEnv(lookup)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Timeout)

	env[EnvTimeout] = "soon"
	_, err = ConfigFromEnv(lookup)
	assert.Error(t, err)

	delete(env, EnvTimeout)
	delete(env, EnvAPIKey)
	_, err = ConfigFromEnv(lookup)
	assert.ErrorIs(t, err, ErrIncompleteConfig)
}

func TestClientProposePlay(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"[THOUGHT]: keep it cheap\n[ACTION]: ['3','3']"}}]}`))
	}))
	defer srv.Close()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	client := NewClient(Config{ModelID: "m", APIKey: "sk-test", BaseURL: srv.URL, Timeout: time.Second}, logger)

	m := domain.NewMatchFromHands([domain.RoleCount]domain.Hand{
		domain.NewHand(domain.Three, domain.Three, domain.Nine),
		domain.NewHand(domain.Four),
		domain.NewHand(domain.Five),
	}, nil, domain.Landlord)

	cards, err := client.ProposePlay(context.Background(), m.Observe(), domain.ErrPassNotAllowed)
	require.NoError(t, err)
	assert.Equal(t, []domain.Card{domain.Three, domain.Three}, cards)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "m", got.Model)
	assert.Contains(t, got.Messages[1].Content, "landlord")
	assert.Contains(t, got.Messages[1].Content, "['3','3','9']")
	assert.Contains(t, got.Messages[1].Content, "rejected")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "landlord", hook.LastEntry().Data["role"])
}

func TestClientProposePlayErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(Config{ModelID: "m", APIKey: "k", BaseURL: srv.URL, Timeout: time.Second}, nil)
	m := domain.NewMatch()
	m.Deal(rand.New(rand.NewSource(1)))
	_, err := client.ProposePlay(context.Background(), m.Observe(), nil)
	assert.ErrorContains(t, err, "429")
}

func TestClientProposePlayUnknownToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"[ACTION]: ['3','ZZ']"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{ModelID: "m", APIKey: "k", BaseURL: srv.URL, Timeout: time.Second}, nil)
	m := domain.NewMatchFromHands([domain.RoleCount]domain.Hand{
		domain.NewHand(domain.Three, domain.Nine),
		domain.NewHand(domain.Four),
		domain.NewHand(domain.Five),
	}, nil, domain.Landlord)

	_, err := client.ProposePlay(context.Background(), m.Observe(), nil)
	var rejection *domain.Rejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, domain.Landlord, rejection.Role)
	assert.ErrorIs(t, err, domain.ErrInvalidShape)
	assert.ErrorIs(t, err, domain.ErrUnknownCard)
	assert.Equal(t, "InvalidShape", domain.RejectionKind(err))
}
