// Package llm seats a text-generation service that speaks the OpenAI chat
// completions protocol.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"doudizhu/internal/domain"
)

// Env keys read by ConfigFromEnv.
const (
	EnvModelID = "LLM_MODEL_ID"
	EnvAPIKey  = "LLM_API_KEY"
	EnvBaseURL = "LLM_BASE_URL"
	EnvTimeout = "LLM_TIMEOUT"
)

const defaultTimeout = 60 * time.Second

var (
	ErrIncompleteConfig = errors.New("model id, api key and base url are required")
	ErrNoAction         = errors.New("response has no [ACTION] line")
)

type Config struct {
	ModelID string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// ConfigFromEnv reads the client settings through lookup, typically
// os.LookupEnv after godotenv has loaded a .env file.
func ConfigFromEnv(lookup func(string) (string, bool)) (Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}
	cfg := Config{
		ModelID: get(EnvModelID),
		APIKey:  get(EnvAPIKey),
		BaseURL: strings.TrimRight(get(EnvBaseURL), "/"),
		Timeout: defaultTimeout,
	}
	if raw := get(EnvTimeout); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("%s: invalid timeout %q", EnvTimeout, raw)
		}
		cfg.Timeout = time.Duration(secs) * time.Second
	}
	if cfg.ModelID == "" || cfg.APIKey == "" || cfg.BaseURL == "" {
		return Config{}, ErrIncompleteConfig
	}
	return cfg, nil
}

// Client asks the model for one play per call.
type Client struct {
	cfg    Config
	http   *http.Client
	logger logrus.FieldLogger
}

func NewClient(cfg Config, logger logrus.FieldLogger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ProposePlay sends the observation to the model and parses the play from
// its [ACTION] line. Transport and parse failures are returned so the host
// can retry or fall back. Unknown card tokens come back as a
// *domain.Rejection.
func (c *Client) ProposePlay(ctx context.Context, obs domain.Observation, lastErr error) ([]domain.Card, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.ModelID,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(obs, lastErr)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat completion: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completion returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat completion: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("chat completion has no choices")
	}
	content := parsed.Choices[0].Message.Content

	c.logger.WithFields(logrus.Fields{
		"role":     obs.Role.String(),
		"model":    c.cfg.ModelID,
		"duration": time.Since(start).String(),
		"retry":    lastErr != nil,
	}).Debug("model proposed a play")

	tokens, err := ParseAction(content)
	if err != nil {
		return nil, err
	}
	return domain.ParsePlay(obs.Role, tokens)
}

// ParseAction extracts the card tokens from the last "[ACTION]: [...]" line
// of a model response. Quotes around tokens are optional.
func ParseAction(text string) ([]string, error) {
	idx := strings.LastIndex(text, "[ACTION]:")
	if idx < 0 {
		return nil, ErrNoAction
	}
	rest := text[idx+len("[ACTION]:"):]
	openIdx := strings.Index(rest, "[")
	closeIdx := strings.Index(rest, "]")
	if openIdx < 0 || closeIdx < openIdx {
		return nil, fmt.Errorf("%w: no card list", ErrNoAction)
	}

	var tokens []string
	for _, f := range strings.Split(rest[openIdx+1:closeIdx], ",") {
		tok := strings.Trim(strings.TrimSpace(f), `'"`)
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty card list", ErrNoAction)
	}
	return tokens, nil
}
