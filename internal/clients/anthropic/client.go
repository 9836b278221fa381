package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/findyourside/findyourside-backend/internal/logger"
	"github.com/findyourside/findyourside-backend/internal/utils"
)

const apiVersion = "2023-06-01"

// Client is the messages-API surface the generation service uses. A single
// Complete call is one model turn with a user prompt.
type Client interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

func ConfigFromEnv(log *logger.Logger) Config {
	timeoutSec := utils.GetEnvAsInt("ANTHROPIC_TIMEOUT_SECONDS", 28, log)
	return Config{
		APIKey:  strings.TrimSpace(utils.GetEnv("ANTHROPIC_API_KEY", "", log)),
		Model:   strings.TrimSpace(utils.GetEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-20241022", log)),
		BaseURL: strings.TrimSpace(utils.GetEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com", log)),
		Timeout: time.Duration(timeoutSec) * time.Second,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv(log))
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing ANTHROPIC_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-20241022"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 28 * time.Second
	}

	return &client{
		log:        log.With("client", "AnthropicClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "anthropic: <nil error>"
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 500 {
		msg = msg[:500] + "..."
	}
	return fmt.Sprintf("anthropic http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// Complete sends a single-turn messages request and returns the text of the
// first content block. No retries: generation requests sit on the hot path
// of a user-facing request and a retry would double its latency; callers
// release quota reservations on failure instead.
func (c *client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c == nil || c.httpClient == nil {
		return "", fmt.Errorf("anthropic client unavailable")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("anthropic: prompt required")
	}
	if maxTokens <= 0 {
		maxTokens = 1500
	}

	body, err := json.Marshal(messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	endpoint := c.cfg.BaseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out messagesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("anthropic decode error: %w", err)
	}
	if len(out.Content) == 0 || strings.TrimSpace(out.Content[0].Text) == "" {
		return "", fmt.Errorf("anthropic: empty completion")
	}

	c.log.Debug("Completion finished",
		"model", c.cfg.Model,
		"stop_reason", out.StopReason,
		"duration", time.Since(start).String(),
	)
	return out.Content[0].Text, nil
}
