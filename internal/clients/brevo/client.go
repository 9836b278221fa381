package brevo

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
	"github.com/findyourside/findyourside-backend/internal/pkg/httpx"
	"github.com/findyourside/findyourside-backend/internal/utils"
)

// Client sends transactional email through the Brevo SMTP API.
type Client interface {
	SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	SenderName  string
	SenderEmail string
	Timeout     time.Duration
	MaxRetries  int
}

func ConfigFromEnv(log *logger.Logger) Config {
	timeoutSec := utils.GetEnvAsInt("BREVO_TIMEOUT_SECONDS", 15, log)
	maxRetries := utils.GetEnvAsInt("BREVO_MAX_RETRIES", 3, log)
	return Config{
		APIKey:      strings.TrimSpace(utils.GetEnv("BREVO_API_KEY", "", log)),
		BaseURL:     strings.TrimSpace(utils.GetEnv("BREVO_BASE_URL", "https://api.brevo.com", log)),
		SenderName:  utils.GetEnv("BREVO_SENDER_NAME", "Find Your Side", log),
		SenderEmail: strings.TrimSpace(utils.GetEnv("BREVO_SENDER_EMAIL", "hello.findyourside@gmail.com", log)),
		Timeout:     time.Duration(timeoutSec) * time.Second,
		MaxRetries:  maxRetries,
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
		return nil, fmt.Errorf("missing BREVO_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.brevo.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("missing BREVO_SENDER_EMAIL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &client{
		log:        log.With("client", "BrevoClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	maxRetries int
}

type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type SendEmailRequest struct {
	To          []Address
	Subject     string
	HTMLContent string
	Sender      *Address
}

type SendEmailResponse struct {
	MessageID string `json:"messageId"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type HTTPError struct {
	StatusCode int
	Body       string
	APIError   *apiError
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "brevo: <nil error>"
	}
	if e.APIError != nil && strings.TrimSpace(e.APIError.Message) != "" {
		return fmt.Sprintf("brevo http %d: %s (code=%s)", e.StatusCode, e.APIError.Message, e.APIError.Code)
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 1000 {
		msg = msg[:1000] + "..."
	}
	return fmt.Sprintf("brevo http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type sendPayload struct {
	Sender      Address   `json:"sender"`
	To          []Address `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
}

func (c *client) SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("brevo client unavailable")
	}
	if len(req.To) == 0 {
		return nil, fmt.Errorf("brevo: recipient required")
	}
	if strings.TrimSpace(req.Subject) == "" {
		return nil, fmt.Errorf("brevo: subject required")
	}
	if strings.TrimSpace(req.HTMLContent) == "" {
		return nil, fmt.Errorf("brevo: htmlContent required")
	}

	sender := Address{Name: c.cfg.SenderName, Email: c.cfg.SenderEmail}
	if req.Sender != nil {
		sender = *req.Sender
	}

	payload := sendPayload{
		Sender:      sender,
		To:          req.To,
		Subject:     req.Subject,
		HTMLContent: req.HTMLContent,
	}

	endpoint := c.cfg.BaseURL + "/v3/smtp/email"
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		out, resp, err := c.doOnce(ctx, endpoint, payload)
		if err == nil {
			return out, nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return nil, err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("Brevo request retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return nil, fmt.Errorf("unreachable retry loop")
}

func (c *client) doOnce(ctx context.Context, endpoint string, payload sendPayload) (*SendEmailResponse, *http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resp, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && strings.TrimSpace(ae.Message) != "" {
			return nil, resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw), APIError: &ae}
		}
		return nil, resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out SendEmailResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, resp, fmt.Errorf("brevo decode error: %w", err)
		}
	}
	return &out, resp, nil
}
