package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/keshon/mahiro/pkg/retrylimit"
)

// ChatClient talks to an OpenAI-compatible /chat/completions endpoint.
type ChatClient struct {
	name        string
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	limiter     *retrylimit.AdaptiveLimiter
	retry       retrylimit.Config
}

// NewChatClient builds a client for endpoint. Zero options get sane defaults.
func NewChatClient(name, endpoint string, opts Options) *ChatClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RPS <= 0 {
		opts.RPS = 1
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 500
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 0.85
	}
	log := opts.Logger.With().Str("component", "ai").Str("provider", name).Logger()

	cfg := retrylimit.DefaultConfig()
	cfg.MaxAttempts = opts.MaxAttempts
	cfg.Logger = log

	rps := rate.Limit(opts.RPS)
	return &ChatClient{
		name:        name,
		endpoint:    endpoint,
		apiKey:      opts.APIKey,
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		client:      &http.Client{Timeout: opts.Timeout},
		limiter:     retrylimit.NewAdaptiveLimiter(rps, rps/4, rps*2, rps/4, 0.5),
		retry:       cfg,
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// httpError carries the status of a failed call.
type httpError struct {
	provider   string
	status     int
	body       string
	retryAfter time.Duration
}

func (e *httpError) Error() string {
	return fmt.Sprintf("%s http %d: %s", e.provider, e.status, e.body)
}
func (e *httpError) StatusCode() int           { return e.status }
func (e *httpError) RetryAfter() time.Duration { return e.retryAfter }

// Generate sends messages and returns the cleaned reply. 429, 5xx and
// transport errors are retried; other 4xx are not.
func (c *ChatClient) Generate(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("error marshalling request: %w", err)
	}

	var reply string
	err = retrylimit.Do(ctx, c.limiter, c.retry, func(ctx context.Context) error {
		out, err := c.do(ctx, payload)
		if err != nil {
			return err
		}
		reply = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (c *ChatClient) do(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", retrylimit.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := &httpError{
			provider:   c.name,
			status:     resp.StatusCode,
			body:       truncate(body),
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", herr
		}
		return "", retrylimit.Fatal(herr)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return "", fmt.Errorf("%s returned html", c.name)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", retrylimit.Fatal(fmt.Errorf("%s: decode response: %w", c.name, err))
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%s empty choices", c.name)
	}

	reply := cleanReply(parsed.Choices[0].Message.Content)
	if isGarbageResponse(reply) {
		return "", fmt.Errorf("%s returned garbage", c.name)
	}
	return reply, nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
