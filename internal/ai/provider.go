package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider turns chat messages into a reply.
type Provider interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// Known backends. All speak the OpenAI chat completions format.
const (
	ProviderMistral      = "mistral"
	ProviderOpenAI       = "openai"
	ProviderPollinations = "pollinations"
)

var defaultEndpoints = map[string]string{
	ProviderMistral:      "https://api.mistral.ai/v1/chat/completions",
	ProviderOpenAI:       "https://api.openai.com/v1/chat/completions",
	ProviderPollinations: "https://text.pollinations.ai/openai",
}

var defaultModels = map[string]string{
	ProviderMistral:      "mistral-small-latest",
	ProviderOpenAI:       "gpt-4o-mini",
	ProviderPollinations: "openai",
}

// Options select and tune a backend.
type Options struct {
	Provider    string
	Endpoint    string // overrides the provider default
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	RPS         float64
	MaxAttempts int
	Logger      zerolog.Logger
}

// New builds the client for opts.Provider (mistral when empty).
func New(opts Options) (*ChatClient, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Provider))
	if name == "" {
		name = ProviderMistral
	}
	endpoint, ok := defaultEndpoints[name]
	if !ok {
		return nil, fmt.Errorf("unsupported AI_PROVIDER: %s", opts.Provider)
	}
	if opts.Endpoint != "" {
		endpoint = opts.Endpoint
	}
	if opts.Model == "" {
		opts.Model = defaultModels[name]
	}
	if opts.APIKey == "" && name != ProviderPollinations {
		return nil, fmt.Errorf("%s provider needs an API key", name)
	}
	return NewChatClient(name, endpoint, opts), nil
}
