package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/n0b0dy-ai/assistant-backend/pkg/logger"
	"github.com/n0b0dy-ai/assistant-backend/pkg/metrics"
)

// KeyFunc resolves the API credential for a mode.
type KeyFunc func(mode string) string

// GeminiGateway talks to the Gemini generation API with per-mode credentials.
// Clients are created lazily, one per distinct credential.
type GeminiGateway struct {
	keyFor KeyFunc
	model  string
	logger *logger.Logger

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewGeminiGateway creates a gateway generating with the named model.
func NewGeminiGateway(keyFor KeyFunc, model string, log *logger.Logger) *GeminiGateway {
	return &GeminiGateway{
		keyFor:  keyFor,
		model:   model,
		logger:  log,
		clients: make(map[string]*genai.Client),
	}
}

func (g *GeminiGateway) clientFor(ctx context.Context, mode string) (*genai.Client, error) {
	apiKey := g.keyFor(NormalizeMode(mode))
	if apiKey == "" {
		return nil, fmt.Errorf("%w: no credential configured for mode %q", ErrUpstream, mode)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if client, ok := g.clients[apiKey]; ok {
		return client, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: create client: %v", ErrUpstream, err)
	}
	g.clients[apiKey] = client
	return client, nil
}

// Generate makes a single generation attempt with the mode's credentials.
func (g *GeminiGateway) Generate(ctx context.Context, prompt, mode string) (string, error) {
	start := time.Now()
	mode = NormalizeMode(mode)

	client, err := g.clientFor(ctx, mode)
	if err != nil {
		metrics.RecordLLMRequest(mode, "error", time.Since(start).Seconds())
		return "", err
	}

	model := client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		metrics.RecordLLMRequest(mode, "error", time.Since(start).Seconds())
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	text := responseText(resp)
	if text == "" {
		metrics.RecordLLMRequest(mode, "empty", time.Since(start).Seconds())
		return "", fmt.Errorf("%w: empty response", ErrUpstream)
	}

	metrics.RecordLLMRequest(mode, "success", time.Since(start).Seconds())
	return text, nil
}

// TestCredentials sends a fixed smoke-test prompt for the mode.
func (g *GeminiGateway) TestCredentials(ctx context.Context, mode string) bool {
	text, err := g.Generate(ctx, "Hello, this is a test message.", mode)
	if err != nil {
		g.logger.Warn("credential smoke test failed",
			zap.String("mode", mode),
			zap.Error(err),
		)
		return false
	}
	return text != ""
}

// Close releases every lazily created client.
func (g *GeminiGateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	var errs []error
	for _, client := range g.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	g.clients = make(map[string]*genai.Client)
	return errors.Join(errs...)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
