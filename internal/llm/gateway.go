package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/promptia/internal/config"
)

// Gateway routes requests to the configured provider, falling back to a second
// provider when one is set. Calls are never retried.
type Gateway struct {
	providers        map[string]Provider
	defaultProvider  string
	fallbackProvider string
	timeout          time.Duration
}

func NewGateway(cfg config.LLMConfig) *Gateway {
	return New(cfg.Provider, cfg.FallbackProvider, cfg.Timeout,
		NewGeminiProvider(cfg.GeminiKey, cfg.GeminiModel, cfg.GeminiEndpoint),
		NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel, ""),
		NewAnthropicProvider(cfg.AnthropicKey, cfg.AnthropicModel, ""),
	)
}

func New(defaultProvider, fallbackProvider string, timeout time.Duration, providers ...Provider) *Gateway {
	g := &Gateway{
		providers:        make(map[string]Provider, len(providers)),
		defaultProvider:  defaultProvider,
		fallbackProvider: fallbackProvider,
		timeout:          timeout,
	}
	for _, p := range providers {
		g.providers[p.Name()] = p
	}
	return g
}

func (g *Gateway) Provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return p, nil
}

func (g *Gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = g.defaultProvider
	}

	resp, err := g.call(ctx, providerName, req)
	if err != nil && g.fallbackProvider != "" && g.fallbackProvider != providerName && !errors.Is(err, context.Canceled) {
		slog.Warn("primary provider failed, trying fallback",
			"primary", providerName,
			"fallback", g.fallbackProvider,
			"error", err,
		)
		// The requested model belongs to the primary provider.
		req.Model = ""
		return g.call(ctx, g.fallbackProvider, req)
	}
	return resp, err
}

func (g *Gateway) call(ctx context.Context, providerName string, req ChatRequest) (*ChatResponse, error) {
	p, err := g.Provider(providerName)
	if err != nil {
		return nil, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := p.ChatCompletion(ctx, req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
			err = fmt.Errorf("%s: %w", providerName, ErrTimeout)
		}
		slog.Debug("llm call failed", "provider", providerName, "error", err)
		return nil, err
	}

	slog.Info("llm call",
		"provider", resp.Provider,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"latency_ms", resp.LatencyMs,
	)
	return resp, nil
}

func (g *Gateway) ListModels() []ModelInfo {
	var models []ModelInfo
	for _, name := range []string{"gemini", "openai", "anthropic"} {
		p, ok := g.providers[name]
		if !ok {
			continue
		}
		for _, m := range p.Models() {
			models = append(models, ModelInfo{Provider: p.Name(), Model: m})
		}
	}
	return models
}
