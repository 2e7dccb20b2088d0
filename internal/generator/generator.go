// Package generator turns prompt inputs or an image into a model-ready prompt by asking
// an external LLM. Results are cached and user text is screened before it leaves the
// server.
package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/promptia/internal/cache"
	"github.com/nikhilbhutani/promptia/internal/guardrails"
	"github.com/nikhilbhutani/promptia/internal/llm"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidImage     = errors.New("image is not valid base64")
	ErrUnsupportedMedia = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image too large")
)

// Chatter is the part of the LLM gateway the generator needs.
type Chatter interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

type Service struct {
	llm   Chatter
	cache cache.Backend
	guard *guardrails.Pipeline
	ttl   time.Duration
}

// NewService creates a generator. c and guard may be nil to disable caching and
// screening.
func NewService(chat Chatter, c cache.Backend, guard *guardrails.Pipeline, ttl time.Duration) *Service {
	return &Service{llm: chat, cache: c, guard: guard, ttl: ttl}
}

// Generation is the model's answer plus where it came from.
type Generation struct {
	Prompt   string `json:"prompt"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Tokens   int    `json:"tokens"`
	Cached   bool   `json:"cached"`
}

func (s *Service) complete(ctx context.Context, key string, req llm.ChatRequest) (*Generation, error) {
	if s.cache != nil {
		var hit Generation
		ok, err := cache.GetJSON(ctx, s.cache, key, &hit)
		if err != nil {
			slog.Warn("generation cache read failed", "error", err)
		}
		if ok {
			hit.Cached = true
			return &hit, nil
		}
	}

	resp, err := s.llm.Chat(ctx, req)
	if err != nil {
		return nil, err
	}

	gen := &Generation{
		Prompt:   resp.Content,
		Provider: resp.Provider,
		Model:    resp.Model,
		Tokens:   resp.TotalTokens,
	}
	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, gen, s.ttl); err != nil {
			slog.Warn("generation cache write failed", "error", err)
		}
	}
	return gen, nil
}

func (s *Service) screen(ctx context.Context, texts ...string) error {
	if s.guard == nil {
		return nil
	}
	return s.guard.Screen(ctx, texts...)
}

func cacheKey(kind string, v any) string {
	data, _ := json.Marshal(v)
	sum := sha256.Sum256(append([]byte(kind+":"), data...))
	return "gen:" + kind + ":" + hex.EncodeToString(sum[:])
}
