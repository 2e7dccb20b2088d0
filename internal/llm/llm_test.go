package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func setupGemini(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeminiProvider("test-key", "gemini-2.0-flash", srv.URL)
}

func TestGemini_RequestShapeAndResponse(t *testing.T) {
	var got geminiRequest
	p := setupGemini(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gemini-2.0-flash:generateContent" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("Expected api key header, got %q", r.Header.Get("x-goog-api-key"))
		}
		if r.URL.RawQuery != "" {
			t.Errorf("Expected no query string, got %q", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("Bad request body: %v", err)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  a refined "},{"text":"prompt"}]}}],
			"usageMetadata":{"promptTokenCount":12,"candidatesTokenCount":5,"totalTokenCount":17}}`))
	})

	resp, err := p.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "be precise"},
			{Role: RoleUser, Content: "describe", Images: []Image{{MIMEType: "image/png", Data: "aGVsbG8="}}},
		},
		Temperature: 0.7,
		TopK:        40,
		TopP:        0.95,
		MaxTokens:   2048,
	})
	if err != nil {
		t.Fatalf("ChatCompletion failed: %v", err)
	}

	if resp.Content != "a refined prompt" {
		t.Errorf("Expected joined text, got %q", resp.Content)
	}
	if resp.TotalTokens != 17 {
		t.Errorf("Expected 17 tokens, got %d", resp.TotalTokens)
	}
	if got.SystemInstruction == nil || got.SystemInstruction.Parts[0].Text != "be precise" {
		t.Error("Expected system instruction")
	}
	if len(got.Contents) != 1 || len(got.Contents[0].Parts) != 2 {
		t.Fatalf("Expected one user content with image and text, got %+v", got.Contents)
	}
	if got.Contents[0].Parts[0].InlineData == nil || got.Contents[0].Parts[0].InlineData.MIMEType != "image/png" {
		t.Error("Expected inline image data first")
	}
	cfg := got.GenerationConfig
	if cfg.TopK != 40 || cfg.TopP != 0.95 || cfg.MaxOutputTokens != 2048 || cfg.Temperature == nil || *cfg.Temperature != 0.7 {
		t.Errorf("Unexpected generation config %+v", cfg)
	}
}

func TestGemini_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"error":{"code":401,"message":"bad key"}}`, ErrUnauthorized},
		{http.StatusForbidden, `{}`, ErrUnauthorized},
		{http.StatusTooManyRequests, `{"error":{"message":"quota"}}`, ErrRateLimited},
		{http.StatusInternalServerError, `oops`, ErrUpstream},
	}

	for _, tt := range tests {
		p := setupGemini(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(tt.body))
		})
		_, err := p.ChatCompletion(context.Background(), ChatRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}})
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: expected %v, got %v", tt.status, tt.want, err)
		}
	}

	p := setupGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := p.ChatCompletion(context.Background(), ChatRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway {
		t.Errorf("Expected StatusError with 502, got %v", err)
	}
}

func TestGemini_EmptyResponse(t *testing.T) {
	p := setupGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})
	_, err := p.ChatCompletion(context.Background(), ChatRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}
}

func TestGemini_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	p := NewGeminiProvider("SECRET-KEY-123", "gemini-2.0-flash", endpoint)
	_, err := p.ChatCompletion(context.Background(), ChatRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("Expected ErrUpstream, got %v", err)
	}
	if strings.Contains(err.Error(), "SECRET-KEY-123") {
		t.Errorf("Expected error without api key, got %q", err.Error())
	}
	if strings.Contains(err.Error(), endpoint) {
		t.Errorf("Expected error without request url, got %q", err.Error())
	}
}

func TestGemini_MissingKey(t *testing.T) {
	p := NewGeminiProvider("", "gemini-2.0-flash", "")
	_, err := p.ChatCompletion(context.Background(), ChatRequest{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestGateway_Timeout(t *testing.T) {
	p := setupGemini(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	g := New("gemini", "", 50*time.Millisecond, p)

	_, err := g.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
}

type stubProvider struct {
	name  string
	err   error
	calls int
}

func (s *stubProvider) Name() string     { return s.name }
func (s *stubProvider) Models() []string { return []string{s.name + "-model"} }

func (s *stubProvider) ChatCompletion(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &ChatResponse{Provider: s.name, Content: "ok from " + s.name}, nil
}

func TestGateway_FallbackWithoutRetries(t *testing.T) {
	primary := &stubProvider{name: "gemini", err: ErrRateLimited}
	fallback := &stubProvider{name: "openai"}
	g := New("gemini", "openai", time.Second, primary, fallback)

	resp, err := g.Chat(context.Background(), ChatRequest{Model: "gemini-2.0-flash"})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Provider != "openai" {
		t.Errorf("Expected fallback provider, got %s", resp.Provider)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("Expected one call each, got %d and %d", primary.calls, fallback.calls)
	}
}

func TestGateway_NoFallback(t *testing.T) {
	primary := &stubProvider{name: "gemini", err: ErrUnauthorized}
	g := New("gemini", "", time.Second, primary)

	_, err := g.Chat(context.Background(), ChatRequest{})
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
	if primary.calls != 1 {
		t.Errorf("Expected no retries, got %d calls", primary.calls)
	}

	if _, err := g.Provider("nope"); err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Errorf("Expected not configured error, got %v", err)
	}
}

func TestCalculateCost(t *testing.T) {
	if c := CalculateCost("gpt-4o-mini", 1000, 1000); math.Abs(c-0.00075) > 1e-12 {
		t.Errorf("Expected 0.00075, got %v", c)
	}
	if c := CalculateCost("unknown", 1000, 1000); c != 0 {
		t.Errorf("Expected 0 for unknown model, got %v", c)
	}
}
