package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nikhilbhutani/promptia/internal/api/handlers"
	"github.com/nikhilbhutani/promptia/internal/auth"
	"github.com/nikhilbhutani/promptia/internal/catalog"
	"github.com/nikhilbhutani/promptia/internal/config"
	"github.com/nikhilbhutani/promptia/internal/generator"
	"github.com/nikhilbhutani/promptia/internal/guardrails"
	"github.com/nikhilbhutani/promptia/internal/kvstore"
	"github.com/nikhilbhutani/promptia/internal/library"
	"github.com/nikhilbhutani/promptia/internal/llm"
	"github.com/nikhilbhutani/promptia/internal/persist"
)

type fakeChatter struct {
	err error
}

func (f *fakeChatter) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Provider: "gemini", Model: "gemini-2.0-flash", Content: "generated prompt"}, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type testServer struct {
	srv  *httptest.Server
	chat *fakeChatter
}

func setupServer(t *testing.T, checks map[string]handlers.Pinger) *testServer {
	t.Helper()

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	store := kvstore.NewMemory()
	chat := &fakeChatter{}

	rt := NewRouter(Deps{
		Config: config.ServerConfig{
			CORSOrigins: []string{"*"},
			RateLimit:   1000,
			RateBurst:   1000,
		},
		Tokens:    auth.NewTokens("test-secret", time.Hour),
		Catalog:   cat,
		Library:   library.NewService(store, persist.NewSync(store), cat),
		Generator: generator.NewService(chat, nil, guardrails.DefaultPipeline(), time.Hour),
		Checks:    checks,
	})
	srv := httptest.NewServer(rt.Setup())
	t.Cleanup(func() {
		srv.Close()
		rt.Close()
	})
	return &testServer{srv: srv, chat: chat}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	if resp.StatusCode != http.StatusNoContent {
		json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func (ts *testServer) register(t *testing.T) string {
	t.Helper()
	resp, body := ts.do(t, http.MethodPost, "/api/v1/devices", "", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 from /devices, got %d", resp.StatusCode)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("Expected a device token")
	}
	return token
}

func TestHealth(t *testing.T) {
	ts := setupServer(t, map[string]handlers.Pinger{
		"redis":    fakePinger{},
		"database": fakePinger{err: errors.New("connection refused")},
	})

	resp, _ := ts.do(t, http.MethodGet, "/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from healthz, got %d", resp.StatusCode)
	}

	resp, body := ts.do(t, http.MethodGet, "/readyz", "", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 from readyz, got %d", resp.StatusCode)
	}
	checks, _ := body["checks"].(map[string]interface{})
	if checks["redis"] != "ok" {
		t.Errorf("Expected redis ok, got %v", checks["redis"])
	}
}

func TestBuildAndRender(t *testing.T) {
	ts := setupServer(t, nil)

	resp, body := ts.do(t, http.MethodPost, "/api/v1/prompts/build", "", map[string]interface{}{
		"objective": "a red fox in snow",
		"model":     "midjourney",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	final, _ := body["final_prompt"].(string)
	if !strings.HasPrefix(final, "a red fox in snow") || !strings.Contains(final, "--v 6.1") {
		t.Errorf("Unexpected midjourney prompt %q", final)
	}
	template, _ := body["template_prompt"].(string)

	resp, body = ts.do(t, http.MethodPost, "/api/v1/prompts/render", "", map[string]interface{}{
		"template":  template,
		"objective": "a grey wolf",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 from render, got %d", resp.StatusCode)
	}
	if got, _ := body["prompt"].(string); !strings.HasPrefix(got, "a grey wolf") {
		t.Errorf("Expected reused template, got %q", got)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/v1/prompts/render", "", map[string]interface{}{
		"template":  "{{subject}} in {{style}}",
		"variables": map[string]string{"subject": "fox"},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for missing variable, got %d", resp.StatusCode)
	}
}

func TestWizardTransition(t *testing.T) {
	ts := setupServer(t, nil)

	resp, body := ts.do(t, http.MethodPost, "/api/v1/wizard", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	state := body["state"]

	resp, body = ts.do(t, http.MethodPost, "/api/v1/wizard/transition", "", map[string]interface{}{
		"state":  state,
		"action": map[string]string{"type": "next"},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 without objective, got %d", resp.StatusCode)
	}
	if body["state"] == nil {
		t.Error("Expected unchanged state alongside the error")
	}

	resp, body = ts.do(t, http.MethodPost, "/api/v1/wizard/transition", "", map[string]interface{}{
		"state":  state,
		"action": map[string]interface{}{"type": "update", "patch": map[string]string{"objective": "plan a trip"}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for update, got %d", resp.StatusCode)
	}
	preview, _ := body["preview"].(map[string]interface{})
	if final, _ := preview["final_prompt"].(string); !strings.Contains(final, "plan a trip") {
		t.Errorf("Expected preview with objective, got %q", final)
	}
}

func TestCatalogRoutes(t *testing.T) {
	ts := setupServer(t, nil)

	resp, body := ts.do(t, http.MethodGet, "/api/v1/gallery?editor_picks=true", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if count, _ := body["count"].(float64); count == 0 {
		t.Error("Expected editor picks")
	}

	resp, _ = ts.do(t, http.MethodGet, "/api/v1/gallery/nope", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}

	resp, body = ts.do(t, http.MethodGet, "/api/v1/i18n/es", "", nil)
	if resp.StatusCode != http.StatusOK || body["locale"] != "es" {
		t.Errorf("Expected es strings, got %d %v", resp.StatusCode, body["locale"])
	}
}

func TestLibraryRequiresDevice(t *testing.T) {
	ts := setupServer(t, nil)

	resp, _ := ts.do(t, http.MethodGet, "/api/v1/library/prompts", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", resp.StatusCode)
	}
	resp, _ = ts.do(t, http.MethodGet, "/api/v1/library/prompts", "garbage", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 with bad token, got %d", resp.StatusCode)
	}
}

func TestLibraryFlow(t *testing.T) {
	ts := setupServer(t, nil)
	token := ts.register(t)

	resp, folder := ts.do(t, http.MethodPost, "/api/v1/library/folders", token, map[string]string{"name": "Work"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 for folder, got %d", resp.StatusCode)
	}

	resp, saved := ts.do(t, http.MethodPost, "/api/v1/library/prompts", token, map[string]interface{}{
		"inputs":    map[string]string{"objective": "Write a haiku"},
		"folder_id": folder["id"],
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 for prompt, got %d", resp.StatusCode)
	}
	id, _ := saved["id"].(string)

	resp, body := ts.do(t, http.MethodGet, "/api/v1/library/prompts?folder_id="+folder["id"].(string), token, nil)
	if resp.StatusCode != http.StatusOK || body["count"].(float64) != 1 {
		t.Errorf("Expected 1 prompt in folder, got %v", body["count"])
	}

	resp, body = ts.do(t, http.MethodPost, "/api/v1/library/prompts/"+id+"/favorite", token, nil)
	if resp.StatusCode != http.StatusOK || body["is_favorite"] != true {
		t.Errorf("Expected favorite, got %d %v", resp.StatusCode, body["is_favorite"])
	}

	resp, _ = ts.do(t, http.MethodPut, "/api/v1/library/prompts/"+id+"/folder", token, map[string]interface{}{"folder_id": nil})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 for move, got %d", resp.StatusCode)
	}

	resp, body = ts.do(t, http.MethodGet, "/api/v1/library/resolve/"+id, token, nil)
	if resp.StatusCode != http.StatusOK || body["source"] != "saved" {
		t.Errorf("Expected saved detail, got %d %v", resp.StatusCode, body["source"])
	}

	other := ts.register(t)
	resp, _ = ts.do(t, http.MethodGet, "/api/v1/library/prompts/"+id, other, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for another device, got %d", resp.StatusCode)
	}

	resp, _ = ts.do(t, http.MethodDelete, "/api/v1/library/prompts/"+id, token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
	resp, _ = ts.do(t, http.MethodGet, "/api/v1/library/prompts/not-a-uuid", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad id, got %d", resp.StatusCode)
	}
}

func TestSettingsRoutes(t *testing.T) {
	ts := setupServer(t, nil)
	token := ts.register(t)

	resp, body := ts.do(t, http.MethodPatch, "/api/v1/library/settings", token, map[string]string{"theme": "dark"})
	if resp.StatusCode != http.StatusOK || body["theme"] != "dark" {
		t.Errorf("Expected dark theme, got %d %v", resp.StatusCode, body["theme"])
	}

	resp, _ = ts.do(t, http.MethodPatch, "/api/v1/library/settings", token, map[string]string{"theme": "neon"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown theme, got %d", resp.StatusCode)
	}

	resp, body = ts.do(t, http.MethodPost, "/api/v1/library/settings/onboarding", token, nil)
	if resp.StatusCode != http.StatusOK || body["onboarding_complete"] != true {
		t.Errorf("Expected onboarding complete, got %v", body)
	}
}

func TestGenerateSmart(t *testing.T) {
	ts := setupServer(t, nil)
	token := ts.register(t)

	resp, body := ts.do(t, http.MethodPost, "/api/v1/generate/smart", token, map[string]string{"objective": "Write a cover letter"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if body["prompt"] != "generated prompt" {
		t.Errorf("Expected generated prompt, got %v", body["prompt"])
	}

	_, body = ts.do(t, http.MethodGet, "/api/v1/library/history", token, nil)
	if body["count"].(float64) != 1 {
		t.Errorf("Expected generation in history, got %v", body["count"])
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	ts := setupServer(t, nil)
	token := ts.register(t)

	tests := []struct {
		err  error
		want int
	}{
		{llm.ErrMissingAPIKey, http.StatusServiceUnavailable},
		{llm.ErrUnauthorized, http.StatusBadGateway},
		{llm.ErrRateLimited, http.StatusTooManyRequests},
		{llm.ErrTimeout, http.StatusGatewayTimeout},
		{&llm.StatusError{Provider: "gemini", Code: 500}, http.StatusBadGateway},
		{llm.ErrEmptyResponse, http.StatusBadGateway},
	}
	for i, tt := range tests {
		ts.chat.err = tt.err
		// Vary the objective so results are never served from cache.
		objective := "objective " + string(rune('a'+i))
		resp, _ := ts.do(t, http.MethodPost, "/api/v1/generate/smart", token, map[string]string{"objective": objective})
		if resp.StatusCode != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, resp.StatusCode)
		}
	}

	ts.chat.err = nil
	resp, _ := ts.do(t, http.MethodPost, "/api/v1/generate/reverse", token, map[string]string{
		"image_base64": "aGVsbG8=",
		"mime_type":    "image/bmp",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for unsupported type, got %d", resp.StatusCode)
	}
}

func TestGenerateUpstreamDetailNotEchoed(t *testing.T) {
	ts := setupServer(t, nil)
	token := ts.register(t)

	ts.chat.err = fmt.Errorf("gemini: %w: dial https://example.invalid/?key=SECRET", llm.ErrUpstream)
	resp, body := ts.do(t, http.MethodPost, "/api/v1/generate/smart", token, map[string]string{"objective": "Write a haiku"})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", resp.StatusCode)
	}
	msg, _ := body["error"].(string)
	if strings.Contains(msg, "SECRET") || strings.Contains(msg, "gemini") {
		t.Errorf("Expected generic upstream message, got %q", msg)
	}
	if msg != "generation provider failed" {
		t.Errorf("Expected %q, got %q", "generation provider failed", msg)
	}
}
