package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/promptia/internal/device"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_PerDevice(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	t.Cleanup(rl.Stop)
	clock := time.Now()
	rl.now = func() time.Time { return clock }

	h := rl.Limit(okHandler())
	a, b := uuid.New(), uuid.New()

	do := func(id uuid.UUID) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(device.WithID(req.Context(), id))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if do(a) != http.StatusOK || do(a) != http.StatusOK {
		t.Fatal("Expected burst of 2 to pass")
	}
	if code := do(a); code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", code)
	}
	if code := do(b); code != http.StatusOK {
		t.Errorf("Expected other device unaffected, got %d", code)
	}

	clock = clock.Add(time.Second)
	if code := do(a); code != http.StatusOK {
		t.Errorf("Expected refill after 1s, got %d", code)
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.example"})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example" {
		t.Errorf("Expected origin echoed, got %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("Expected unknown origin to be refused")
	}
}
