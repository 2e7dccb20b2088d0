package tokenizer

import (
	"strings"
	"testing"
)

func TestCountTokens(t *testing.T) {
	if n := CountTokens("   "); n != 0 {
		t.Errorf("Expected 0 for blank text, got %d", n)
	}
	if n := CountTokens("hi"); n != 1 {
		t.Errorf("Expected 1, got %d", n)
	}
	if n := CountTokens("one two three four five six"); n != 8 {
		t.Errorf("Expected 8, got %d", n)
	}
	dense := strings.Repeat("x", 400)
	if n := CountTokens(dense); n != 100 {
		t.Errorf("Expected 100 for dense text, got %d", n)
	}
}

func TestEstimateFor(t *testing.T) {
	if e := EstimateFor("a b c", "sdxl"); e.Limit != 77 {
		t.Errorf("Expected limit 77, got %d", e.Limit)
	}
	if e := EstimateFor("a b c", "chatgpt"); e.Limit != defaultLimit {
		t.Errorf("Expected default limit, got %d", e.Limit)
	}
}
