package kvstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	value := []byte(`["a"]`)
	if err := m.Set(ctx, "k", value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value[0] = 'X'

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `["a"]` {
		t.Errorf("Expected stored copy to be isolated, got %s", got)
	}

	if err := m.Delete(ctx, "k", "other"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Expected empty store, got %d keys", m.Len())
	}
}

func TestValidBackend(t *testing.T) {
	for _, b := range []string{BackendMemory, BackendRedis, BackendPostgres} {
		if err := ValidBackend(b); err != nil {
			t.Errorf("%s: unexpected error %v", b, err)
		}
	}
	if err := ValidBackend("sqlite"); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestMemory_SetIfNewer(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	tests := []struct {
		rev     int64
		value   string
		written bool
		want    string
	}{
		{rev: 5, value: "a", written: true, want: "a"},
		{rev: 3, value: "b", written: false, want: "a"},
		{rev: 5, value: "c", written: true, want: "c"},
		{rev: 9, value: "d", written: true, want: "d"},
	}
	for _, tt := range tests {
		written, err := m.SetIfNewer(ctx, "k", tt.rev, []byte(tt.value))
		if err != nil {
			t.Fatalf("SetIfNewer failed: %v", err)
		}
		if written != tt.written {
			t.Errorf("rev %d: expected written=%v, got %v", tt.rev, tt.written, written)
		}
		got, _ := m.Get(ctx, "k")
		if string(got) != tt.want {
			t.Errorf("rev %d: expected %q, got %q", tt.rev, tt.want, got)
		}
	}

	if rev, _ := m.Revision(ctx, "k"); rev != 9 {
		t.Errorf("Expected revision 9, got %d", rev)
	}
	m.Delete(ctx, "k")
	if rev, _ := m.Revision(ctx, "k"); rev != 0 {
		t.Errorf("Expected revision reset after delete, got %d", rev)
	}
}
