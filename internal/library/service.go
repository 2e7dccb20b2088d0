// Package library owns each device's saved prompts, folders, history and settings.
// Collections live in memory and every change is handed to a persist.Writer as a
// whole-collection write.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/promptia/internal/catalog"
	"github.com/nikhilbhutani/promptia/internal/kvstore"
	"github.com/nikhilbhutani/promptia/internal/models"
	"github.com/nikhilbhutani/promptia/internal/persist"
)

const (
	KeySavedPrompts       = "saved_prompts"
	KeyFolders            = "folders"
	KeyHistory            = "history"
	KeyOnboardingComplete = "onboarding_complete"
	KeyTheme              = "theme"
	KeyLanguage           = "language"

	MaxHistory = 10
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid request")
)

// StorageKey is the kvstore key for one of a device's collections.
func StorageKey(deviceID uuid.UUID, key string) string {
	return "promptia:" + deviceID.String() + ":" + key
}

type Service struct {
	store   kvstore.Store
	writer  persist.Writer
	catalog *catalog.Catalog
	seq     *persist.Sequence
	now     func() time.Time

	mu      sync.Mutex
	devices map[uuid.UUID]*deviceState
}

type deviceState struct {
	mu       sync.Mutex
	prompts  []models.SavedPrompt
	folders  []models.PromptFolder
	history  []models.HistoryEntry
	settings models.Settings

	// degraded is set when loading hit a storage error. The state then only answers
	// this call: it is not cached and its changes are not persisted.
	degraded bool
}

func NewService(store kvstore.Store, writer persist.Writer, cat *catalog.Catalog) *Service {
	return &Service{
		store:   store,
		writer:  writer,
		catalog: cat,
		seq:     persist.NewSequence(),
		now:     func() time.Time { return time.Now().UTC() },
		devices: make(map[uuid.UUID]*deviceState),
	}
}

// withState runs fn with the device's collections locked, loading them on first use.
func (s *Service) withState(ctx context.Context, id uuid.UUID, fn func(st *deviceState) error) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: missing device", ErrInvalid)
	}

	s.mu.Lock()
	st, ok := s.devices[id]
	if !ok {
		st = &deviceState{}
		s.devices[id] = st
		st.mu.Lock()
		s.mu.Unlock()
		s.load(ctx, id, st)
	} else {
		s.mu.Unlock()
		st.mu.Lock()
	}
	defer st.mu.Unlock()

	if st.degraded {
		s.mu.Lock()
		if s.devices[id] == st {
			delete(s.devices, id)
		}
		s.mu.Unlock()
	}

	return fn(st)
}

func (s *Service) load(ctx context.Context, id uuid.UUID, st *deviceState) {
	st.prompts = []models.SavedPrompt{}
	st.folders = []models.PromptFolder{}
	st.history = []models.HistoryEntry{}
	st.settings = models.DefaultSettings()

	r := reader{ctx: ctx, store: s.store, id: id}
	if v, ok := readKey[[]models.SavedPrompt](&r, KeySavedPrompts); ok && v != nil {
		st.prompts = v
	}
	if v, ok := readKey[[]models.PromptFolder](&r, KeyFolders); ok && v != nil {
		st.folders = v
	}
	if v, ok := readKey[[]models.HistoryEntry](&r, KeyHistory); ok && v != nil {
		if len(v) > MaxHistory {
			v = v[:MaxHistory]
		}
		st.history = v
	}
	if v, ok := readKey[bool](&r, KeyOnboardingComplete); ok {
		st.settings.OnboardingComplete = v
	}
	if v, ok := readKey[models.Theme](&r, KeyTheme); ok && validTheme(v) {
		st.settings.Theme = v
	}
	if v, ok := readKey[string](&r, KeyLanguage); ok && v != "" {
		st.settings.Language = v
	}
	st.degraded = r.failed
}

type reader struct {
	ctx    context.Context
	store  kvstore.Store
	id     uuid.UUID
	failed bool
}

// readKey decodes one stored collection. Missing keys and unreadable values report
// false so the caller keeps its default; a storage error also marks the reader failed.
func readKey[T any](r *reader, key string) (T, bool) {
	var v T
	raw, err := r.store.Get(r.ctx, StorageKey(r.id, key))
	if errors.Is(err, kvstore.ErrNotFound) {
		return v, false
	}
	if err != nil {
		r.failed = true
		slog.Warn("library load failed, using default", "device", r.id, "key", key, "error", err)
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.Warn("library value unreadable, using default", "device", r.id, "key", key, "error", err)
		var zero T
		return zero, false
	}
	return v, true
}

// save hands the value for key to the writer. The in-memory state is already updated,
// so a failed hand-off is logged rather than returned. A degraded state is never
// written: it would replace stored data that could not be read.
func (s *Service) save(ctx context.Context, st *deviceState, id uuid.UUID, key string, value any) {
	if st.degraded {
		slog.Warn("library write skipped, storage unavailable at load", "device", id, "key", key)
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		slog.Error("library marshal failed", "device", id, "key", key, "error", err)
		return
	}

	w := persist.Write{Key: StorageKey(id, key), Seq: s.seq.Next(), Value: data}
	if err := s.writer.Write(context.WithoutCancel(ctx), w); err != nil {
		slog.Warn("library write not queued", "device", id, "key", key, "error", err)
	}
}

// ClearAll empties every collection and resets settings.
func (s *Service) ClearAll(ctx context.Context, id uuid.UUID) error {
	return s.withState(ctx, id, func(st *deviceState) error {
		st.prompts = []models.SavedPrompt{}
		st.folders = []models.PromptFolder{}
		st.history = []models.HistoryEntry{}
		st.settings = models.DefaultSettings()

		s.save(ctx, st, id, KeySavedPrompts, st.prompts)
		s.save(ctx, st, id, KeyFolders, st.folders)
		s.save(ctx, st, id, KeyHistory, st.history)
		s.saveSettings(ctx, st, id)
		return nil
	})
}
