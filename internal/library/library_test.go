package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/promptia/internal/catalog"
	"github.com/nikhilbhutani/promptia/internal/kvstore"
	"github.com/nikhilbhutani/promptia/internal/models"
	"github.com/nikhilbhutani/promptia/internal/persist"
)

func setupService(t *testing.T) (*Service, *kvstore.Memory) {
	t.Helper()
	store := kvstore.NewMemory()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	svc := NewService(store, persist.NewSync(store), cat)

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, store
}

func TestSave_BuildsPromptAndDefaults(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	device := uuid.New()

	in := models.DefaultInputs()
	in.Objective = "Write a landing page headline for a meditation app"
	saved, err := svc.Save(ctx, device, SaveRequest{Inputs: in, Tags: []string{"Marketing", "marketing"}})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if saved.FinalPrompt == "" || saved.TemplatePrompt == "" {
		t.Error("Expected generated prompt text")
	}
	if saved.Title != in.Objective {
		t.Errorf("Expected title from objective, got %q", saved.Title)
	}
	if saved.Type != models.KindText {
		t.Errorf("Expected type text, got %s", saved.Type)
	}
	if len(saved.Tags) != 1 {
		t.Errorf("Expected deduplicated tags, got %v", saved.Tags)
	}

	raw, err := store.Get(ctx, StorageKey(device, KeySavedPrompts))
	if err != nil {
		t.Fatalf("Expected saved prompts to be persisted: %v", err)
	}
	var stored []models.SavedPrompt
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("Stored value unreadable: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != saved.ID {
		t.Errorf("Expected stored prompt %s, got %+v", saved.ID, stored)
	}
}

func TestSave_UntitledAndTruncatedTitles(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	device := uuid.New()

	saved, err := svc.Save(ctx, device, SaveRequest{Inputs: models.DefaultInputs()})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.Title != "Untitled prompt" {
		t.Errorf("Expected 'Untitled prompt', got %q", saved.Title)
	}

	in := models.DefaultInputs()
	for i := 0; i < 10; i++ {
		in.Objective += "abcdefghij"
	}
	saved, err = svc.Save(ctx, device, SaveRequest{Inputs: in})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if n := len([]rune(saved.Title)); n != maxTitleRunes {
		t.Errorf("Expected title of %d runes, got %d", maxTitleRunes, n)
	}
}

func TestList_NewestFirstAndFilters(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	device := uuid.New()

	var ids []uuid.UUID
	for i, model := range []models.Model{models.ModelChatGPT, models.ModelMidjourney, models.ModelClaude} {
		in := models.DefaultInputs()
		in.Objective = fmt.Sprintf("prompt %d", i)
		in.Model = model
		p, err := svc.Save(ctx, device, SaveRequest{Inputs: in})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		ids = append(ids, p.ID)
	}

	all, err := svc.List(ctx, device, ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != ids[2] || all[2].ID != ids[0] {
		t.Errorf("Expected newest first, got %v", all)
	}

	images, _ := svc.List(ctx, device, ListFilter{Type: models.KindImage})
	if len(images) != 1 || images[0].ID != ids[1] {
		t.Errorf("Expected one image prompt, got %d", len(images))
	}

	if _, err := svc.ToggleFavorite(ctx, device, ids[0]); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	favs, _ := svc.List(ctx, device, ListFilter{FavoritesOnly: true})
	if len(favs) != 1 || favs[0].ID != ids[0] {
		t.Errorf("Expected one favorite, got %d", len(favs))
	}

	found, _ := svc.List(ctx, device, ListFilter{Query: "PROMPT 1"})
	if len(found) != 1 || found[0].ID != ids[1] {
		t.Errorf("Expected query match on prompt 1, got %d results", len(found))
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	device := uuid.New()

	p, _ := svc.Save(ctx, device, SaveRequest{Inputs: models.DefaultInputs(), Title: "Old"})

	title := "New title"
	updated, err := svc.Update(ctx, device, p.ID, PromptUpdate{Title: &title, Tags: []string{"a"}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != title || len(updated.Tags) != 1 {
		t.Errorf("Expected updated title and tags, got %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Error("Expected UpdatedAt to advance")
	}

	empty := "  "
	if _, err := svc.Update(ctx, device, p.ID, PromptUpdate{Title: &empty}); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid for empty title, got %v", err)
	}

	if err := svc.Delete(ctx, device, p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, device, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, device, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestFolders_MoveAndDelete(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	device := uuid.New()

	folder, err := svc.CreateFolder(ctx, device, "Work", "")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	if folder.Color != DefaultFolderColor {
		t.Errorf("Expected default color, got %s", folder.Color)
	}
	if _, err := svc.CreateFolder(ctx, device, "Bad", "red"); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid for bad color, got %v", err)
	}

	p, _ := svc.Save(ctx, device, SaveRequest{Inputs: models.DefaultInputs()})
	moved, err := svc.Move(ctx, device, p.ID, &folder.ID)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if moved.FolderID == nil || *moved.FolderID != folder.ID {
		t.Errorf("Expected prompt in folder %s", folder.ID)
	}

	missing := uuid.New()
	if _, err := svc.Move(ctx, device, p.ID, &missing); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid for unknown folder, got %v", err)
	}

	inFolder, _ := svc.List(ctx, device, ListFilter{FolderID: &folder.ID})
	if len(inFolder) != 1 {
		t.Errorf("Expected 1 prompt in folder, got %d", len(inFolder))
	}

	if err := svc.DeleteFolder(ctx, device, folder.ID); err != nil {
		t.Fatalf("DeleteFolder failed: %v", err)
	}
	got, _ := svc.Get(ctx, device, p.ID)
	if got.FolderID != nil {
		t.Error("Expected prompt to leave deleted folder")
	}
	folders, _ := svc.ListFolders(ctx, device)
	if len(folders) != 0 {
		t.Errorf("Expected no folders, got %d", len(folders))
	}
}

func TestHistory_CapsAtTen(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	device := uuid.New()

	for i := 0; i < MaxHistory+3; i++ {
		if _, err := svc.AddHistory(ctx, device, fmt.Sprintf("final %d", i), models.ModelClaude, fmt.Sprintf("objective %d", i)); err != nil {
			t.Fatalf("AddHistory failed: %v", err)
		}
	}

	history, _ := svc.ListHistory(ctx, device)
	if len(history) != MaxHistory {
		t.Fatalf("Expected %d entries, got %d", MaxHistory, len(history))
	}
	if history[0].FinalPrompt != "final 12" {
		t.Errorf("Expected newest first, got %q", history[0].FinalPrompt)
	}
	if history[MaxHistory-1].FinalPrompt != "final 3" {
		t.Errorf("Expected oldest entries evicted, got %q", history[MaxHistory-1].FinalPrompt)
	}

	if err := svc.ClearHistory(ctx, device); err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}
	history, _ = svc.ListHistory(ctx, device)
	if len(history) != 0 {
		t.Errorf("Expected empty history, got %d", len(history))
	}
}

func TestSettings(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	device := uuid.New()

	st, _ := svc.Settings(ctx, device)
	if st.Theme != models.ThemeSystem || st.OnboardingComplete {
		t.Errorf("Expected default settings, got %+v", st)
	}

	dark := models.ThemeDark
	lang := "es"
	st, err := svc.UpdateSettings(ctx, device, SettingsUpdate{Theme: &dark, Language: &lang})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if st.Theme != dark || st.Language != "es" {
		t.Errorf("Expected dark/es, got %+v", st)
	}

	bad := models.Theme("neon")
	if _, err := svc.UpdateSettings(ctx, device, SettingsUpdate{Theme: &bad}); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid for unknown theme, got %v", err)
	}

	st, _ = svc.CompleteOnboarding(ctx, device)
	if !st.OnboardingComplete {
		t.Error("Expected onboarding to be complete")
	}
}

func TestService_ReloadsFromStore(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	device := uuid.New()

	p, _ := svc.Save(ctx, device, SaveRequest{Inputs: models.DefaultInputs(), Title: "Keep me"})
	svc.CompleteOnboarding(ctx, device)

	fresh := NewService(store, persist.NewSync(store), nil)
	got, err := fresh.Get(ctx, device, p.ID)
	if err != nil {
		t.Fatalf("Expected prompt after reload: %v", err)
	}
	if got.Title != "Keep me" {
		t.Errorf("Expected 'Keep me', got %q", got.Title)
	}
	st, _ := fresh.Settings(ctx, device)
	if !st.OnboardingComplete {
		t.Error("Expected onboarding flag after reload")
	}
}

func TestService_CorruptValueFallsBack(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	device := uuid.New()

	store.Set(ctx, StorageKey(device, KeyFolders), []byte("{not json"))

	folders, err := svc.ListFolders(ctx, device)
	if err != nil {
		t.Fatalf("ListFolders failed: %v", err)
	}
	if len(folders) != 0 {
		t.Errorf("Expected empty folders, got %d", len(folders))
	}
}

// outageStore fails every Get while down is set.
type outageStore struct {
	*kvstore.Memory
	down bool
}

func (o *outageStore) Get(ctx context.Context, key string) ([]byte, error) {
	if o.down {
		return nil, errors.New("connection refused")
	}
	return o.Memory.Get(ctx, key)
}

func TestService_LoadOutageDoesNotOverwriteStoredData(t *testing.T) {
	svc, mem := setupService(t)
	ctx := context.Background()
	device := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := svc.Save(ctx, device, SaveRequest{Inputs: models.DefaultInputs(), Title: fmt.Sprintf("p%d", i)}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	store := &outageStore{Memory: mem, down: true}
	fresh := NewService(store, persist.NewSync(store), nil)

	during, err := fresh.List(ctx, device, ListFilter{})
	if err != nil {
		t.Fatalf("List during outage failed: %v", err)
	}
	if len(during) != 0 {
		t.Errorf("Expected empty default during outage, got %d", len(during))
	}
	if _, err := fresh.Save(ctx, device, SaveRequest{Inputs: models.DefaultInputs(), Title: "lost"}); err != nil {
		t.Fatalf("Save during outage failed: %v", err)
	}

	store.down = false
	if _, err := fresh.Save(ctx, device, SaveRequest{Inputs: models.DefaultInputs(), Title: "p3"}); err != nil {
		t.Fatalf("Save after outage failed: %v", err)
	}

	reloaded := NewService(mem, persist.NewSync(mem), nil)
	prompts, err := reloaded.List(ctx, device, ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(prompts) != 4 {
		t.Errorf("Expected 4 stored prompts, got %d", len(prompts))
	}
}

func TestService_DevicesAreIsolated(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	svc.Save(ctx, a, SaveRequest{Inputs: models.DefaultInputs()})

	list, _ := svc.List(ctx, b, ListFilter{})
	if len(list) != 0 {
		t.Errorf("Expected device b to see nothing, got %d", len(list))
	}
	if _, err := svc.List(ctx, uuid.Nil, ListFilter{}); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid for nil device, got %v", err)
	}
}

func TestResolveAndRemix(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	device := uuid.New()

	d, err := svc.Resolve(ctx, device, "g-fox-snow")
	if err != nil {
		t.Fatalf("Resolve gallery failed: %v", err)
	}
	if d.Source != SourceGallery || d.Gallery == nil {
		t.Errorf("Expected gallery detail, got %+v", d)
	}

	in, err := svc.Remix(ctx, device, "g-fox-snow")
	if err != nil {
		t.Fatalf("Remix failed: %v", err)
	}
	if in.Objective != d.Gallery.Prompt {
		t.Errorf("Expected remix objective from gallery prompt, got %q", in.Objective)
	}

	p, _ := svc.Save(ctx, device, SaveRequest{Inputs: models.DefaultInputs(), Title: "Mine"})
	d, err = svc.Resolve(ctx, device, p.ID.String())
	if err != nil {
		t.Fatalf("Resolve saved failed: %v", err)
	}
	if d.Source != SourceSaved || d.Saved.ID != p.ID {
		t.Errorf("Expected saved detail, got %+v", d)
	}

	if _, err := svc.Resolve(ctx, device, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestClearAll(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	device := uuid.New()

	svc.Save(ctx, device, SaveRequest{Inputs: models.DefaultInputs()})
	svc.CreateFolder(ctx, device, "Work", "")
	svc.CompleteOnboarding(ctx, device)

	if err := svc.ClearAll(ctx, device); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	list, _ := svc.List(ctx, device, ListFilter{})
	folders, _ := svc.ListFolders(ctx, device)
	st, _ := svc.Settings(ctx, device)
	if len(list) != 0 || len(folders) != 0 || st.OnboardingComplete {
		t.Error("Expected everything cleared")
	}
}
