package library

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/promptia/internal/models"
	"github.com/nikhilbhutani/promptia/internal/prompt"
)

const maxTitleRunes = 60

type SaveRequest struct {
	Title          string              `json:"title"`
	Inputs         models.PromptInputs `json:"inputs"`
	FinalPrompt    string              `json:"final_prompt,omitempty"`
	TemplatePrompt string              `json:"template_prompt,omitempty"`
	Tags           []string            `json:"tags"`
	FolderID       *uuid.UUID          `json:"folder_id,omitempty"`
	IsFavorite     bool                `json:"is_favorite"`
}

type PromptUpdate struct {
	Title *string  `json:"title,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// ListFilter narrows a listing. Zero values match everything.
type ListFilter struct {
	FolderID      *uuid.UUID
	FavoritesOnly bool
	Type          models.Kind
	Query         string
}

// Save stores a new prompt. When the caller does not supply the generated text it is
// built from the inputs.
func (s *Service) Save(ctx context.Context, id uuid.UUID, req SaveRequest) (*models.SavedPrompt, error) {
	inputs := prompt.Normalize(req.Inputs)
	info, _ := models.LookupModel(inputs.Model)

	final, template := strings.TrimSpace(req.FinalPrompt), req.TemplatePrompt
	if final == "" {
		res := prompt.Build(inputs)
		final, template = res.FinalPrompt, res.TemplatePrompt
	}
	if template == "" {
		template = final
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultTitle(inputs)
	}

	var saved models.SavedPrompt
	err := s.withState(ctx, id, func(st *deviceState) error {
		if req.FolderID != nil && st.folderIndex(*req.FolderID) < 0 {
			return fmt.Errorf("%w: folder %s does not exist", ErrInvalid, req.FolderID)
		}

		now := s.now()
		saved = models.SavedPrompt{
			ID:             uuid.New(),
			Title:          title,
			FinalPrompt:    final,
			TemplatePrompt: template,
			Inputs:         inputs,
			Model:          info.Key,
			Type:           info.Kind,
			Tags:           prompt.NormalizeTags(req.Tags),
			IsFavorite:     req.IsFavorite,
			FolderID:       req.FolderID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		st.prompts = append([]models.SavedPrompt{saved}, st.prompts...)
		s.save(ctx, st, id, KeySavedPrompts, st.prompts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *Service) Get(ctx context.Context, id, promptID uuid.UUID) (*models.SavedPrompt, error) {
	var out models.SavedPrompt
	err := s.withState(ctx, id, func(st *deviceState) error {
		i := st.promptIndex(promptID)
		if i < 0 {
			return fmt.Errorf("prompt %s: %w", promptID, ErrNotFound)
		}
		out = st.prompts[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns matching prompts, newest first.
func (s *Service) List(ctx context.Context, id uuid.UUID, f ListFilter) ([]models.SavedPrompt, error) {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := []models.SavedPrompt{}
	err := s.withState(ctx, id, func(st *deviceState) error {
		for _, p := range st.prompts {
			if f.FolderID != nil && (p.FolderID == nil || *p.FolderID != *f.FolderID) {
				continue
			}
			if f.FavoritesOnly && !p.IsFavorite {
				continue
			}
			if f.Type != "" && p.Type != f.Type {
				continue
			}
			if query != "" && !matchesQuery(p, query) {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update renames a prompt and/or replaces its tags.
func (s *Service) Update(ctx context.Context, id, promptID uuid.UUID, upd PromptUpdate) (*models.SavedPrompt, error) {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalid)
	}
	return s.mutatePrompt(ctx, id, promptID, func(_ *deviceState, p *models.SavedPrompt) error {
		if upd.Title != nil {
			p.Title = strings.TrimSpace(*upd.Title)
		}
		if upd.Tags != nil {
			p.Tags = prompt.NormalizeTags(upd.Tags)
		}
		return nil
	})
}

func (s *Service) ToggleFavorite(ctx context.Context, id, promptID uuid.UUID) (*models.SavedPrompt, error) {
	return s.mutatePrompt(ctx, id, promptID, func(_ *deviceState, p *models.SavedPrompt) error {
		p.IsFavorite = !p.IsFavorite
		return nil
	})
}

// Move puts a prompt in a folder. A nil folder takes it out of any folder.
func (s *Service) Move(ctx context.Context, id, promptID uuid.UUID, folderID *uuid.UUID) (*models.SavedPrompt, error) {
	return s.mutatePrompt(ctx, id, promptID, func(st *deviceState, p *models.SavedPrompt) error {
		if folderID != nil && st.folderIndex(*folderID) < 0 {
			return fmt.Errorf("%w: folder %s does not exist", ErrInvalid, folderID)
		}
		p.FolderID = folderID
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, id, promptID uuid.UUID) error {
	return s.withState(ctx, id, func(st *deviceState) error {
		i := st.promptIndex(promptID)
		if i < 0 {
			return fmt.Errorf("prompt %s: %w", promptID, ErrNotFound)
		}
		st.prompts = append(st.prompts[:i:i], st.prompts[i+1:]...)
		s.save(ctx, st, id, KeySavedPrompts, st.prompts)
		return nil
	})
}

func (s *Service) mutatePrompt(ctx context.Context, id, promptID uuid.UUID, fn func(*deviceState, *models.SavedPrompt) error) (*models.SavedPrompt, error) {
	var out models.SavedPrompt
	err := s.withState(ctx, id, func(st *deviceState) error {
		i := st.promptIndex(promptID)
		if i < 0 {
			return fmt.Errorf("prompt %s: %w", promptID, ErrNotFound)
		}
		p := st.prompts[i]
		if err := fn(st, &p); err != nil {
			return err
		}
		p.UpdatedAt = s.now()
		st.prompts[i] = p
		out = p
		s.save(ctx, st, id, KeySavedPrompts, st.prompts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (st *deviceState) promptIndex(id uuid.UUID) int {
	for i, p := range st.prompts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func matchesQuery(p models.SavedPrompt, query string) bool {
	if strings.Contains(strings.ToLower(p.Title), query) || strings.Contains(strings.ToLower(p.FinalPrompt), query) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), query) {
			return true
		}
	}
	return false
}

func defaultTitle(in models.PromptInputs) string {
	title := in.Objective
	if title == "" && len(in.ObjectiveTags) > 0 {
		title = strings.Join(in.ObjectiveTags, ", ")
	}
	if title == "" {
		return "Untitled prompt"
	}
	return truncate(title, maxTitleRunes)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
