package library

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/promptia/internal/models"
)

const DefaultFolderColor = "#6C5CE7"

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type FolderUpdate struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (s *Service) ListFolders(ctx context.Context, id uuid.UUID) ([]models.PromptFolder, error) {
	var out []models.PromptFolder
	err := s.withState(ctx, id, func(st *deviceState) error {
		out = append([]models.PromptFolder{}, st.folders...)
		return nil
	})
	return out, err
}

func (s *Service) CreateFolder(ctx context.Context, id uuid.UUID, name, color string) (*models.PromptFolder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: folder name required", ErrInvalid)
	}
	if color == "" {
		color = DefaultFolderColor
	}
	if !colorPattern.MatchString(color) {
		return nil, fmt.Errorf("%w: color must look like #RRGGBB", ErrInvalid)
	}

	var f models.PromptFolder
	err := s.withState(ctx, id, func(st *deviceState) error {
		f = models.PromptFolder{ID: uuid.New(), Name: name, Color: color, CreatedAt: s.now()}
		st.folders = append(st.folders, f)
		s.save(ctx, st, id, KeyFolders, st.folders)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Service) UpdateFolder(ctx context.Context, id, folderID uuid.UUID, upd FolderUpdate) (*models.PromptFolder, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, fmt.Errorf("%w: folder name required", ErrInvalid)
	}
	if upd.Color != nil && !colorPattern.MatchString(*upd.Color) {
		return nil, fmt.Errorf("%w: color must look like #RRGGBB", ErrInvalid)
	}

	var out models.PromptFolder
	err := s.withState(ctx, id, func(st *deviceState) error {
		i := st.folderIndex(folderID)
		if i < 0 {
			return fmt.Errorf("folder %s: %w", folderID, ErrNotFound)
		}
		if upd.Name != nil {
			st.folders[i].Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Color != nil {
			st.folders[i].Color = *upd.Color
		}
		out = st.folders[i]
		s.save(ctx, st, id, KeyFolders, st.folders)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFolder removes a folder and takes its prompts out of it. Prompts are kept.
func (s *Service) DeleteFolder(ctx context.Context, id, folderID uuid.UUID) error {
	return s.withState(ctx, id, func(st *deviceState) error {
		i := st.folderIndex(folderID)
		if i < 0 {
			return fmt.Errorf("folder %s: %w", folderID, ErrNotFound)
		}
		st.folders = append(st.folders[:i:i], st.folders[i+1:]...)

		moved := false
		for j := range st.prompts {
			if st.prompts[j].FolderID != nil && *st.prompts[j].FolderID == folderID {
				st.prompts[j].FolderID = nil
				st.prompts[j].UpdatedAt = s.now()
				moved = true
			}
		}

		s.save(ctx, st, id, KeyFolders, st.folders)
		if moved {
			s.save(ctx, st, id, KeySavedPrompts, st.prompts)
		}
		return nil
	})
}

func (st *deviceState) folderIndex(id uuid.UUID) int {
	for i, f := range st.folders {
		if f.ID == id {
			return i
		}
	}
	return -1
}
