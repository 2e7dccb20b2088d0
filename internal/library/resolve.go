package library

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/promptia/internal/models"
	"github.com/nikhilbhutani/promptia/internal/prompt"
)

const (
	SourceGallery = "gallery"
	SourceSaved   = "saved"
)

// Detail is what a detail screen shows for an id.
type Detail struct {
	Source  string              `json:"source"`
	Gallery *models.GalleryItem `json:"gallery,omitempty"`
	Saved   *models.SavedPrompt `json:"saved,omitempty"`
}

// Resolve looks ref up in the static gallery first, then in the device's saved prompts.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID, ref string) (*Detail, error) {
	if s.catalog != nil {
		if item, ok := s.catalog.GalleryItem(ref); ok {
			return &Detail{Source: SourceGallery, Gallery: &item}, nil
		}
	}

	promptID, err := uuid.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	saved, err := s.Get(ctx, id, promptID)
	if err != nil {
		return nil, err
	}
	return &Detail{Source: SourceSaved, Saved: saved}, nil
}

// Remix returns wizard inputs for a gallery entry or saved prompt.
func (s *Service) Remix(ctx context.Context, id uuid.UUID, ref string) (models.PromptInputs, error) {
	d, err := s.Resolve(ctx, id, ref)
	if err != nil {
		return models.PromptInputs{}, err
	}
	if d.Saved != nil {
		return prompt.Normalize(d.Saved.Inputs), nil
	}

	in := models.DefaultInputs()
	in.Objective = d.Gallery.Prompt
	in.ObjectiveTags = d.Gallery.Tags
	in.Model = d.Gallery.Model
	return prompt.Normalize(in), nil
}
