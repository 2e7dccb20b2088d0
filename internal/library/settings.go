package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/promptia/internal/models"
)

type SettingsUpdate struct {
	Theme    *models.Theme `json:"theme,omitempty"`
	Language *string       `json:"language,omitempty"`
}

func validTheme(t models.Theme) bool {
	switch t {
	case models.ThemeLight, models.ThemeDark, models.ThemeSystem:
		return true
	}
	return false
}

func (s *Service) Settings(ctx context.Context, id uuid.UUID) (models.Settings, error) {
	var out models.Settings
	err := s.withState(ctx, id, func(st *deviceState) error {
		out = st.settings
		return nil
	})
	return out, err
}

func (s *Service) UpdateSettings(ctx context.Context, id uuid.UUID, upd SettingsUpdate) (models.Settings, error) {
	if upd.Theme != nil && !validTheme(*upd.Theme) {
		return models.Settings{}, fmt.Errorf("%w: unknown theme %q", ErrInvalid, *upd.Theme)
	}
	if upd.Language != nil && strings.TrimSpace(*upd.Language) == "" {
		return models.Settings{}, fmt.Errorf("%w: language cannot be empty", ErrInvalid)
	}

	var out models.Settings
	err := s.withState(ctx, id, func(st *deviceState) error {
		if upd.Theme != nil {
			st.settings.Theme = *upd.Theme
			s.save(ctx, st, id, KeyTheme, st.settings.Theme)
		}
		if upd.Language != nil {
			st.settings.Language = strings.TrimSpace(*upd.Language)
			s.save(ctx, st, id, KeyLanguage, st.settings.Language)
		}
		out = st.settings
		return nil
	})
	return out, err
}

func (s *Service) CompleteOnboarding(ctx context.Context, id uuid.UUID) (models.Settings, error) {
	var out models.Settings
	err := s.withState(ctx, id, func(st *deviceState) error {
		st.settings.OnboardingComplete = true
		s.save(ctx, st, id, KeyOnboardingComplete, true)
		out = st.settings
		return nil
	})
	return out, err
}

func (s *Service) saveSettings(ctx context.Context, st *deviceState, id uuid.UUID) {
	s.save(ctx, st, id, KeyOnboardingComplete, st.settings.OnboardingComplete)
	s.save(ctx, st, id, KeyTheme, st.settings.Theme)
	s.save(ctx, st, id, KeyLanguage, st.settings.Language)
}
