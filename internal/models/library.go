package models

import (
	"time"

	"github.com/google/uuid"
)

// SavedPrompt is a prompt the user explicitly saved to the library.
type SavedPrompt struct {
	ID             uuid.UUID    `json:"id"`
	Title          string       `json:"title"`
	FinalPrompt    string       `json:"final_prompt"`
	TemplatePrompt string       `json:"template_prompt"`
	Inputs         PromptInputs `json:"inputs"`
	Model          Model        `json:"model"`
	Type           Kind         `json:"type"`
	Tags           []string     `json:"tags"`
	IsFavorite     bool         `json:"is_favorite"`
	FolderID       *uuid.UUID   `json:"folder_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

type PromptFolder struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryEntry records a recent generation.
type HistoryEntry struct {
	ID          uuid.UUID `json:"id"`
	FinalPrompt string    `json:"final_prompt"`
	Model       Model     `json:"model"`
	Objective   string    `json:"objective"`
	CreatedAt   time.Time `json:"created_at"`
}

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type Settings struct {
	Theme              Theme  `json:"theme"`
	Language           string `json:"language"`
	OnboardingComplete bool   `json:"onboarding_complete"`
}

func DefaultSettings() Settings {
	return Settings{Theme: ThemeSystem, Language: "en"}
}
