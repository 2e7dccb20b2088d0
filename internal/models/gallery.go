package models

// GalleryItem is a curated prompt shipped with the app. Read-only.
type GalleryItem struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Prompt       string   `json:"prompt" yaml:"prompt"`
	Tags         []string `json:"tags" yaml:"tags"`
	Model        Model    `json:"model" yaml:"model"`
	ThumbnailURL string   `json:"thumbnail_url" yaml:"thumbnail_url"`
	Author       string   `json:"author" yaml:"author"`
	Likes        int      `json:"likes" yaml:"likes"`
	EditorPick   bool     `json:"editor_pick" yaml:"editor_pick"`
}

type Category struct {
	ID           string   `json:"id" yaml:"id"`
	Label        string   `json:"label" yaml:"label"`
	Icon         string   `json:"icon" yaml:"icon"`
	Kind         Kind     `json:"kind" yaml:"kind"`
	DefaultModel Model    `json:"default_model" yaml:"default_model"`
	Chips        []string `json:"chips" yaml:"chips"`
}
