// Package catalog serves the static tables shipped with the app: categories, chip
// vocabularies, the curated gallery and UI strings.
package catalog

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/nikhilbhutani/promptia/internal/models"
)

//go:embed data/*.yaml
var dataFS embed.FS

type Chips struct {
	Styles        []string `json:"styles" yaml:"styles"`
	Lighting      []string `json:"lighting" yaml:"lighting"`
	CameraAngles  []string `json:"camera_angles" yaml:"camera_angles"`
	AspectRatios  []string `json:"aspect_ratios" yaml:"aspect_ratios"`
	Tones         []string `json:"tones" yaml:"tones"`
	Lengths       []string `json:"lengths" yaml:"lengths"`
	OutputFormats []string `json:"output_formats" yaml:"output_formats"`
}

type tables struct {
	Categories []models.Category `yaml:"categories"`
	Chips      Chips             `yaml:"chips"`
}

type Catalog struct {
	categories []models.Category
	chips      Chips
	gallery    []models.GalleryItem
	byID       map[string]models.GalleryItem
	strings    map[string]map[string]string
	locales    []string
	matcher    language.Matcher
}

const fallbackLocale = "en"

// Load parses the embedded tables.
func Load() (*Catalog, error) {
	var t tables
	if err := decode("data/tables.yaml", &t); err != nil {
		return nil, err
	}
	var gallery []models.GalleryItem
	if err := decode("data/gallery.yaml", &gallery); err != nil {
		return nil, err
	}
	var i18n map[string]map[string]string
	if err := decode("data/i18n.yaml", &i18n); err != nil {
		return nil, err
	}
	if _, ok := i18n[fallbackLocale]; !ok {
		return nil, fmt.Errorf("i18n: missing %q strings", fallbackLocale)
	}

	c := &Catalog{
		categories: t.Categories,
		chips:      t.Chips,
		gallery:    gallery,
		byID:       make(map[string]models.GalleryItem, len(gallery)),
		strings:    i18n,
	}
	for _, item := range gallery {
		if _, dup := c.byID[item.ID]; dup {
			return nil, fmt.Errorf("gallery: duplicate id %q", item.ID)
		}
		c.byID[item.ID] = item
	}

	// English first so an unmatched tag falls back to it.
	c.locales = []string{fallbackLocale}
	for loc := range i18n {
		if loc != fallbackLocale {
			c.locales = append(c.locales, loc)
		}
	}
	sort.Strings(c.locales[1:])
	tags := make([]language.Tag, len(c.locales))
	for i, loc := range c.locales {
		tags[i] = language.MustParse(loc)
	}
	c.matcher = language.NewMatcher(tags)

	return c, nil
}

// MustLoad is Load for callers that cannot continue without the tables.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

func decode(name string, v any) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (c *Catalog) Categories() []models.Category {
	return append([]models.Category(nil), c.categories...)
}

func (c *Catalog) Category(id string) (models.Category, bool) {
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return models.Category{}, false
}

func (c *Catalog) Chips() Chips {
	return c.chips
}

// GalleryFilter narrows a gallery listing. Zero values match everything.
type GalleryFilter struct {
	Tag         string
	Model       models.Model
	EditorPicks bool
	Query       string
}

// Gallery lists matching entries, most liked first.
func (c *Catalog) Gallery(f GalleryFilter) []models.GalleryItem {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := []models.GalleryItem{}
	for _, item := range c.gallery {
		if f.EditorPicks && !item.EditorPick {
			continue
		}
		if f.Model != "" && item.Model != f.Model {
			continue
		}
		if f.Tag != "" && !hasTag(item.Tags, f.Tag) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(item.Title+" "+item.Prompt), query) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Likes != out[j].Likes {
			return out[i].Likes > out[j].Likes
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// GalleryItem looks up a seed entry by id.
func (c *Catalog) GalleryItem(id string) (models.GalleryItem, bool) {
	item, ok := c.byID[id]
	return item, ok
}

// Strings returns the UI strings for the locale best matching lang. Keys missing in
// that locale fall back to English.
func (c *Catalog) Strings(lang string) (string, map[string]string) {
	locale := c.Locale(lang)
	out := make(map[string]string, len(c.strings[fallbackLocale]))
	for k, v := range c.strings[fallbackLocale] {
		out[k] = v
	}
	for k, v := range c.strings[locale] {
		out[k] = v
	}
	return locale, out
}

// Locale maps a BCP 47 tag or Accept-Language value to a supported locale.
func (c *Catalog) Locale(lang string) string {
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return fallbackLocale
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return fallbackLocale
	}
	return c.locales[idx]
}

func (c *Catalog) Locales() []string {
	return append([]string(nil), c.locales...)
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
