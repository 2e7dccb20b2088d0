package prompt

import (
	"strings"

	"github.com/nikhilbhutani/promptia/internal/models"
)

// Normalize trims every field, drops empty and duplicate tags and fills defaults.
// Tones outside the known set are kept as custom tones.
func Normalize(in models.PromptInputs) models.PromptInputs {
	out := models.PromptInputs{
		Objective:      strings.TrimSpace(in.Objective),
		ObjectiveTags:  normalizeTags(in.ObjectiveTags),
		Tone:           models.Tone(strings.ToLower(strings.TrimSpace(string(in.Tone)))),
		Length:         models.Length(strings.ToLower(strings.TrimSpace(string(in.Length)))),
		OutputFormat:   strings.TrimSpace(in.OutputFormat),
		Audience:       strings.TrimSpace(in.Audience),
		Constraints:    strings.TrimSpace(in.Constraints),
		Style:          strings.TrimSpace(in.Style),
		NegativePrompt: strings.TrimSpace(in.NegativePrompt),
		Lighting:       strings.TrimSpace(in.Lighting),
		CameraAngle:    strings.TrimSpace(in.CameraAngle),
		AspectRatio:    strings.TrimSpace(in.AspectRatio),
		Language:       strings.TrimSpace(in.Language),
	}

	info, _ := models.LookupModel(in.Model)
	out.Model = info.Key

	if _, ok := lengthGuidance[out.Length]; !ok {
		out.Length = models.DefaultLength
	}
	if out.OutputFormat == "" {
		out.OutputFormat = models.DefaultOutputFormat
	}
	if out.Language == "" {
		out.Language = models.DefaultLanguage
	}
	return out
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// NormalizeTags trims tags and drops empty and case-insensitive duplicates.
func NormalizeTags(tags []string) []string {
	return normalizeTags(tags)
}
