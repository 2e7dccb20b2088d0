package generator

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/nikhilbhutani/promptia/internal/llm"
	"github.com/nikhilbhutani/promptia/internal/models"
)

// MaxImageBytes is the largest decoded image accepted for reverse engineering.
const MaxImageBytes = 7 << 20

var supportedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
	"image/gif":  true,
}

// ReverseRequest holds an image to turn back into a prompt. ImageBase64 may carry a
// data URL prefix, in which case MIMEType can be left empty.
type ReverseRequest struct {
	ImageBase64 string       `json:"image_base64"`
	MIMEType    string       `json:"mime_type"`
	Model       models.Model `json:"model"`
}

const reverseInstruction = `You are Promptia, an expert at reverse engineering AI-generated images.
Study the image and write the prompt that would most closely reproduce it.
Cover subject, composition, style or medium, lighting, color palette, camera angle and mood.
Output only the prompt in the requested syntax. No preamble, no explanation.`

// Reverse asks the LLM for a prompt that reproduces the image for the target model.
func (s *Service) Reverse(ctx context.Context, req ReverseRequest) (*Generation, error) {
	data, mime, err := decodeImage(req.ImageBase64, req.MIMEType)
	if err != nil {
		return nil, err
	}

	info, _ := models.LookupModel(req.Model)
	if info.Kind == models.KindText {
		// Image prompts only make sense for image or video targets.
		info, _ = models.LookupModel(models.ModelMidjourney)
	}

	chat := llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: reverseInstruction + "\n\n" + syntaxRules[info.Format]},
			{
				Role:    llm.RoleUser,
				Content: fmt.Sprintf("Write a %s prompt for this image.", info.Label),
				Images:  []llm.Image{{MIMEType: mime, Data: base64.StdEncoding.EncodeToString(data)}},
			},
		},
		Temperature: 0.4,
		TopK:        40,
		TopP:        0.95,
		MaxTokens:   2048,
	}

	key := cacheKey("reverse", struct {
		Model models.Model
		Image []byte
	}{info.Key, data})
	return s.complete(ctx, key, chat)
}

func decodeImage(raw, mime string) ([]byte, string, error) {
	raw = strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(raw, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return nil, "", fmt.Errorf("%w: malformed data URL", ErrInvalidImage)
		}
		// The data URL describes its own payload, so its type wins over the field.
		if declared := strings.TrimSuffix(header, ";base64"); declared != "" {
			mime = declared
		}
		raw = payload
	}
	if raw == "" {
		return nil, "", fmt.Errorf("%w: image required", ErrInvalidInput)
	}

	mime = strings.ToLower(strings.TrimSpace(mime))
	if !supportedImageTypes[mime] {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedMedia, mime)
	}

	if base64.StdEncoding.DecodedLen(len(raw)) > MaxImageBytes+3 {
		return nil, "", fmt.Errorf("%w: limit is %d bytes", ErrImageTooLarge, MaxImageBytes)
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) > MaxImageBytes {
		return nil, "", fmt.Errorf("%w: limit is %d bytes", ErrImageTooLarge, MaxImageBytes)
	}
	return data, mime, nil
}
