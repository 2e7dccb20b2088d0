package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/nikhilbhutani/promptia/internal/llm"
	"github.com/nikhilbhutani/promptia/internal/models"
	"github.com/nikhilbhutani/promptia/internal/prompt"
)

const methodology = `You are Promptia, an expert prompt engineer. You write prompts that other AI models will receive verbatim.

Method:
1. Persona: open text prompts with a specific expert persona suited to the task.
2. Objective: restate the task as one clear, actionable instruction.
3. Context: fold in the audience, constraints, tone and length the user gave. Do not invent facts.
4. Structure: for text models use short labelled sections (Role, Task, Context, Requirements, Output format). Keep each section tight.
5. Output only the finished prompt. No preamble, no explanation, no surrounding quotes or code fences.`

var syntaxRules = map[models.Format]string{
	models.FormatLLM: "Target is a text model. Write natural language with labelled sections.",
	models.FormatMidjourney: "Target is Midjourney. Write one line of comma separated descriptors: subject, style, lighting, " +
		"camera, quality terms. End with parameters such as --ar, --no and --v 6.1 --q 2.",
	models.FormatDiffusion: "Target is a Stable Diffusion style model. Write a comma separated positive prompt with weighted quality " +
		"tags, then a line starting with \"Negative prompt:\", then a line with Steps, Sampler and CFG scale.",
	models.FormatVideo: "Target is a video model. Describe the scene, camera movement, subject motion, lighting, style and duration " +
		"in short labelled lines.",
}

// SmartResult carries the model's prompt alongside the deterministic build so clients
// can fall back to it or compare.
type SmartResult struct {
	Generation
	Baseline models.PromptResult `json:"baseline"`
}

// Smart asks the LLM to write a prompt for the given inputs.
func (s *Service) Smart(ctx context.Context, in models.PromptInputs) (*SmartResult, error) {
	in = prompt.Normalize(in)
	if in.Objective == "" && len(in.ObjectiveTags) == 0 {
		return nil, fmt.Errorf("%w: objective required", ErrInvalidInput)
	}

	info, _ := models.LookupModel(in.Model)
	userMsg := smartUserMessage(in, info)
	// Screen exactly what is sent: every field the message carries and its total size.
	if err := s.screen(ctx, userMsg); err != nil {
		return nil, err
	}

	req := llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: methodology + "\n\n" + syntaxRules[info.Format]},
			{Role: llm.RoleUser, Content: userMsg},
		},
		Temperature: 0.7,
		TopK:        40,
		TopP:        0.95,
		MaxTokens:   2048,
	}

	gen, err := s.complete(ctx, cacheKey("smart", in), req)
	if err != nil {
		return nil, err
	}
	return &SmartResult{Generation: *gen, Baseline: prompt.Build(in)}, nil
}

func smartUserMessage(in models.PromptInputs, info models.ModelInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a prompt for %s (%s output).\n", info.Label, info.Kind)

	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	line("Objective", in.Objective)
	line("Keywords", strings.Join(in.ObjectiveTags, ", "))
	if info.Kind == models.KindText {
		line("Tone", string(in.Tone))
		line("Length", prompt.LengthGuidance(in.Length))
		line("Output format", in.OutputFormat)
		line("Audience", in.Audience)
		line("Constraints", in.Constraints)
		line("Language", in.Language)
	} else {
		line("Style", in.Style)
		line("Lighting", in.Lighting)
		line("Camera angle", in.CameraAngle)
		line("Aspect ratio", in.AspectRatio)
		line("Avoid", in.NegativePrompt)
	}
	return strings.TrimRight(b.String(), "\n")
}
