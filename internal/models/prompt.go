package models

import "strings"

// Model identifies the downstream generative system a prompt is formatted for.
type Model string

const (
	ModelChatGPT         Model = "chatgpt"
	ModelClaude          Model = "claude"
	ModelGemini          Model = "gemini"
	ModelLlama           Model = "llama"
	ModelMidjourney      Model = "midjourney"
	ModelSDXL            Model = "sdxl"
	ModelStableDiffusion Model = "stable-diffusion"
	ModelRunway          Model = "runway"
	ModelSora            Model = "sora"
	ModelVeo             Model = "veo"

	DefaultModel = ModelChatGPT
)

// Kind is the type of output a model produces. It doubles as the saved prompt type.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Format selects the prompt syntax used for a model.
type Format string

const (
	FormatLLM        Format = "llm"
	FormatMidjourney Format = "midjourney"
	FormatDiffusion  Format = "diffusion"
	FormatVideo      Format = "video"
)

type ModelInfo struct {
	Key    Model  `json:"key"`
	Label  string `json:"label"`
	Kind   Kind   `json:"kind"`
	Format Format `json:"format"`
}

var modelTable = []ModelInfo{
	{ModelChatGPT, "ChatGPT", KindText, FormatLLM},
	{ModelClaude, "Claude", KindText, FormatLLM},
	{ModelGemini, "Gemini", KindText, FormatLLM},
	{ModelLlama, "Llama", KindText, FormatLLM},
	{ModelMidjourney, "Midjourney", KindImage, FormatMidjourney},
	{ModelSDXL, "SDXL", KindImage, FormatDiffusion},
	{ModelStableDiffusion, "Stable Diffusion", KindImage, FormatDiffusion},
	{ModelRunway, "Runway", KindVideo, FormatVideo},
	{ModelSora, "Sora", KindVideo, FormatVideo},
	{ModelVeo, "Veo", KindVideo, FormatVideo},
}

// Models returns the supported models in display order.
func Models() []ModelInfo {
	out := make([]ModelInfo, len(modelTable))
	copy(out, modelTable)
	return out
}

// LookupModel returns the model info for key. Unknown keys resolve to the default model
// and ok is false.
func LookupModel(key Model) (info ModelInfo, ok bool) {
	k := Model(strings.ToLower(strings.TrimSpace(string(key))))
	for _, m := range modelTable {
		if m.Key == k {
			return m, true
		}
	}
	return modelTable[0], false
}

type Tone string

const (
	ToneUnset         Tone = ""
	ToneProfessional  Tone = "professional"
	ToneCasual        Tone = "casual"
	ToneFriendly      Tone = "friendly"
	ToneFormal        Tone = "formal"
	TonePersuasive    Tone = "persuasive"
	ToneHumorous      Tone = "humorous"
	ToneEmpathetic    Tone = "empathetic"
	ToneAuthoritative Tone = "authoritative"
)

type Length string

const (
	LengthConcise       Length = "concise"
	LengthBalanced      Length = "balanced"
	LengthDetailed      Length = "detailed"
	LengthComprehensive Length = "comprehensive"

	DefaultLength = LengthBalanced
)

const (
	DefaultOutputFormat = "text"
	DefaultLanguage     = "English"
)

// PromptInputs is the editable draft the wizard builds up.
type PromptInputs struct {
	Objective      string   `json:"objective"`
	ObjectiveTags  []string `json:"objective_tags"`
	Model          Model    `json:"model"`
	Tone           Tone     `json:"tone"`
	Length         Length   `json:"length"`
	OutputFormat   string   `json:"output_format"`
	Audience       string   `json:"audience"`
	Constraints    string   `json:"constraints"`
	Style          string   `json:"style"`
	NegativePrompt string   `json:"negative_prompt"`
	Lighting       string   `json:"lighting"`
	CameraAngle    string   `json:"camera_angle"`
	AspectRatio    string   `json:"aspect_ratio"`
	Language       string   `json:"language"`
}

// DefaultInputs is the state of a fresh draft.
func DefaultInputs() PromptInputs {
	return PromptInputs{
		ObjectiveTags: []string{},
		Model:         DefaultModel,
		Length:        DefaultLength,
		OutputFormat:  DefaultOutputFormat,
		Language:      DefaultLanguage,
	}
}

type Metadata struct {
	Checklist   []string `json:"checklist"`
	Warnings    []string `json:"warnings"`
	Questions   []string `json:"questions"`
	Assumptions []string `json:"assumptions"`
}

// PromptResult is derived from PromptInputs and never stored on its own.
type PromptResult struct {
	FinalPrompt    string   `json:"final_prompt"`
	TemplatePrompt string   `json:"template_prompt"`
	Metadata       Metadata `json:"metadata"`
}
