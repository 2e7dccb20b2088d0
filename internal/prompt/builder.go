package prompt

import (
	"strings"

	"github.com/nikhilbhutani/promptia/internal/models"
)

const (
	objectivePlaceholder = "objective"
	subjectPlaceholder   = "subject"

	emptyTaskText = "Describe the task you want completed."
	roleText      = "You are an expert assistant with deep knowledge relevant to the task below."

	midjourneySuffix = "--v 6.1 --q 2"
	diffusionFooter  = "Steps: 30, Sampler: DPM++ 2M Karras, CFG scale: 7"
	videoDuration    = "5-10 seconds"
	videoMotion      = "smooth, natural camera and subject movement"
)

var lengthGuidance = map[models.Length]string{
	models.LengthConcise:       "Keep the response concise and to the point, ideally under 150 words.",
	models.LengthBalanced:      "Provide a balanced response of moderate length, around 300 words.",
	models.LengthDetailed:      "Provide a detailed response with explanations and supporting examples.",
	models.LengthComprehensive: "Provide a comprehensive, in-depth response that covers every relevant aspect.",
}

var qualityChecklist = []string{
	"- Fully address the task.",
	"- Be accurate and avoid unsupported claims.",
	"- Keep the structure clear and easy to follow.",
}

var (
	midjourneyQuality = []string{"highly detailed", "professional quality"}
	diffusionPositive = []string{"masterpiece", "best quality", "highly detailed", "sharp focus"}
	diffusionNegative = []string{"blurry", "low quality", "distorted", "watermark"}
)

// LengthGuidance returns the sentence used in the Length section.
func LengthGuidance(l models.Length) string {
	if s, ok := lengthGuidance[l]; ok {
		return s
	}
	return lengthGuidance[models.DefaultLength]
}

// Build assembles the prompt for in.Model. It is pure and safe for concurrent use.
func Build(in models.PromptInputs) models.PromptResult {
	in = Normalize(in)
	info, _ := models.LookupModel(in.Model)

	var final, template string
	switch info.Format {
	case models.FormatMidjourney:
		final, template = buildMidjourney(in)
	case models.FormatDiffusion:
		final, template = buildDiffusion(in)
	case models.FormatVideo:
		final, template = buildVideo(in)
	default:
		final, template = buildText(in)
	}

	return models.PromptResult{
		FinalPrompt:    final,
		TemplatePrompt: template,
		Metadata:       buildMetadata(in, info),
	}
}

// BuildFor assembles the prompt for model regardless of in.Model.
func BuildFor(model models.Model, in models.PromptInputs) models.PromptResult {
	in.Model = model
	return Build(in)
}

type section struct {
	header string
	body   []part
}

func buildText(in models.PromptInputs) (string, string) {
	task := []part{}
	if in.Objective != "" {
		task = append(task, slot(in.Objective))
	}
	if len(in.ObjectiveTags) > 0 {
		if in.Objective != "" {
			task = append(task, lit("\n"))
		}
		task = append(task, lit("Focus on: "+strings.Join(in.ObjectiveTags, ", ")))
	}
	if len(task) == 0 {
		task = append(task, slot(emptyTaskText))
	}

	sections := []section{
		{"Role", []part{lit(roleText)}},
		{"Task", task},
	}
	if in.Audience != "" {
		sections = append(sections, section{"Audience", []part{lit("The response is intended for " + in.Audience + ".")}})
	}
	if in.Tone != models.ToneUnset {
		body := []part{lit("Use a " + string(in.Tone) + " tone.")}
		if in.Style != "" {
			body = append(body, lit("\nStyle: "+in.Style))
		}
		sections = append(sections, section{"Tone & Style", body})
	}
	if !strings.EqualFold(in.Language, models.DefaultLanguage) {
		sections = append(sections, section{"Language", []part{lit("Respond in " + in.Language + ".")}})
	}
	if in.Constraints != "" {
		sections = append(sections, section{"Constraints", []part{lit(in.Constraints)}})
	}
	sections = append(sections, section{"Length", []part{lit(LengthGuidance(in.Length))}})
	if !strings.EqualFold(in.OutputFormat, models.DefaultOutputFormat) {
		sections = append(sections, section{"Output Format", []part{lit("Format the response as " + in.OutputFormat + ".")}})
	}
	sections = append(sections, section{"Quality Checklist", []part{lit(strings.Join(qualityChecklist, "\n"))}})

	c := newComposer(objectivePlaceholder)
	for i, s := range sections {
		if i > 0 {
			c.text("\n\n")
		}
		c.text("## " + s.header + "\n")
		for _, p := range s.body {
			c.write(p)
		}
	}
	return c.result()
}

func subjectParts(in models.PromptInputs) []part {
	parts := []part{slot(in.Objective)}
	for _, t := range in.ObjectiveTags {
		parts = append(parts, lit(t))
	}
	return parts
}

func lightingDescriptor(lighting string) string {
	if lighting == "" {
		return ""
	}
	if strings.HasSuffix(strings.ToLower(lighting), "lighting") {
		return lighting
	}
	return lighting + " lighting"
}

func buildMidjourney(in models.PromptInputs) (string, string) {
	parts := subjectParts(in)
	parts = append(parts, lit(in.Style), lit(lightingDescriptor(in.Lighting)), lit(in.CameraAngle))
	for _, q := range midjourneyQuality {
		parts = append(parts, lit(q))
	}

	c := newComposer(subjectPlaceholder)
	c.join(", ", parts)
	if in.AspectRatio != "" {
		c.text(" --ar " + in.AspectRatio)
	}
	if in.NegativePrompt != "" {
		c.text(" --no " + in.NegativePrompt)
	}
	c.text(" " + midjourneySuffix)
	return c.result()
}

func buildDiffusion(in models.PromptInputs) (string, string) {
	positive := subjectParts(in)
	positive = append(positive, lit(in.Style), lit(lightingDescriptor(in.Lighting)))
	for _, q := range diffusionPositive {
		positive = append(positive, lit(q))
	}

	negative := []part{lit(in.NegativePrompt)}
	for _, n := range diffusionNegative {
		negative = append(negative, lit(n))
	}

	c := newComposer(subjectPlaceholder)
	c.text("Positive: ")
	c.join(", ", positive)
	c.text("\n\nNegative: ")
	c.join(", ", negative)
	c.text("\n\n" + diffusionFooter)
	return c.result()
}

func buildVideo(in models.PromptInputs) (string, string) {
	c := newComposer(subjectPlaceholder)
	line := func(label, value string) {
		if value == "" {
			return
		}
		c.text(label + ": " + value + "\n")
	}

	if subject := subjectParts(in); nonEmpty(subject) {
		c.text("Scene: ")
		c.join(", ", subject)
		c.text("\n")
	}
	line("Camera", in.CameraAngle)
	line("Lighting", in.Lighting)
	line("Style", in.Style)
	line("Duration", videoDuration)
	line("Motion", videoMotion)
	if in.AspectRatio != "" {
		c.text("Aspect Ratio: " + in.AspectRatio)
	}

	final, template := c.result()
	return strings.TrimSuffix(final, "\n"), strings.TrimSuffix(template, "\n")
}
