package prompt

import "github.com/nikhilbhutani/promptia/internal/models"

const (
	warnNoObjective     = "No objective provided; the prompt will be generic."
	questionObjective   = "What exactly do you want the AI to do or create?"
	assumeAudience      = "Assuming a general audience."
	questionAudience    = "Who is the intended audience?"
	assumeConstraints   = "No specific constraints; the model will use its defaults."
	assumeStyle         = "No style specified; the model will pick its default look."
	questionStyle       = "What visual style do you want (for example photorealistic or watercolor)?"
	assumeLighting      = "Lighting is left to the model's discretion."
	checklistObjective  = "Objective defined"
	checklistAudience   = "Audience specified"
	checklistConstraint = "Constraints specified"
	checklistStyle      = "Style specified"
)

// buildMetadata expects normalized inputs.
func buildMetadata(in models.PromptInputs, info models.ModelInfo) models.Metadata {
	md := models.Metadata{
		Checklist:   []string{},
		Warnings:    []string{},
		Questions:   []string{},
		Assumptions: []string{},
	}

	if in.Objective != "" || len(in.ObjectiveTags) > 0 {
		md.Checklist = append(md.Checklist, checklistObjective)
	} else {
		md.Warnings = append(md.Warnings, warnNoObjective)
		md.Questions = append(md.Questions, questionObjective)
	}
	md.Checklist = append(md.Checklist, "Model selected: "+info.Label)

	if in.Audience != "" {
		md.Checklist = append(md.Checklist, checklistAudience)
	} else {
		md.Assumptions = append(md.Assumptions, assumeAudience)
		md.Questions = append(md.Questions, questionAudience)
	}

	if in.Constraints != "" {
		md.Checklist = append(md.Checklist, checklistConstraint)
	} else {
		md.Assumptions = append(md.Assumptions, assumeConstraints)
	}

	if in.Style != "" {
		md.Checklist = append(md.Checklist, checklistStyle)
	}

	if info.Kind == models.KindImage {
		if in.Style == "" {
			md.Assumptions = append(md.Assumptions, assumeStyle)
			md.Questions = append(md.Questions, questionStyle)
		}
		if in.Lighting == "" {
			md.Assumptions = append(md.Assumptions, assumeLighting)
		}
	}

	return md
}
