// Package wizard holds the create-flow state as a plain value with pure transitions.
package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nikhilbhutani/promptia/internal/models"
	"github.com/nikhilbhutani/promptia/internal/prompt"
)

type Step string

const (
	StepObjective Step = "objective"
	StepModel     Step = "model"
	StepDetails   Step = "details"
	StepReview    Step = "review"
)

var steps = []Step{StepObjective, StepModel, StepDetails, StepReview}

func (s Step) index() int {
	for i, v := range steps {
		if v == s {
			return i
		}
	}
	return -1
}

var (
	ErrInvalidAction = errors.New("invalid wizard action")
	ErrNoObjective   = errors.New("an objective or at least one tag is required")
	ErrOutOfRange    = errors.New("step out of range")
	ErrUnknownStep   = errors.New("unknown step")
)

type State struct {
	Step     Step                `json:"step"`
	Category string              `json:"category,omitempty"`
	Inputs   models.PromptInputs `json:"inputs"`
}

// New returns a fresh draft on the first step.
func New() State {
	return State{Step: StepObjective, Inputs: models.DefaultInputs()}
}

type ActionType string

const (
	ActionNext           ActionType = "next"
	ActionBack           ActionType = "back"
	ActionGoto           ActionType = "goto"
	ActionUpdate         ActionType = "update"
	ActionToggleTag      ActionType = "toggle_tag"
	ActionSelectCategory ActionType = "select_category"
	ActionReset          ActionType = "reset"
	ActionRemix          ActionType = "remix"
)

// Patch carries the fields to change on update; nil fields are left alone.
type Patch struct {
	Objective      *string        `json:"objective,omitempty"`
	ObjectiveTags  []string       `json:"objective_tags,omitempty"`
	Model          *models.Model  `json:"model,omitempty"`
	Tone           *models.Tone   `json:"tone,omitempty"`
	Length         *models.Length `json:"length,omitempty"`
	OutputFormat   *string        `json:"output_format,omitempty"`
	Audience       *string        `json:"audience,omitempty"`
	Constraints    *string        `json:"constraints,omitempty"`
	Style          *string        `json:"style,omitempty"`
	NegativePrompt *string        `json:"negative_prompt,omitempty"`
	Lighting       *string        `json:"lighting,omitempty"`
	CameraAngle    *string        `json:"camera_angle,omitempty"`
	AspectRatio    *string        `json:"aspect_ratio,omitempty"`
	Language       *string        `json:"language,omitempty"`
}

type Action struct {
	Type     ActionType           `json:"type"`
	Step     Step                 `json:"step,omitempty"`
	Tag      string               `json:"tag,omitempty"`
	Category string               `json:"category,omitempty"`
	Patch    *Patch               `json:"patch,omitempty"`
	Inputs   *models.PromptInputs `json:"inputs,omitempty"`
}

// Transition applies a to s and returns the new state. s is never modified.
func Transition(s State, a Action) (State, error) {
	s = clone(s)
	if s.Step.index() < 0 {
		return s, fmt.Errorf("%w: %q", ErrUnknownStep, s.Step)
	}

	switch a.Type {
	case ActionNext:
		i := s.Step.index()
		if i == len(steps)-1 {
			return s, fmt.Errorf("next from %s: %w", s.Step, ErrOutOfRange)
		}
		if s.Step == StepObjective && strings.TrimSpace(s.Inputs.Objective) == "" && len(s.Inputs.ObjectiveTags) == 0 {
			return s, ErrNoObjective
		}
		s.Step = steps[i+1]
	case ActionBack:
		i := s.Step.index()
		if i == 0 {
			return s, fmt.Errorf("back from %s: %w", s.Step, ErrOutOfRange)
		}
		s.Step = steps[i-1]
	case ActionGoto:
		target := a.Step.index()
		if target < 0 {
			return s, fmt.Errorf("%w: %q", ErrUnknownStep, a.Step)
		}
		if target > s.Step.index() {
			return s, fmt.Errorf("goto %s from %s: %w", a.Step, s.Step, ErrOutOfRange)
		}
		s.Step = a.Step
	case ActionUpdate:
		if a.Patch == nil {
			return s, fmt.Errorf("%w: update without patch", ErrInvalidAction)
		}
		s.Inputs = prompt.Normalize(apply(s.Inputs, *a.Patch))
	case ActionToggleTag:
		tag := strings.TrimSpace(a.Tag)
		if tag == "" {
			return s, fmt.Errorf("%w: empty tag", ErrInvalidAction)
		}
		s.Inputs.ObjectiveTags = toggle(s.Inputs.ObjectiveTags, tag)
	case ActionSelectCategory:
		s.Category = strings.TrimSpace(a.Category)
		s.Inputs.ObjectiveTags = []string{}
	case ActionReset:
		return New(), nil
	case ActionRemix:
		if a.Inputs == nil {
			return s, fmt.Errorf("%w: remix without inputs", ErrInvalidAction)
		}
		s.Inputs = prompt.Normalize(*a.Inputs)
		s.Step = StepReview
	default:
		return s, fmt.Errorf("%w: %q", ErrInvalidAction, a.Type)
	}
	return s, nil
}

// Preview computes the engine output for the current draft.
func Preview(s State) models.PromptResult {
	return prompt.Build(s.Inputs)
}

func apply(in models.PromptInputs, p Patch) models.PromptInputs {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&in.Objective, p.Objective)
	set(&in.OutputFormat, p.OutputFormat)
	set(&in.Audience, p.Audience)
	set(&in.Constraints, p.Constraints)
	set(&in.Style, p.Style)
	set(&in.NegativePrompt, p.NegativePrompt)
	set(&in.Lighting, p.Lighting)
	set(&in.CameraAngle, p.CameraAngle)
	set(&in.AspectRatio, p.AspectRatio)
	set(&in.Language, p.Language)
	if p.ObjectiveTags != nil {
		in.ObjectiveTags = append([]string(nil), p.ObjectiveTags...)
	}
	if p.Model != nil {
		in.Model = *p.Model
	}
	if p.Tone != nil {
		in.Tone = *p.Tone
	}
	if p.Length != nil {
		in.Length = *p.Length
	}
	return in
}

func toggle(tags []string, tag string) []string {
	out := make([]string, 0, len(tags)+1)
	found := false
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			found = true
			continue
		}
		out = append(out, t)
	}
	if !found {
		out = append(out, tag)
	}
	return out
}

func clone(s State) State {
	s.Inputs.ObjectiveTags = append([]string{}, s.Inputs.ObjectiveTags...)
	return s
}
