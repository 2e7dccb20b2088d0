package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/promptia/internal/models"
	"github.com/nikhilbhutani/promptia/internal/prompt"
)

var (
	buildInputs   = models.DefaultInputs()
	buildTags     []string
	buildModel    string
	buildTone     string
	buildLength   string
	buildTemplate bool
)

var buildCmd = &cobra.Command{
	Use:   "build [objective]",
	Short: "Build a prompt for a target model",
	Example: `  promptctl build "Write a landing page headline" --audience "busy founders" --tone persuasive
  promptctl build "a red fox in snow" -m midjourney --style photorealistic --ar 16:9`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := buildInputs
		if len(args) == 1 {
			in.Objective = args[0]
		}
		in.ObjectiveTags = buildTags
		in.Model = models.Model(buildModel)
		in.Tone = models.Tone(buildTone)
		in.Length = models.Length(buildLength)
		in = prompt.Normalize(in)

		res := prompt.Build(in)
		ok, err := emit(cmd.OutOrStdout(), res)
		if ok || err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if buildTemplate {
			fmt.Fprintln(out, res.TemplatePrompt)
			return nil
		}
		fmt.Fprintln(out, res.FinalPrompt)
		for _, w := range res.Metadata.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}
		return nil
	},
}

func init() {
	f := buildCmd.Flags()
	f.StringSliceVarP(&buildTags, "tag", "t", nil, "objective keyword (repeatable)")
	f.StringVarP(&buildModel, "model", "m", string(models.DefaultModel), "target model ("+modelKeys()+")")
	f.StringVar(&buildTone, "tone", "", "tone for text models")
	f.StringVar(&buildLength, "length", string(models.DefaultLength), "concise, balanced, detailed or comprehensive")
	f.StringVar(&buildInputs.OutputFormat, "format", models.DefaultOutputFormat, "output format for text models")
	f.StringVar(&buildInputs.Audience, "audience", "", "target audience")
	f.StringVar(&buildInputs.Constraints, "constraints", "", "constraints the answer must respect")
	f.StringVar(&buildInputs.Language, "language", models.DefaultLanguage, "response language")
	f.StringVar(&buildInputs.Style, "style", "", "visual style")
	f.StringVar(&buildInputs.Lighting, "lighting", "", "lighting")
	f.StringVar(&buildInputs.CameraAngle, "camera", "", "camera angle")
	f.StringVar(&buildInputs.AspectRatio, "ar", "", "aspect ratio, e.g. 16:9")
	f.StringVar(&buildInputs.NegativePrompt, "negative", "", "things to keep out of the image")
	f.BoolVar(&buildTemplate, "template", false, "print the reusable template instead of the final prompt")
}

func modelKeys() string {
	var keys []string
	for _, m := range models.Models() {
		keys = append(keys, string(m.Key))
	}
	return strings.Join(keys, ", ")
}
