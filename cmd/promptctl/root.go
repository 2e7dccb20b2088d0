package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var outputFormat string

var rootCmd = &cobra.Command{
	Use:   "promptctl",
	Short: "Build and inspect generative-AI prompts from the command line",
	Long: `promptctl runs the Promptia prompt engine locally.

It builds prompts for text, image and video models, lists the supported
models, browses the curated gallery and renders saved templates.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "text", "output format: text, json or yaml",
	)

	rootCmd.AddCommand(buildCmd, modelsCmd, galleryCmd, renderCmd)
}

// emit writes v as json or yaml. It reports false for text output so the caller can
// print its own layout.
func emit(w io.Writer, v any) (bool, error) {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return true, enc.Encode(v)
	case "text":
		return false, nil
	}
	return true, fmt.Errorf("unknown output format %q", outputFormat)
}
