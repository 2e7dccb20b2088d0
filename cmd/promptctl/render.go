package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/promptia/internal/prompt"
)

var (
	renderVars      []string
	renderObjective string
)

var renderCmd = &cobra.Command{
	Use:   "render <template-file|->",
	Short: "Fill a prompt template",
	Long: `Render fills {{name}} placeholders in a template. With --var every
placeholder must be given; with only --objective the objective or subject
slot is filled and other placeholders are left as they are.`,
	Example: `  promptctl build "a fox" -m sdxl --template > fox.tmpl
  promptctl render fox.tmpl --objective "a grey wolf"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tmpl, err := readTemplate(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		var out string
		if len(renderVars) == 0 {
			if renderObjective == "" {
				return fmt.Errorf("give --objective or at least one --var")
			}
			out = prompt.Reuse(tmpl, renderObjective)
		} else {
			vars, err := parseVars(renderVars)
			if err != nil {
				return err
			}
			if renderObjective != "" {
				for _, k := range []string{"objective", "subject"} {
					if _, ok := vars[k]; !ok {
						vars[k] = renderObjective
					}
				}
			}
			out, err = prompt.Render(tmpl, vars)
			if err != nil {
				return err
			}
		}

		if ok, err := emit(cmd.OutOrStdout(), map[string]string{"prompt": out}); ok || err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringArrayVar(&renderVars, "var", nil, "placeholder value as name=value (repeatable)")
	renderCmd.Flags().StringVar(&renderObjective, "objective", "", "value for the objective or subject slot")
}

func readTemplate(stdin io.Reader, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func parseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --var %q, want name=value", p)
		}
		vars[strings.TrimSpace(k)] = v
	}
	return vars, nil
}
