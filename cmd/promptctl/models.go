package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/promptia/internal/models"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List supported target models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list := models.Models()
		ok, err := emit(cmd.OutOrStdout(), list)
		if ok || err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tLABEL\tKIND\tFORMAT")
		for _, m := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Key, m.Label, m.Kind, m.Format)
		}
		return tw.Flush()
	},
}
