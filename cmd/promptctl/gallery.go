package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/promptia/internal/catalog"
)

var galleryFilter catalog.GalleryFilter

var galleryCmd = &cobra.Command{
	Use:   "gallery [id]",
	Short: "Browse the curated prompt gallery",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			item, ok := cat.GalleryItem(args[0])
			if !ok {
				return fmt.Errorf("gallery item %q not found", args[0])
			}
			if ok, err := emit(out, item); ok || err != nil {
				return err
			}
			fmt.Fprintf(out, "%s (%s)\n\n%s\n", item.Title, item.Model, item.Prompt)
			return nil
		}

		items := cat.Gallery(galleryFilter)
		if ok, err := emit(out, items); ok || err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tMODEL\tLIKES")
		for _, it := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", it.ID, it.Title, it.Model, it.Likes)
		}
		return tw.Flush()
	},
}

func init() {
	f := galleryCmd.Flags()
	f.StringVar(&galleryFilter.Tag, "tag", "", "only items with this tag")
	f.StringVar((*string)(&galleryFilter.Model), "model", "", "only items for this model")
	f.BoolVar(&galleryFilter.EditorPicks, "picks", false, "only editor picks")
	f.StringVarP(&galleryFilter.Query, "query", "q", "", "search titles and prompts")
}
