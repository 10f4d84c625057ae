package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/mrfvalidator/diag"
	"github.com/reoring/mrfvalidator/i18n"
)

func newProfilesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Lists the extraction profile of every document kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := loadProfiles(file)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, kind := range set.Kinds() {
				p, err := set.Lookup(kind)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, kind)
				for _, e := range p.Entries {
					if e.Limit > 0 {
						fmt.Fprintf(w, "  %s <- %s (limit %d)\n", e.File, e.Pattern, e.Limit)
						continue
					}
					fmt.Fprintf(w, "  %s <- %s\n", e.File, e.Pattern)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "profiles", "", "YAML file adding or replacing extraction profiles")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		lang   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "render <errors.json>",
		Short: "Renders a saved error tree as diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			tree, err := diag.ReadTree(f)
			if err != nil {
				return err
			}
			seq := diag.Flattener{Catalog: i18n.Catalog(lang)}.Flatten(tree, "")
			if asJSON {
				return diag.WriteJSON(cmd.OutOrStdout(), seq)
			}
			return diag.WriteText(cmd.OutOrStdout(), seq)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "en", "language of diagnostic messages")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write diagnostics as a JSON array")
	return cmd
}
