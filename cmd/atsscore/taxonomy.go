package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"resume-ats/internal/ats"
)

func newTaxonomyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy",
		Short: "Print the embedded skill taxonomy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tax, err := ats.DefaultTaxonomy()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Categories:")
			for _, c := range tax.Categories {
				names := make([]string, 0, len(c.Skills))
				for _, s := range c.Skills {
					names = append(names, s.Name)
				}
				fmt.Fprintf(out, "  %s: %s\n", c.Name, strings.Join(names, ", "))
			}

			fmt.Fprintln(out, "Roles:")
			for _, r := range tax.Roles {
				weights := make([]string, 0, len(r.Weights))
				for _, w := range r.Weights {
					weights = append(weights, fmt.Sprintf("%s=%.2f", w.Category, w.Weight))
				}
				fmt.Fprintf(out, "  %s: %s\n", r.Name, strings.Join(weights, " "))
			}
			return nil
		},
	}
}
