package main

import (
	"fmt"

	"github.com/spf13/cobra"

	sectionscmd "github.com/goliatone/go-portfolio/internal/commands/sections"
)

func newSeedCmd(global *globalOptions) *cobra.Command {
	var (
		pages     []string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:     "seed",
		Short:   "Store the default section content",
		GroupID: "content",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), global, openOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			msg := sectionscmd.SeedSectionsCommand{Pages: pages, Overwrite: overwrite}
			if err := a.module.Commands().Seed.Execute(cmd.Context(), msg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sections seeded")
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&pages, "page", nil, "page to seed (repeatable, default all)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace sections that already exist")
	return cmd
}
