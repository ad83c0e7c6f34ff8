package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	sectionscmd "github.com/goliatone/go-portfolio/internal/commands/sections"
)

func newSetCmd(global *globalOptions) *cobra.Command {
	var (
		file  string
		title string
	)
	cmd := &cobra.Command{
		Use:     "set <page> <section_key>",
		Short:   "Replace a section's Markdown from a file (- for stdin)",
		GroupID: "content",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readSource(cmd, file)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), global, openOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if title == "" {
				current, err := a.module.Sections().Get(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				title = current.Title
			}

			msg := sectionscmd.UpdateSectionCommand{
				Page:    args[0],
				Key:     args[1],
				Title:   title,
				Content: content,
			}
			if err := a.module.Commands().Update.Execute(cmd.Context(), msg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s/%s\n", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Markdown source file, - for stdin")
	cmd.Flags().StringVarP(&title, "title", "t", "", "section title (keeps the current title when empty)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readSource(cmd *cobra.Command, file string) (string, error) {
	if file == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	return string(data), nil
}
