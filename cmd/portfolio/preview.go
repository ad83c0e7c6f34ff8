package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-portfolio/internal/markdown"
)

func newPreviewCmd(global *globalOptions) *cobra.Command {
	var (
		file  string
		width int
		style string
	)
	cmd := &cobra.Command{
		Use:     "preview [<page> <section_key>]",
		Short:   "Render a section or Markdown file in the terminal",
		GroupID: "tools",
		Args: func(cmd *cobra.Command, args []string) error {
			switch {
			case file != "" && len(args) == 0:
				return nil
			case file == "" && len(args) == 2:
				return nil
			default:
				return errors.New("pass either <page> <section_key> or --file")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var source string
			if file != "" {
				content, err := readSource(cmd, file)
				if err != nil {
					return err
				}
				source = content
			} else {
				a, err := openApp(cmd.Context(), global, openOptions{})
				if err != nil {
					return err
				}
				defer a.Close()
				section, err := a.module.Sections().Get(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				source = "# " + section.Title + "\n\n" + section.Content
			}

			styleOpt := glamour.WithAutoStyle()
			if style != "" {
				styleOpt = glamour.WithStandardStyle(style)
			}
			renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
			if err != nil {
				return fmt.Errorf("create terminal renderer: %w", err)
			}
			out, err := renderer.Render(source)
			if err != nil {
				return fmt.Errorf("render markdown: %w", err)
			}
			if _, err := fmt.Fprint(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "%d min read\n", markdown.ReadTime(source))
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Markdown file to render instead of a stored section, - for stdin")
	cmd.Flags().IntVar(&width, "width", 80, "word wrap width")
	cmd.Flags().StringVar(&style, "style", "", "glamour style (dark, light, notty); auto-detected when empty")
	return cmd
}
