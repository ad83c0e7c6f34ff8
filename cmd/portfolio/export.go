package main

import (
	"fmt"

	"github.com/spf13/cobra"

	sectionscmd "github.com/goliatone/go-portfolio/internal/commands/sections"
)

func newExportCmd(global *globalOptions) *cobra.Command {
	var msg sectionscmd.ExportSectionsCommand
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export every stored section as JSONL",
		GroupID: "content",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), global, openOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			defaults := a.cfg.Export
			if msg.Destination == "" {
				msg.Destination = defaults.Destination
			}
			if msg.Path == "" {
				msg.Path = defaults.Path
			}
			if msg.Bucket == "" {
				msg.Bucket = defaults.S3Bucket
			}
			if msg.Key == "" {
				msg.Key = defaults.S3Key
			}

			if err := a.module.Commands().Export.Execute(cmd.Context(), msg); err != nil {
				return err
			}
			target := msg.Path
			if msg.Destination == sectionscmd.DestinationS3 {
				target = "s3://" + msg.Bucket + "/" + msg.Key
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported sections to %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVar(&msg.Destination, "to", "", "destination: file or s3 (default from config)")
	cmd.Flags().StringVar(&msg.Path, "path", "", "output file for --to file")
	cmd.Flags().StringVar(&msg.Bucket, "bucket", "", "bucket for --to s3")
	cmd.Flags().StringVar(&msg.Key, "key", "", "object key for --to s3")
	return cmd
}
