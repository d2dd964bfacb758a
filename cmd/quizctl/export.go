package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newExportResultsCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-results",
		Short: "Write submitted results as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return writeOutput(cmd, out, func(w io.Writer) error {
					return a.exporter.WriteResultsCSV(ctx, w)
				})
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "results.csv", `output file, "-" for stdout`)
	return cmd
}

func newExportLinksCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-links",
		Short: "Write every student's quiz link as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return writeOutput(cmd, out, func(w io.Writer) error {
					return a.roster.WriteLinksCSV(ctx, w)
				})
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "student_links.csv", `output file, "-" for stdout`)
	return cmd
}

func writeOutput(cmd *cobra.Command, path string, write func(w io.Writer) error) error {
	if path == "-" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}
