package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newImportRosterCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import-roster",
		Short: "Import students from a CSV file and print their quiz links",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			return withApp(cmd, func(ctx context.Context, a *app) error {
				res, err := a.roster.Import(ctx, f)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tEMAIL\tNEW\tLINK")
				for _, s := range res.Students {
					fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", s.Name, s.Email, s.Created, s.Link)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				for _, s := range res.Skipped {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipped line %d: %s\n", s.Line, s.Reason)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "roster CSV with a header row (name,email,...)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
