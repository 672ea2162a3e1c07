package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ideamans/excelview"
)

func newUploadCmd(a *app) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Parse a spreadsheet and store its first sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := parseFile(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			engine, store, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var progress excelview.ProgressFunc
			if !quiet {
				progress = progressPrinter(cmd.ErrOrStderr())
			}

			result, err := engine.Upload(ctx, a.settings.UID, table, progress)
			if !quiet {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			if err != nil {
				return fmt.Errorf("upload %s: %w", table.FileName, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rows from %s\n", result.RowCount, table.FileName)
			fmt.Fprintf(cmd.OutOrStdout(), "File ID: %s\n", result.FileID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print progress")
	return storeCommand(cmd)
}

// progressPrinter redraws a single progress line on w
func progressPrinter(w io.Writer) excelview.ProgressFunc {
	return func(percent int) {
		fmt.Fprintf(w, "\rUploading... %3d%%", percent)
	}
}
