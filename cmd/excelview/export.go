package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ideamans/excelview/adapters/excel"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		output    string
		sheetName string
	)

	cmd := &cobra.Command{
		Use:   "export <file-id>",
		Short: "Write a stored table to an .xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			engine, store, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			opened, err := engine.Open(ctx, a.settings.UID, args[0])
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = exportName(opened.File.FileName)
			}

			parser, err := excel.New(&excel.Config{SheetName: sheetName})
			if err != nil {
				return err
			}
			if err := parser.Export(path, opened.File.Headers, opened.Rows); err != nil {
				return fmt.Errorf("export %s: %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(opened.Rows), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: <original name>_export.xlsx)")
	cmd.Flags().StringVar(&sheetName, "sheet", "Sheet1", "name of the written sheet")
	return storeCommand(cmd)
}

// exportName derives <base>_export.xlsx from the uploaded file name
func exportName(fileName string) string {
	base := fileName
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	if base == "" {
		base = "export"
	}
	return base + "_export.xlsx"
}
