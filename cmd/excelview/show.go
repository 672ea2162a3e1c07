package main

import (
	"github.com/spf13/cobra"

	"github.com/ideamans/excelview"
)

func newShowCmd(a *app) *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "show <file-id>",
		Short: "Display a stored table, 10 rows per page",
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

			view := excelview.NewView(opened.File.Headers, opened.Rows, excelview.DefaultPageSize)
			flags.apply(view)
			if flags.json {
				return renderPageJSON(cmd.OutOrStdout(), opened.File.FileName, view)
			}
			return renderPage(cmd.OutOrStdout(), view)
		},
	}
	flags.register(cmd)
	return storeCommand(cmd)
}
