package main

import (
	"github.com/spf13/cobra"

	"github.com/ideamans/excelview"
	"github.com/ideamans/excelview/adapters/excel"
)

// viewFlags are the search and paging flags shared by preview and show
type viewFlags struct {
	search string
	page   int
	json   bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "only rows with a cell containing this text (case-insensitive)")
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "page number to display")
	cmd.Flags().BoolVar(&f.json, "json", false, "output as JSON")
}

func (f *viewFlags) apply(view *excelview.View) {
	view.SetSearch(f.search)
	view.SetPage(f.page)
}

func newPreviewCmd(a *app) *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Parse a spreadsheet locally and display it without uploading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := parseFile(args[0])
			if err != nil {
				return err
			}

			view := excelview.NewView(table.Headers, table.Rows, excelview.DefaultPageSize)
			flags.apply(view)
			if flags.json {
				return renderPageJSON(cmd.OutOrStdout(), table.FileName, view)
			}
			return renderPage(cmd.OutOrStdout(), view)
		},
	}
	flags.register(cmd)
	return cmd
}

func parseFile(path string) (excelview.Table, error) {
	parser, err := excel.New(nil)
	if err != nil {
		return excelview.Table{}, err
	}
	return parser.ParseFile(path)
}
