package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ideamans/excelview"
)

// pageJSON is the --json shape of one table page
type pageJSON struct {
	FileName   string     `json:"fileName,omitempty"`
	Headers    []string   `json:"headers"`
	Search     string     `json:"search,omitempty"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
	TotalRows  int        `json:"totalRows"`
	Rows       [][]string `json:"rows"`
}

// renderPage prints the current page of view as an aligned table followed by
// the record count and page position
func renderPage(w io.Writer, view *excelview.View) error {
	page := view.Current()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(view.Headers(), "\t"))
	for _, row := range page.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if page.TotalRows == 0 {
		if view.Search() != "" {
			fmt.Fprintf(w, "No results for %q.\n", view.Search())
		} else {
			fmt.Fprintln(w, "No results.")
		}
	}
	fmt.Fprintf(w, "Showing %d of %d records.\n", len(page.Rows), page.TotalRows)
	if page.TotalPages > 1 {
		fmt.Fprintf(w, "Page %d of %d\n", page.Number, page.TotalPages)
	}
	return nil
}

func renderPageJSON(w io.Writer, fileName string, view *excelview.View) error {
	page := view.Current()
	rows := page.Rows
	if rows == nil {
		rows = [][]string{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(pageJSON{
		FileName:   fileName,
		Headers:    view.Headers(),
		Search:     view.Search(),
		Page:       page.Number,
		TotalPages: page.TotalPages,
		TotalRows:  page.TotalRows,
		Rows:       rows,
	})
}

// renderFiles prints the file list, newest first
func renderFiles(w io.Writer, files []excelview.FileRecord) error {
	if len(files) == 0 {
		fmt.Fprintln(w, "No files uploaded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE NAME\tUPLOADED\tCOLUMNS")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", f.ID, f.FileName, f.UploadDate, len(f.Headers))
	}
	return tw.Flush()
}
