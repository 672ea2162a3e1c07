package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ideamans/excelview"
	"github.com/ideamans/excelview/adapters/excel"
)

func main() {
	parser, err := excel.New(&excel.Config{SheetName: "users"})
	if err != nil {
		log.Fatalf("Failed to create parser: %v", err)
	}

	dir, err := os.MkdirTemp("", "excelview-example-*")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	// 1. Write a workbook with more columns than are kept
	fmt.Println("Writing workbook...")
	headers := []string{"Name", "Email", "Department", "Age", "Active", "Joined"}
	var rows [][]string
	departments := []string{"Engineering", "Sales", "Marketing"}
	for i := 1; i <= 1200; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("User %04d", i),
			fmt.Sprintf("user%04d@example.com", i),
			departments[i%len(departments)],
			fmt.Sprintf("%d", 20+i%40),
			fmt.Sprintf("%t", i%2 == 0),
			"2024-01-01",
		})
	}
	path := filepath.Join(dir, "users.xlsx")
	if err := parser.Export(path, headers, rows); err != nil {
		log.Fatalf("Failed to export: %v", err)
	}

	// 2. Parse it back; only columns A to E survive
	table, err := parser.ParseFile(path)
	if err != nil {
		log.Fatalf("Failed to parse: %v", err)
	}
	fmt.Printf("Parsed %d rows, headers %v\n", len(table.Rows), table.Headers)

	// 3. Upload into an in-memory store with debug logging
	logger := excelview.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	store := excelview.NewMemoryStore()
	defer store.Close()
	engine := excelview.New(store, &excelview.Config{BatchSize: excelview.DefaultBatchSize}, logger)

	ctx := context.Background()
	result, err := engine.Upload(ctx, "local-user", table, func(percent int) {
		fmt.Printf("progress: %d%%\n", percent)
	})
	if err != nil {
		log.Fatalf("Failed to upload: %v", err)
	}
	files, stored := store.Size("local-user")
	fmt.Printf("Store holds %d file(s) and %d row(s)\n", files, stored)

	// 4. Search and paginate
	opened, err := engine.Open(ctx, "local-user", result.FileID)
	if err != nil {
		log.Fatalf("Failed to open: %v", err)
	}
	view := excelview.NewView(opened.File.Headers, opened.Rows, excelview.DefaultPageSize)
	view.SetSearch("sales")
	view.SetPage(3)
	page := view.Current()
	fmt.Printf("Search %q: page %d of %d (%d matching rows)\n", view.Search(), page.Number, page.TotalPages, page.TotalRows)
	for _, row := range page.Rows {
		fmt.Println("  ", row)
	}

	// 5. Remove everything again
	if err := engine.Remove(ctx, "local-user", result.FileID); err != nil {
		log.Fatalf("Failed to remove: %v", err)
	}
	files, stored = store.Size("local-user")
	fmt.Printf("After removal: %d file(s), %d row(s)\n", files, stored)
}
