package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ideamans/excelview"
	"github.com/ideamans/excelview/adapters/excel"
	"github.com/ideamans/excelview/adapters/firestore"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	if len(os.Args) < 2 {
		return fmt.Errorf("usage: %s <workbook.xlsx>", os.Args[0])
	}

	// Connection parameters of the Firebase web app
	storeConfig := firestore.Config{
		APIKey:            os.Getenv("FIREBASE_API_KEY"),
		AuthDomain:        os.Getenv("FIREBASE_AUTH_DOMAIN"),
		ProjectID:         os.Getenv("FIREBASE_PROJECT_ID"),
		AppID:             os.Getenv("FIREBASE_APP_ID"),
		MessagingSenderID: os.Getenv("FIREBASE_MESSAGING_SENDER_ID"),
		CredentialsFile:   "./service-account.json",
	}

	// Uses the emulator when FIRESTORE_EMULATOR_HOST is set
	store, err := firestore.NewWithCredentials(ctx, storeConfig)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer store.Close()

	engine := excelview.New(store, excelview.DefaultConfig(), nil)
	uid := "example-user"

	// Parse the first sheet
	parser, err := excel.New(nil)
	if err != nil {
		return err
	}
	table, err := parser.ParseFile(os.Args[1])
	if err != nil {
		return fmt.Errorf("failed to parse: %w", err)
	}

	// Upload in batches of 499 rows
	result, err := engine.Upload(ctx, uid, table, func(percent int) {
		fmt.Printf("\rUploading... %3d%%", percent)
	})
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to upload: %w", err)
	}
	fmt.Printf("Imported %d rows from %s as %s\n", result.RowCount, table.FileName, result.FileID)

	// List files, newest first
	files, err := engine.ListFiles(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	for _, f := range files {
		fmt.Printf("  %s  %-30s  %s\n", f.ID, f.FileName, f.UploadDate)
	}

	// Read it back and show the first page
	opened, err := engine.Open(ctx, uid, result.FileID)
	if err != nil {
		return fmt.Errorf("failed to open: %w", err)
	}
	page := excelview.Paginate(opened.Rows, 1, excelview.DefaultPageSize)
	fmt.Println(excelview.DisplayHeaders(opened.File.Headers))
	for _, row := range page.Rows {
		fmt.Println(row)
	}
	fmt.Printf("Showing %d of %d records.\n", len(page.Rows), page.TotalRows)

	// Remove rows in batches, then the file
	if err := engine.Remove(ctx, uid, result.FileID); err != nil {
		return fmt.Errorf("failed to remove: %w", err)
	}
	fmt.Printf("Removed %s\n", result.FileID)

	return nil
}
