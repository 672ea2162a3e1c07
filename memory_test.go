package excelview_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ideamans/excelview"
	"github.com/ideamans/excelview/internal/storetest"
)

func TestMemoryStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) excelview.Store {
		return excelview.NewMemoryStore()
	})
}

func TestMemoryStore_WriteToMissingFile(t *testing.T) {
	store := excelview.NewMemoryStore()
	rows := []excelview.RowRecord{excelview.NewRowRecord("r", "nope", 0, nil)}

	err := store.WriteRowBatch(context.Background(), "u", "nope", rows)
	if !errors.Is(err, excelview.ErrFileNotFound) {
		t.Errorf("WriteRowBatch() error = %v, want ErrFileNotFound", err)
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	store := excelview.NewMemoryStore()
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	ctx := context.Background()
	if err := store.CreateFile(ctx, "u", excelview.FileRecord{ID: "f"}); !errors.Is(err, excelview.ErrStoreClosed) {
		t.Errorf("CreateFile() error = %v, want ErrStoreClosed", err)
	}
	if _, err := store.ListFiles(ctx, "u"); !errors.Is(err, excelview.ErrStoreClosed) {
		t.Errorf("ListFiles() error = %v, want ErrStoreClosed", err)
	}
}

func TestMemoryStore_CopiesHeaders(t *testing.T) {
	store := excelview.NewMemoryStore()
	ctx := context.Background()
	headers := []string{"A", "B"}

	if err := store.CreateFile(ctx, "u", excelview.FileRecord{ID: "f", Headers: headers}); err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}
	headers[0] = "changed"

	got, err := store.GetFile(ctx, "u", "f")
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
	if got.Headers[0] != "A" {
		t.Errorf("stored headers share memory with the caller: %v", got.Headers)
	}
}
