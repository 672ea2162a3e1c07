package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ideamans/excelview"
	"github.com/ideamans/excelview/internal/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(&Config{Path: filepath.Join(t.TempDir(), "db", "excelview.db")})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store
}

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) excelview.Store {
		return newTestStore(t)
	})
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{"nil config", nil, ErrMissingPath},
		{"empty path", &Config{}, ErrMissingPath},
		{"in memory", &Config{Path: ":memory:"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := New(tt.config)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
			}
			if store != nil {
				store.Close()
			}
		})
	}
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "excelview.db")

	store, err := New(&Config{Path: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	uploaded := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return uploaded })

	file := excelview.FileRecord{ID: "f1", FileName: "a.xlsx", Headers: []string{"A", "B"}}
	if err := store.CreateFile(ctx, "u1", file); err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}
	row := excelview.NewRowRecord("r1", "f1", 0, []string{"x", "y"})
	if err := store.WriteRowBatch(ctx, "u1", "f1", []excelview.RowRecord{row}); err != nil {
		t.Fatalf("WriteRowBatch() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	store, err = New(&Config{Path: path})
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	defer store.Close()

	got, err := store.GetFile(ctx, "u1", "f1")
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
	if !got.UploadDate.Time().Equal(uploaded) {
		t.Errorf("UploadDate = %v, want %v", got.UploadDate, uploaded)
	}

	rows, err := store.ListRows(ctx, "u1", "f1")
	if err != nil {
		t.Fatalf("ListRows() error = %v", err)
	}
	if len(rows) != 1 || rows[0].ColumnB != "y" || rows[0].ExcelFileID != "f1" {
		t.Errorf("ListRows() = %+v", rows)
	}
}

func TestStore_WriteToMissingFile(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	row := excelview.NewRowRecord("r1", "nope", 0, nil)
	err := store.WriteRowBatch(context.Background(), "u1", "nope", []excelview.RowRecord{row})
	if !errors.Is(err, excelview.ErrFileNotFound) {
		t.Errorf("WriteRowBatch() error = %v, want ErrFileNotFound", err)
	}
}

func TestStore_Closed(t *testing.T) {
	store := newTestStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	ctx := context.Background()
	if _, err := store.ListFiles(ctx, "u1"); !errors.Is(err, excelview.ErrStoreClosed) {
		t.Errorf("ListFiles() error = %v, want ErrStoreClosed", err)
	}
	err := store.CreateFile(ctx, "u1", excelview.FileRecord{ID: "f"})
	if !errors.Is(err, excelview.ErrStoreClosed) {
		t.Errorf("CreateFile() error = %v, want ErrStoreClosed", err)
	}
}
