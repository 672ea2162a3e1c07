// Package storetest checks that a Store implementation honours the contract
// the sync engine relies on: batch limits, ordering, and delete semantics.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ideamans/excelview"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) excelview.Store

// Run executes every conformance check against stores built by newStore
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateAndGetFile", func(t *testing.T) { testCreateAndGetFile(t, newStore(t)) })
	t.Run("ListFilesNewestFirst", func(t *testing.T) { testListFilesNewestFirst(t, newStore(t)) })
	t.Run("RowsOrderedByIndex", func(t *testing.T) { testRowsOrderedByIndex(t, newStore(t)) })
	t.Run("BatchLimit", func(t *testing.T) { testBatchLimit(t, newStore(t)) })
	t.Run("DeleteRowsThenFile", func(t *testing.T) { testDeleteRowsThenFile(t, newStore(t)) })
	t.Run("UsersAreIsolated", func(t *testing.T) { testUsersAreIsolated(t, newStore(t)) })
	t.Run("EngineRoundTrip", func(t *testing.T) { testEngineRoundTrip(t, newStore(t)) })
}

func uniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func mustCreate(t *testing.T, store excelview.Store, uid string, file excelview.FileRecord) {
	t.Helper()
	if err := store.CreateFile(context.Background(), uid, file); err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}
}

func makeRows(fileID string, from, n int) []excelview.RowRecord {
	rows := make([]excelview.RowRecord, n)
	for i := range rows {
		idx := from + i
		rows[i] = excelview.NewRowRecord(
			fmt.Sprintf("%s-row-%05d", fileID, idx),
			fileID,
			idx,
			[]string{fmt.Sprintf("a%d", idx), fmt.Sprintf("b%d", idx), "", "d", "e"},
		)
	}
	return rows
}

func testCreateAndGetFile(t *testing.T, store excelview.Store) {
	defer store.Close()
	ctx := context.Background()
	uid := uniqueID("user")

	file := excelview.FileRecord{
		ID:         uniqueID("file"),
		FileName:   "report.xlsx",
		UploadDate: excelview.PendingTimestamp(),
		Headers:    []string{"Name", "", "Amount"},
	}
	mustCreate(t, store, uid, file)

	got, err := store.GetFile(ctx, uid, file.ID)
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
	if got.ID != file.ID || got.FileName != file.FileName {
		t.Errorf("GetFile() = %+v, want %+v", got, file)
	}
	if fmt.Sprint(got.Headers) != fmt.Sprint(file.Headers) {
		t.Errorf("Headers = %q, want %q", got.Headers, file.Headers)
	}
	if got.UploadDate.IsPending() {
		t.Error("UploadDate should be committed by the store")
	}

	if _, err := store.GetFile(ctx, uid, "does-not-exist"); !errors.Is(err, excelview.ErrFileNotFound) {
		t.Errorf("GetFile(missing) error = %v, want ErrFileNotFound", err)
	}
}

func testListFilesNewestFirst(t *testing.T, store excelview.Store) {
	defer store.Close()
	ctx := context.Background()
	uid := uniqueID("user")

	var ids []string
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("file-%d", i)
		mustCreate(t, store, uid, excelview.FileRecord{ID: id, FileName: id + ".xlsx", Headers: []string{"A"}})
		ids = append(ids, id)
		time.Sleep(5 * time.Millisecond)
	}

	files, err := store.ListFiles(ctx, uid)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("ListFiles() returned %d files, want 3", len(files))
	}
	for i, f := range files {
		if want := ids[len(ids)-1-i]; f.ID != want {
			t.Errorf("files[%d] = %s, want %s", i, f.ID, want)
		}
	}
}

func testRowsOrderedByIndex(t *testing.T, store excelview.Store) {
	defer store.Close()
	ctx := context.Background()
	uid := uniqueID("user")
	fileID := uniqueID("file")
	mustCreate(t, store, uid, excelview.FileRecord{ID: fileID, FileName: "f.xlsx", Headers: []string{"A", "B"}})

	// Write the second batch first so insertion order differs from row order
	if err := store.WriteRowBatch(ctx, uid, fileID, makeRows(fileID, 10, 5)); err != nil {
		t.Fatalf("WriteRowBatch() error = %v", err)
	}
	if err := store.WriteRowBatch(ctx, uid, fileID, makeRows(fileID, 0, 10)); err != nil {
		t.Fatalf("WriteRowBatch() error = %v", err)
	}

	rows, err := store.ListRows(ctx, uid, fileID)
	if err != nil {
		t.Fatalf("ListRows() error = %v", err)
	}
	if len(rows) != 15 {
		t.Fatalf("ListRows() returned %d rows, want 15", len(rows))
	}
	for i, r := range rows {
		if r.RowIndex != i {
			t.Errorf("rows[%d].RowIndex = %d", i, r.RowIndex)
		}
		if r.ColumnA != fmt.Sprintf("a%d", i) || r.ColumnC != "" || r.ColumnE != "e" {
			t.Errorf("rows[%d] cells = %q", i, r.Cells())
		}
		if r.ExcelFileID != fileID {
			t.Errorf("rows[%d].ExcelFileID = %s", i, r.ExcelFileID)
		}
	}

	ids, err := store.ListRowIDs(ctx, uid, fileID)
	if err != nil {
		t.Fatalf("ListRowIDs() error = %v", err)
	}
	if len(ids) != 15 {
		t.Errorf("ListRowIDs() returned %d ids, want 15", len(ids))
	}
}

func testBatchLimit(t *testing.T, store excelview.Store) {
	defer store.Close()
	ctx := context.Background()
	uid := uniqueID("user")
	fileID := uniqueID("file")
	mustCreate(t, store, uid, excelview.FileRecord{ID: fileID, FileName: "f.xlsx", Headers: []string{"A"}})

	err := store.WriteRowBatch(ctx, uid, fileID, makeRows(fileID, 0, excelview.MaxStoreBatch+1))
	if !errors.Is(err, excelview.ErrBatchTooLarge) {
		t.Errorf("oversized WriteRowBatch() error = %v, want ErrBatchTooLarge", err)
	}
	var we *excelview.WriteError
	if !errors.As(err, &we) || we.Count != excelview.MaxStoreBatch+1 {
		t.Errorf("oversized WriteRowBatch() error = %#v, want *WriteError with count", err)
	}

	rows, _ := store.ListRows(ctx, uid, fileID)
	if len(rows) != 0 {
		t.Errorf("rejected batch left %d rows behind", len(rows))
	}

	if err := store.WriteRowBatch(ctx, uid, fileID, makeRows(fileID, 0, excelview.MaxStoreBatch)); err != nil {
		t.Errorf("full-size WriteRowBatch() error = %v", err)
	}

	ids := make([]string, excelview.MaxStoreBatch+1)
	if err := store.DeleteRowBatch(ctx, uid, fileID, ids); !errors.Is(err, excelview.ErrBatchTooLarge) {
		t.Errorf("oversized DeleteRowBatch() error = %v, want ErrBatchTooLarge", err)
	}
}

func testDeleteRowsThenFile(t *testing.T, store excelview.Store) {
	defer store.Close()
	ctx := context.Background()
	uid := uniqueID("user")
	fileID := uniqueID("file")
	mustCreate(t, store, uid, excelview.FileRecord{ID: fileID, FileName: "f.xlsx", Headers: []string{"A"}})

	if err := store.WriteRowBatch(ctx, uid, fileID, makeRows(fileID, 0, 20)); err != nil {
		t.Fatalf("WriteRowBatch() error = %v", err)
	}

	ids, err := store.ListRowIDs(ctx, uid, fileID)
	if err != nil {
		t.Fatalf("ListRowIDs() error = %v", err)
	}
	if err := store.DeleteRowBatch(ctx, uid, fileID, ids[:12]); err != nil {
		t.Fatalf("DeleteRowBatch() error = %v", err)
	}

	left, _ := store.ListRowIDs(ctx, uid, fileID)
	if len(left) != 8 {
		t.Errorf("%d rows left after partial delete, want 8", len(left))
	}
	if _, err := store.GetFile(ctx, uid, fileID); err != nil {
		t.Errorf("file should survive row deletion: %v", err)
	}

	if err := store.DeleteRowBatch(ctx, uid, fileID, left); err != nil {
		t.Fatalf("DeleteRowBatch() error = %v", err)
	}
	if err := store.DeleteFile(ctx, uid, fileID); err != nil {
		t.Fatalf("DeleteFile() error = %v", err)
	}
	if _, err := store.GetFile(ctx, uid, fileID); !errors.Is(err, excelview.ErrFileNotFound) {
		t.Errorf("GetFile() after delete error = %v, want ErrFileNotFound", err)
	}

	// Deleting again is a no-op
	if err := store.DeleteFile(ctx, uid, fileID); err != nil {
		t.Errorf("second DeleteFile() error = %v", err)
	}
}

func testUsersAreIsolated(t *testing.T, store excelview.Store) {
	defer store.Close()
	ctx := context.Background()
	alice, bob := uniqueID("alice"), uniqueID("bob")
	mustCreate(t, store, alice, excelview.FileRecord{ID: "shared-id", FileName: "alice.xlsx", Headers: []string{"A"}})

	files, err := store.ListFiles(ctx, bob)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("bob sees %d of alice's files", len(files))
	}
	if _, err := store.GetFile(ctx, bob, "shared-id"); !errors.Is(err, excelview.ErrFileNotFound) {
		t.Errorf("GetFile() across users error = %v, want ErrFileNotFound", err)
	}
}

func testEngineRoundTrip(t *testing.T, store excelview.Store) {
	defer store.Close()
	ctx := context.Background()
	uid := uniqueID("user")
	engine := excelview.New(store, &excelview.Config{BatchSize: 499}, nil)

	rows := make([][]string, 1000)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("%d", i), "x", "y"}
	}
	table := excelview.Table{FileName: "big.xlsx", Headers: []string{"N", "X"}, Rows: rows}

	result, err := engine.Upload(ctx, uid, table, nil)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	opened, err := engine.Open(ctx, uid, result.FileID)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(opened.Rows) != 1000 {
		t.Fatalf("Open() returned %d rows, want 1000", len(opened.Rows))
	}
	for i, row := range opened.Rows {
		if len(row) != 2 || row[0] != fmt.Sprintf("%d", i) {
			t.Fatalf("row %d = %q", i, row)
		}
	}

	if err := engine.Remove(ctx, uid, result.FileID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	files, err := engine.ListFiles(ctx, uid)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("%d files left after Remove()", len(files))
	}
}
