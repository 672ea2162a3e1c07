package excelview

import "context"

// MaxStoreBatch is the largest number of records a store accepts in one
// atomic write or delete
const MaxStoreBatch = 500

// Store is the per-user document store holding FileRecords and their RowRecords.
// Every method is scoped to the principal uid; callers check uid before calling.
type Store interface {
	// CreateFile writes the FileRecord. The store assigns UploadDate.
	CreateFile(ctx context.Context, uid string, file FileRecord) error

	// WriteRowBatch writes rows under fileID in one atomic operation
	WriteRowBatch(ctx context.Context, uid, fileID string, rows []RowRecord) error

	// ListFiles returns the user's files, newest upload first
	ListFiles(ctx context.Context, uid string) ([]FileRecord, error)

	// GetFile returns one FileRecord or ErrFileNotFound
	GetFile(ctx context.Context, uid, fileID string) (FileRecord, error)

	// ListRows returns the rows of fileID ordered by RowIndex
	ListRows(ctx context.Context, uid, fileID string) ([]RowRecord, error)

	// ListRowIDs returns the identifiers of every row under fileID
	ListRowIDs(ctx context.Context, uid, fileID string) ([]string, error)

	// DeleteRowBatch deletes rows by identifier in one atomic operation
	DeleteRowBatch(ctx context.Context, uid, fileID string, rowIDs []string) error

	// DeleteFile deletes the FileRecord. Deleting an absent file is not an error.
	DeleteFile(ctx context.Context, uid, fileID string) error

	// Close releases the store's connections
	Close() error
}

// FilePath returns the document path of a FileRecord
func FilePath(uid, fileID string) string {
	return "users/" + uid + "/excelFiles/" + fileID
}

// RowsPath returns the collection path holding the rows of a FileRecord
func RowsPath(uid, fileID string) string {
	return FilePath(uid, fileID) + "/rows"
}
