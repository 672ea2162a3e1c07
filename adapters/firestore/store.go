// Package firestore implements excelview.Store on Cloud Firestore.
//
// Files live at users/{uid}/excelFiles/{fileId} and their rows in the
// rows sub-collection beneath each file document. Every row batch is one
// transaction, which Firestore caps at 500 writes.
package firestore

import (
	"context"
	"fmt"
	"time"

	gcfirestore "cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ideamans/excelview"
)

// Store implements excelview.Store using Cloud Firestore
type Store struct {
	client *gcfirestore.Client
}

// New validates config and connects to the project's default database
func New(ctx context.Context, config Config, opts ...option.ClientOption) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := gcfirestore.NewClient(ctx, config.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

// NewWithCredentials resolves credentials with ClientOptions and connects
func NewWithCredentials(ctx context.Context, config Config) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts, err := ClientOptions(ctx, config)
	if err != nil {
		return nil, err
	}
	return New(ctx, config, opts...)
}

// NewWithClient wraps an existing client. Close closes the client.
func NewWithClient(client *gcfirestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) files(uid string) *gcfirestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("excelFiles")
}

func (s *Store) rows(uid, fileID string) *gcfirestore.CollectionRef {
	return s.files(uid).Doc(fileID).Collection("rows")
}

// CreateFile writes the file document; uploadDate is set by the server
func (s *Store) CreateFile(ctx context.Context, uid string, file excelview.FileRecord) error {
	headers := file.Headers
	if headers == nil {
		headers = []string{}
	}

	_, err := s.files(uid).Doc(file.ID).Set(ctx, map[string]interface{}{
		"fileName":   file.FileName,
		"uploadDate": gcfirestore.ServerTimestamp,
		"headers":    headers,
	})
	if err != nil {
		return excelview.NewWriteError("createFile", excelview.FilePath(uid, file.ID), 1, translateError(err))
	}
	return nil
}

// WriteRowBatch writes rows in a single transaction without retries
func (s *Store) WriteRowBatch(ctx context.Context, uid, fileID string, rows []excelview.RowRecord) error {
	path := excelview.RowsPath(uid, fileID)
	if len(rows) > excelview.MaxStoreBatch {
		return excelview.NewWriteError("writeRowBatch", path, len(rows), excelview.ErrBatchTooLarge)
	}

	fileRef := s.files(uid).Doc(fileID)
	rowsRef := s.rows(uid, fileID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *gcfirestore.Transaction) error {
		if _, err := tx.Get(fileRef); err != nil {
			return err
		}
		for _, row := range rows {
			if err := tx.Set(rowsRef.Doc(row.ID), row.Fields()); err != nil {
				return err
			}
		}
		return nil
	}, gcfirestore.MaxAttempts(1))
	if err != nil {
		return excelview.NewWriteError("writeRowBatch", path, len(rows), translateError(err))
	}
	return nil
}

// ListFiles returns the user's files ordered by uploadDate, newest first
func (s *Store) ListFiles(ctx context.Context, uid string) ([]excelview.FileRecord, error) {
	docs, err := s.files(uid).OrderBy("uploadDate", gcfirestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", translateError(err))
	}

	files := make([]excelview.FileRecord, 0, len(docs))
	for _, doc := range docs {
		files = append(files, fileFromData(doc.Ref.ID, doc.Data()))
	}
	return files, nil
}

// GetFile returns one FileRecord or excelview.ErrFileNotFound
func (s *Store) GetFile(ctx context.Context, uid, fileID string) (excelview.FileRecord, error) {
	doc, err := s.files(uid).Doc(fileID).Get(ctx)
	if err != nil {
		return excelview.FileRecord{}, translateError(err)
	}
	return fileFromData(doc.Ref.ID, doc.Data()), nil
}

// ListRows returns the rows of fileID ordered by rowIndex
func (s *Store) ListRows(ctx context.Context, uid, fileID string) ([]excelview.RowRecord, error) {
	docs, err := s.rows(uid, fileID).OrderBy("rowIndex", gcfirestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list rows: %w", translateError(err))
	}

	rows := make([]excelview.RowRecord, 0, len(docs))
	for _, doc := range docs {
		row := excelview.RowRecordFromFields(doc.Ref.ID, doc.Data())
		if row.ExcelFileID == "" {
			row.ExcelFileID = fileID
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ListRowIDs returns the ids of every row document under fileID
func (s *Store) ListRowIDs(ctx context.Context, uid, fileID string) ([]string, error) {
	refs, err := s.rows(uid, fileID).DocumentRefs(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list row ids: %w", translateError(err))
	}

	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}
	return ids, nil
}

// DeleteRowBatch deletes rows in a single transaction without retries
func (s *Store) DeleteRowBatch(ctx context.Context, uid, fileID string, rowIDs []string) error {
	path := excelview.RowsPath(uid, fileID)
	if len(rowIDs) > excelview.MaxStoreBatch {
		return excelview.NewWriteError("deleteRowBatch", path, len(rowIDs), excelview.ErrBatchTooLarge)
	}

	rowsRef := s.rows(uid, fileID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *gcfirestore.Transaction) error {
		for _, id := range rowIDs {
			if err := tx.Delete(rowsRef.Doc(id)); err != nil {
				return err
			}
		}
		return nil
	}, gcfirestore.MaxAttempts(1))
	if err != nil {
		return excelview.NewWriteError("deleteRowBatch", path, len(rowIDs), translateError(err))
	}
	return nil
}

// DeleteFile deletes the file document. Row documents are not removed by
// Firestore along with their parent, so callers delete them first.
func (s *Store) DeleteFile(ctx context.Context, uid, fileID string) error {
	if _, err := s.files(uid).Doc(fileID).Delete(ctx); err != nil {
		return excelview.NewWriteError("deleteFile", excelview.FilePath(uid, fileID), 1, translateError(err))
	}
	return nil
}

// Close closes the Firestore client
func (s *Store) Close() error {
	return s.client.Close()
}

// translateError maps gRPC status codes onto the excelview error sentinels
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %v", excelview.ErrPermissionDenied, err)
	case codes.NotFound:
		return fmt.Errorf("%w: %v", excelview.ErrFileNotFound, err)
	}
	return err
}

// fileFromData converts a file document. A missing uploadDate means the
// server timestamp has not been resolved yet.
func fileFromData(id string, data map[string]interface{}) excelview.FileRecord {
	file := excelview.FileRecord{
		ID:         id,
		UploadDate: excelview.PendingTimestamp(),
		Headers:    []string{},
	}
	if v, ok := data["fileName"].(string); ok {
		file.FileName = v
	}
	if v, ok := data["uploadDate"].(time.Time); ok {
		file.UploadDate = excelview.CommittedAt(v)
	}
	if v, ok := data["headers"].([]interface{}); ok {
		for _, h := range v {
			s, _ := h.(string)
			file.Headers = append(file.Headers, s)
		}
	}
	return file
}
