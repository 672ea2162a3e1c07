// Package sqlite implements excelview.Store on a local SQLite database.
// Each batch runs in one transaction, so a rejected batch leaves nothing behind.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ideamans/excelview"
)

//go:embed schema.sql
var schemaSQL string

// Store implements excelview.Store using SQLite
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	now    func() time.Time
	closed bool
}

// New opens (creating if needed) the database at config.Path and applies the schema
func New(config *Config) (*Store, error) {
	if config == nil {
		return nil, ErrMissingPath
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serialises writers and keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{
		db:  db,
		now: time.Now,
	}, nil
}

// SetClock replaces the source of upload timestamps
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// CreateFile inserts or replaces the FileRecord with a committed upload date
func (s *Store) CreateFile(ctx context.Context, uid string, file excelview.FileRecord) error {
	path := excelview.FilePath(uid, file.ID)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return excelview.NewWriteError("createFile", path, 1, excelview.ErrStoreClosed)
	}

	headers, err := json.Marshal(headersOrEmpty(file.Headers))
	if err != nil {
		return excelview.NewWriteError("createFile", path, 1, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO excel_files (uid, id, file_name, upload_date, headers) VALUES (?, ?, ?, ?, ?)`,
		uid, file.ID, file.FileName, s.now().UnixNano(), string(headers))
	if err != nil {
		return excelview.NewWriteError("createFile", path, 1, err)
	}
	return nil
}

// WriteRowBatch inserts rows in one transaction
func (s *Store) WriteRowBatch(ctx context.Context, uid, fileID string, rows []excelview.RowRecord) error {
	path := excelview.RowsPath(uid, fileID)
	if len(rows) > excelview.MaxStoreBatch {
		return excelview.NewWriteError("writeRowBatch", path, len(rows), excelview.ErrBatchTooLarge)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return excelview.NewWriteError("writeRowBatch", path, len(rows), excelview.ErrStoreClosed)
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := fileExists(ctx, tx, uid, fileID)
		if err != nil {
			return err
		}
		if !exists {
			return excelview.ErrFileNotFound
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO excel_rows
			 (uid, excel_file_id, id, row_index, column_a, column_b, column_c, column_d, column_e)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, row := range rows {
			_, err := stmt.ExecContext(ctx, uid, fileID, row.ID, row.RowIndex,
				row.ColumnA, row.ColumnB, row.ColumnC, row.ColumnD, row.ColumnE)
			if err != nil {
				return fmt.Errorf("row %s: %w", row.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return excelview.NewWriteError("writeRowBatch", path, len(rows), err)
	}
	return nil
}

// ListFiles returns the user's files, newest first
func (s *Store) ListFiles(ctx context.Context, uid string) ([]excelview.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, excelview.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, upload_date, headers FROM excel_files
		 WHERE uid = ? ORDER BY upload_date DESC, rowid DESC`, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	files := []excelview.FileRecord{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// GetFile returns one FileRecord or excelview.ErrFileNotFound
func (s *Store) GetFile(ctx context.Context, uid, fileID string) (excelview.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return excelview.FileRecord{}, excelview.ErrStoreClosed
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, file_name, upload_date, headers FROM excel_files WHERE uid = ? AND id = ?`,
		uid, fileID)
	file, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return excelview.FileRecord{}, excelview.ErrFileNotFound
	}
	return file, err
}

// ListRows returns the rows of fileID ordered by row index
func (s *Store) ListRows(ctx context.Context, uid, fileID string) ([]excelview.RowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, excelview.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, row_index, column_a, column_b, column_c, column_d, column_e FROM excel_rows
		 WHERE uid = ? AND excel_file_id = ? ORDER BY row_index`, uid, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rows: %w", err)
	}
	defer rows.Close()

	records := []excelview.RowRecord{}
	for rows.Next() {
		r := excelview.RowRecord{ExcelFileID: fileID}
		if err := rows.Scan(&r.ID, &r.RowIndex, &r.ColumnA, &r.ColumnB, &r.ColumnC, &r.ColumnD, &r.ColumnE); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListRowIDs returns the ids of every row under fileID
func (s *Store) ListRowIDs(ctx context.Context, uid, fileID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, excelview.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM excel_rows WHERE uid = ? AND excel_file_id = ? ORDER BY row_index`, uid, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list row ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan row id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteRowBatch deletes the given rows in one transaction. Unknown ids are ignored.
func (s *Store) DeleteRowBatch(ctx context.Context, uid, fileID string, rowIDs []string) error {
	path := excelview.RowsPath(uid, fileID)
	if len(rowIDs) > excelview.MaxStoreBatch {
		return excelview.NewWriteError("deleteRowBatch", path, len(rowIDs), excelview.ErrBatchTooLarge)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return excelview.NewWriteError("deleteRowBatch", path, len(rowIDs), excelview.ErrStoreClosed)
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`DELETE FROM excel_rows WHERE uid = ? AND excel_file_id = ? AND id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, id := range rowIDs {
			if _, err := stmt.ExecContext(ctx, uid, fileID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return excelview.NewWriteError("deleteRowBatch", path, len(rowIDs), err)
	}
	return nil
}

// DeleteFile deletes the FileRecord together with any rows still under it
func (s *Store) DeleteFile(ctx context.Context, uid, fileID string) error {
	path := excelview.FilePath(uid, fileID)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return excelview.NewWriteError("deleteFile", path, 1, excelview.ErrStoreClosed)
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM excel_rows WHERE uid = ? AND excel_file_id = ?`, uid, fileID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`DELETE FROM excel_files WHERE uid = ? AND id = ?`, uid, fileID)
		return err
	})
	if err != nil {
		return excelview.NewWriteError("deleteFile", path, 1, err)
	}
	return nil
}

// Close closes the database. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func fileExists(ctx context.Context, tx *sql.Tx, uid, fileID string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM excel_files WHERE uid = ? AND id = ?`, uid, fileID).Scan(&n)
	return n > 0, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(sc scanner) (excelview.FileRecord, error) {
	var (
		file       excelview.FileRecord
		uploadedAt int64
		headers    string
	)
	if err := sc.Scan(&file.ID, &file.FileName, &uploadedAt, &headers); err != nil {
		return excelview.FileRecord{}, err
	}
	if err := json.Unmarshal([]byte(headers), &file.Headers); err != nil {
		return excelview.FileRecord{}, fmt.Errorf("corrupt headers for %s: %w", file.ID, err)
	}
	file.UploadDate = excelview.CommittedAt(time.Unix(0, uploadedAt))
	return file, nil
}

func headersOrEmpty(headers []string) []string {
	if headers == nil {
		return []string{}
	}
	return headers
}
