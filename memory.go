package excelview

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It keeps the same batch limit and
// ordering guarantees as the remote stores and is used for tests and previews.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[string]map[string]*memoryFile // uid -> file id -> file
	now    func() time.Time
	closed bool
}

type memoryFile struct {
	record FileRecord
	rows   map[string]RowRecord // row id -> row
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]map[string]*memoryFile),
		now:   time.Now,
	}
}

// SetClock replaces the source of upload timestamps
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// CreateFile stores file with a committed upload date
func (s *MemoryStore) CreateFile(ctx context.Context, uid string, file FileRecord) error {
	if err := ctx.Err(); err != nil {
		return NewWriteError("createFile", FilePath(uid, file.ID), 1, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewWriteError("createFile", FilePath(uid, file.ID), 1, ErrStoreClosed)
	}

	files, ok := s.users[uid]
	if !ok {
		files = make(map[string]*memoryFile)
		s.users[uid] = files
	}

	record := copyFileRecord(file)
	record.UploadDate = CommittedAt(s.now())
	files[file.ID] = &memoryFile{
		record: record,
		rows:   make(map[string]RowRecord),
	}
	return nil
}

// WriteRowBatch stores all rows or none of them
func (s *MemoryStore) WriteRowBatch(ctx context.Context, uid, fileID string, rows []RowRecord) error {
	path := RowsPath(uid, fileID)
	if len(rows) > MaxStoreBatch {
		return NewWriteError("writeRowBatch", path, len(rows), ErrBatchTooLarge)
	}
	if err := ctx.Err(); err != nil {
		return NewWriteError("writeRowBatch", path, len(rows), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewWriteError("writeRowBatch", path, len(rows), ErrStoreClosed)
	}

	file := s.file(uid, fileID)
	if file == nil {
		return NewWriteError("writeRowBatch", path, len(rows), ErrFileNotFound)
	}
	for _, row := range rows {
		file.rows[row.ID] = row
	}
	return nil
}

// ListFiles returns the user's files, newest first
func (s *MemoryStore) ListFiles(ctx context.Context, uid string) ([]FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	files := make([]FileRecord, 0, len(s.users[uid]))
	for _, f := range s.users[uid] {
		files = append(files, copyFileRecord(f.record))
	}

	sort.Slice(files, func(i, j int) bool {
		return files[j].UploadDate.Before(files[i].UploadDate)
	})
	return files, nil
}

// GetFile returns one FileRecord
func (s *MemoryStore) GetFile(ctx context.Context, uid, fileID string) (FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return FileRecord{}, ErrStoreClosed
	}

	file := s.file(uid, fileID)
	if file == nil {
		return FileRecord{}, ErrFileNotFound
	}
	return copyFileRecord(file.record), nil
}

// ListRows returns the rows of fileID sorted by RowIndex
func (s *MemoryStore) ListRows(ctx context.Context, uid, fileID string) ([]RowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	file := s.file(uid, fileID)
	if file == nil {
		return []RowRecord{}, nil
	}

	rows := make([]RowRecord, 0, len(file.rows))
	for _, row := range file.rows {
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].RowIndex < rows[j].RowIndex
	})
	return rows, nil
}

// ListRowIDs returns the ids of every row under fileID
func (s *MemoryStore) ListRowIDs(ctx context.Context, uid, fileID string) ([]string, error) {
	rows, err := s.ListRows(ctx, uid, fileID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}

// DeleteRowBatch removes the given rows. Unknown ids are ignored.
func (s *MemoryStore) DeleteRowBatch(ctx context.Context, uid, fileID string, rowIDs []string) error {
	path := RowsPath(uid, fileID)
	if len(rowIDs) > MaxStoreBatch {
		return NewWriteError("deleteRowBatch", path, len(rowIDs), ErrBatchTooLarge)
	}
	if err := ctx.Err(); err != nil {
		return NewWriteError("deleteRowBatch", path, len(rowIDs), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewWriteError("deleteRowBatch", path, len(rowIDs), ErrStoreClosed)
	}

	file := s.file(uid, fileID)
	if file == nil {
		return nil
	}
	for _, id := range rowIDs {
		delete(file.rows, id)
	}
	return nil
}

// DeleteFile removes the FileRecord. Rows still present under it are
// dropped with it, as they would become unreachable.
func (s *MemoryStore) DeleteFile(ctx context.Context, uid, fileID string) error {
	if err := ctx.Err(); err != nil {
		return NewWriteError("deleteFile", FilePath(uid, fileID), 1, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewWriteError("deleteFile", FilePath(uid, fileID), 1, ErrStoreClosed)
	}

	if files, ok := s.users[uid]; ok {
		delete(files, fileID)
	}
	return nil
}

// Size returns the number of files and rows held for uid
func (s *MemoryStore) Size(uid string) (files, rows int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.users[uid] {
		files++
		rows += len(f.rows)
	}
	return files, rows
}

// Close marks the store closed. Further calls fail with ErrStoreClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func (s *MemoryStore) file(uid, fileID string) *memoryFile {
	files, ok := s.users[uid]
	if !ok {
		return nil
	}
	return files[fileID]
}

// copyFileRecord creates a copy that does not share the headers slice
func copyFileRecord(record FileRecord) FileRecord {
	copy := record
	copy.Headers = append([]string(nil), record.Headers...)
	return copy
}
