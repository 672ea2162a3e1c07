package excelview

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySheet        = errors.New("sheet is empty")
	ErrUnreadableFile    = errors.New("file is not a readable spreadsheet")
	ErrAuthRequired      = errors.New("authenticated user required")
	ErrFileNotFound      = errors.New("file not found")
	ErrBatchTooLarge     = errors.New("batch exceeds store limit")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrStoreClosed       = errors.New("store is closed")
	ErrInvalidBatchSize  = errors.New("batch size out of range")
	ErrMissingConnection = errors.New("store connection settings are incomplete")
)

// ParseError reports a spreadsheet that could not be turned into a Table.
// Err is ErrEmptySheet or ErrUnreadableFile, possibly wrapping the decoder error.
type ParseError struct {
	FileName string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.FileName, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WriteError is a failed store write or delete. It carries the document path,
// the operation kind and the number of records in the rejected payload.
type WriteError struct {
	Op    string // "createFile", "writeRowBatch", "deleteRowBatch", "deleteFile"
	Path  string
	Count int
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s (%d records): %v", e.Op, e.Path, e.Count, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// NewWriteError creates a new WriteError
func NewWriteError(op, path string, count int, err error) *WriteError {
	return &WriteError{
		Op:    op,
		Path:  path,
		Count: count,
		Err:   err,
	}
}

// SyncError is an aborted upload or removal. Chunk is the zero-based index of
// the failing row chunk, or -1 when the failure happened outside the chunk loop.
// Done is the number of rows already committed when the operation stopped.
type SyncError struct {
	Op     string // "upload" or "remove"
	FileID string
	Chunk  int
	Done   int
	Err    error
}

func (e *SyncError) Error() string {
	if e.Chunk < 0 {
		return fmt.Sprintf("%s %s: %v", e.Op, e.FileID, e.Err)
	}
	return fmt.Sprintf("%s %s: chunk %d (after %d rows): %v", e.Op, e.FileID, e.Chunk, e.Done, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// IsPermissionDenied reports whether err is an authorization failure from the store
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}
