package excelview

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	progressStart    = 0
	progressBaseline = 5
	progressRowSpan  = 90
	progressCeiling  = 95
	progressDone     = 100
)

// ProgressFunc receives upload progress as a percentage in [0, 100].
// Values never decrease within one upload. Progress says nothing about
// durability; only the result of Upload does.
type ProgressFunc func(percent int)

// UploadResult identifies a fully written table
type UploadResult struct {
	FileID   string
	RowCount int
}

// OpenedFile is a FileRecord with its rows projected for display
type OpenedFile struct {
	File FileRecord
	Rows [][]string
}

// Engine writes parsed tables into a Store and removes them again,
// keeping every store operation within the batch limit
type Engine struct {
	config Config
	store  Store
	logger Logger
	newID  func() string
}

// New creates an engine over store. A nil config uses DefaultConfig and a
// nil logger discards output.
func New(store Store, config *Config, logger Logger) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config

	// Set defaults for zero values
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchSize > MaxStoreBatch {
		cfg.BatchSize = MaxStoreBatch
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	if logger == nil {
		logger = NewNopLogger()
	}

	return &Engine{
		config: cfg,
		store:  store,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// BatchSize returns the effective number of records per store operation
func (e *Engine) BatchSize() int {
	return e.config.BatchSize
}

// Upload writes table as a new FileRecord followed by its rows in sequential
// chunks. The FileRecord is written first; when it fails nothing else is
// attempted. When a chunk fails the remaining chunks are skipped and the
// FileRecord stays in the store with the rows written so far.
func (e *Engine) Upload(ctx context.Context, uid string, table Table, progress ProgressFunc) (*UploadResult, error) {
	if uid == "" {
		return nil, ErrAuthRequired
	}
	report := newProgressReporter(progress)
	report(progressStart)

	fileID := e.newID()
	file := FileRecord{
		ID:         fileID,
		FileName:   table.FileName,
		UploadDate: PendingTimestamp(),
		Headers:    clipCells(table.Headers),
	}
	if err := e.store.CreateFile(ctx, uid, file); err != nil {
		e.logFailure("upload", fileID, err)
		return nil, &SyncError{Op: "upload", FileID: fileID, Chunk: -1, Err: err}
	}
	report(progressBaseline)

	total := len(table.Rows)
	written := 0
	chunks := chunk(table.Rows, e.config.BatchSize)
	for k, rows := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, &SyncError{Op: "upload", FileID: fileID, Chunk: k, Done: written, Err: err}
		}

		batch := make([]RowRecord, len(rows))
		for i, cells := range rows {
			batch[i] = NewRowRecord(e.newID(), fileID, written+i, cells)
		}

		if err := e.store.WriteRowBatch(ctx, uid, fileID, batch); err != nil {
			e.logFailure("upload", fileID, err)
			return nil, &SyncError{Op: "upload", FileID: fileID, Chunk: k, Done: written, Err: err}
		}
		written += len(batch)
		e.logger.Debug("row chunk written", "file_id", fileID, "chunk", k, "rows", len(batch))
		report(rowProgress(written, total))
	}

	report(progressDone)
	e.logger.Info("upload complete", "file_id", fileID, "file_name", table.FileName, "rows", total, "chunks", len(chunks))
	e.settle(ctx)

	return &UploadResult{FileID: fileID, RowCount: total}, nil
}

// Remove deletes every row of fileID in sequential chunks, then the
// FileRecord itself. If a row chunk fails the FileRecord is kept so the
// removal can be retried.
func (e *Engine) Remove(ctx context.Context, uid, fileID string) error {
	if uid == "" {
		return ErrAuthRequired
	}

	ids, err := e.store.ListRowIDs(ctx, uid, fileID)
	if err != nil {
		e.logFailure("remove", fileID, err)
		return &SyncError{Op: "remove", FileID: fileID, Chunk: -1, Err: err}
	}

	deleted := 0
	for k, batch := range chunk(ids, e.config.BatchSize) {
		if err := ctx.Err(); err != nil {
			return &SyncError{Op: "remove", FileID: fileID, Chunk: k, Done: deleted, Err: err}
		}
		if err := e.store.DeleteRowBatch(ctx, uid, fileID, batch); err != nil {
			e.logFailure("remove", fileID, err)
			return &SyncError{Op: "remove", FileID: fileID, Chunk: k, Done: deleted, Err: err}
		}
		deleted += len(batch)
	}

	if err := e.store.DeleteFile(ctx, uid, fileID); err != nil {
		e.logFailure("remove", fileID, err)
		return &SyncError{Op: "remove", FileID: fileID, Chunk: -1, Done: deleted, Err: err}
	}

	e.logger.Info("file removed", "file_id", fileID, "rows", deleted)
	return nil
}

// ListFiles returns the user's files, newest upload first
func (e *Engine) ListFiles(ctx context.Context, uid string) ([]FileRecord, error) {
	if uid == "" {
		return nil, ErrAuthRequired
	}

	files, err := e.store.ListFiles(ctx, uid)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[j].UploadDate.Before(files[i].UploadDate)
	})
	return files, nil
}

// Open reads a FileRecord and its rows and projects the rows to the
// file's header count
func (e *Engine) Open(ctx context.Context, uid, fileID string) (*OpenedFile, error) {
	if uid == "" {
		return nil, ErrAuthRequired
	}

	file, err := e.store.GetFile(ctx, uid, fileID)
	if err != nil {
		return nil, err
	}

	rows, err := e.store.ListRows(ctx, uid, fileID)
	if err != nil {
		return nil, err
	}

	return &OpenedFile{
		File: file,
		Rows: Project(file.Headers, rows),
	}, nil
}

// logFailure emits one structured event per failed store operation.
// Authorization failures get their own message so they can be told apart
// from transient ones.
func (e *Engine) logFailure(op, fileID string, err error) {
	var we *WriteError
	if !errors.As(err, &we) {
		e.logger.Error("store read failed", "op", op, "file_id", fileID, "error", err)
		return
	}

	msg := "store write failed"
	if IsPermissionDenied(err) {
		msg = "store permission denied"
	}
	e.logger.Error(msg,
		"op", op,
		"file_id", fileID,
		"store_op", we.Op,
		"path", we.Path,
		"count", we.Count,
		"error", we.Err,
	)
}

// settle waits for the configured delay or until ctx is done
func (e *Engine) settle(ctx context.Context) {
	if e.config.SettleDelay <= 0 {
		return
	}
	timer := time.NewTimer(e.config.SettleDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// rowProgress maps committed rows to the 5..95 band
func rowProgress(written, total int) int {
	if total <= 0 {
		return progressCeiling
	}
	p := progressBaseline + int(math.Round(float64(written)/float64(total)*progressRowSpan))
	if p > progressCeiling {
		p = progressCeiling
	}
	return p
}

// newProgressReporter drops nil callbacks and values lower than the last one sent
func newProgressReporter(fn ProgressFunc) ProgressFunc {
	last := -1
	return func(percent int) {
		if fn == nil || percent < last {
			return
		}
		last = percent
		fn(percent)
	}
}

// clipCells returns at most ColumnCount cells
func clipCells(cells []string) []string {
	n := len(cells)
	if n > ColumnCount {
		n = ColumnCount
	}
	out := make([]string, n)
	copy(out, cells)
	return out
}
