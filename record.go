package excelview

import (
	"fmt"
	"strconv"
	"time"
)

// ColumnCount is the number of positional columns kept from an imported sheet (A to E)
const ColumnCount = 5

// ColumnFields are the stored field names of the five positional slots
var ColumnFields = [ColumnCount]string{"columnA", "columnB", "columnC", "columnD", "columnE"}

// Timestamp is the upload time of a FileRecord. It is either pending
// (written by the client, not yet acknowledged by the store) or committed
// at a store-assigned instant.
type Timestamp struct {
	committed bool
	at        time.Time
}

// PendingTimestamp returns a timestamp the store has not assigned yet
func PendingTimestamp() Timestamp {
	return Timestamp{}
}

// CommittedAt returns a store-assigned timestamp
func CommittedAt(t time.Time) Timestamp {
	return Timestamp{committed: true, at: t}
}

// IsPending reports whether the store has not assigned the instant yet
func (ts Timestamp) IsPending() bool {
	return !ts.committed
}

// Time returns the committed instant, or the zero time when pending
func (ts Timestamp) Time() time.Time {
	return ts.at
}

// Before reports whether ts sorts before other. Pending timestamps sort
// after every committed one, and equal to each other.
func (ts Timestamp) Before(other Timestamp) bool {
	switch {
	case ts.IsPending():
		return false
	case other.IsPending():
		return true
	default:
		return ts.at.Before(other.at)
	}
}

// String returns RFC 3339 for committed timestamps and "pending" otherwise
func (ts Timestamp) String() string {
	if ts.IsPending() {
		return "pending"
	}
	return ts.at.Format(time.RFC3339)
}

// FileRecord is the persisted metadata of one imported table
type FileRecord struct {
	ID         string
	FileName   string
	UploadDate Timestamp
	Headers    []string
}

// RowRecord is one persisted data row of a FileRecord
type RowRecord struct {
	ID          string
	ExcelFileID string
	RowIndex    int
	ColumnA     string
	ColumnB     string
	ColumnC     string
	ColumnD     string
	ColumnE     string
}

// NewRowRecord builds a row from positional cells. Cells beyond ColumnCount
// are dropped and missing ones are stored as "".
func NewRowRecord(id, fileID string, rowIndex int, cells []string) RowRecord {
	r := RowRecord{
		ID:          id,
		ExcelFileID: fileID,
		RowIndex:    rowIndex,
	}
	r.SetCells(cells)
	return r
}

// Cells returns the five slots in positional order
func (r *RowRecord) Cells() [ColumnCount]string {
	return [ColumnCount]string{r.ColumnA, r.ColumnB, r.ColumnC, r.ColumnD, r.ColumnE}
}

// Cell returns the slot at position i, or "" when i is out of range
func (r *RowRecord) Cell(i int) string {
	if i < 0 || i >= ColumnCount {
		return ""
	}
	return r.Cells()[i]
}

// SetCells overwrites all five slots from cells
func (r *RowRecord) SetCells(cells []string) {
	var slots [ColumnCount]string
	copy(slots[:], cells)
	r.ColumnA, r.ColumnB, r.ColumnC, r.ColumnD, r.ColumnE = slots[0], slots[1], slots[2], slots[3], slots[4]
}

// Fields returns the row as a field map using the stored field names
func (r *RowRecord) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"excelFileId": r.ExcelFileID,
		"rowIndex":    int64(r.RowIndex),
	}
	for i, v := range r.Cells() {
		fields[ColumnFields[i]] = v
	}
	return fields
}

// RowRecordFromFields is the inverse of Fields. Values of unexpected types
// are stringified; missing columns become "".
func RowRecordFromFields(id string, fields map[string]interface{}) RowRecord {
	r := RowRecord{ID: id}
	if v, ok := fields["excelFileId"].(string); ok {
		r.ExcelFileID = v
	}
	switch v := fields["rowIndex"].(type) {
	case int64:
		r.RowIndex = int(v)
	case int:
		r.RowIndex = v
	case float64:
		r.RowIndex = int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			r.RowIndex = i
		}
	}

	cells := make([]string, ColumnCount)
	for i, name := range ColumnFields {
		switch v := fields[name].(type) {
		case nil:
		case string:
			cells[i] = v
		default:
			cells[i] = fmt.Sprintf("%v", v)
		}
	}
	r.SetCells(cells)
	return r
}

// Table is a parsed sheet: a header row plus body rows, each at most
// ColumnCount cells wide
type Table struct {
	FileName string
	Headers  []string
	Rows     [][]string
}
