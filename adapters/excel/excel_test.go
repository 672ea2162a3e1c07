package excel

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ideamans/excelview"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook returns .xlsx bytes with one sheet per entry of sheets, in order
func buildWorkbook(t *testing.T, names []string, sheets map[string][][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range names {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName() error = %v", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("NewSheet() error = %v", err)
		}
		for r, row := range sheets[name] {
			if len(row) == 0 {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			values := row
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				t.Fatalf("SetSheetRow() error = %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return buf.Bytes()
}

func newParser(t *testing.T) *Parser {
	t.Helper()
	p, err := New(nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: false,
		},
		{
			name:    "empty config",
			config:  &Config{},
			wantErr: false,
		},
		{
			name:    "custom sheet name",
			config:  &Config{SheetName: "Export"},
			wantErr: false,
		},
		{
			name:    "sheet name too long",
			config:  &Config{SheetName: "abcdefghijklmnopqrstuvwxyz012345"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
		want Format
	}{
		{"zip magic", "upload.bin", []byte("PK\x03\x04rest"), FormatXLSX},
		{"ole2 magic", "upload.bin", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0}, FormatXLS},
		{"xlsx extension", "a.XLSX", []byte("junk"), FormatXLSX},
		{"xlsm extension", "a.xlsm", nil, FormatXLSX},
		{"xls extension", "a.xls", nil, FormatXLS},
		{"csv", "a.csv", []byte("a,b\n1,2\n"), FormatUnknown},
		{"magic wins over extension", "a.xls", []byte("PK\x03\x04"), FormatXLSX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.file, tt.data); got != tt.want {
				t.Errorf("DetectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name        string
		rows        [][]interface{}
		wantHeaders []string
		wantRows    [][]string
	}{
		{
			name: "simple table",
			rows: [][]interface{}{
				{"Name", "Age"},
				{"Alice", 30},
				{"Bob", 25},
			},
			wantHeaders: []string{"Name", "Age"},
			wantRows:    [][]string{{"Alice", "30"}, {"Bob", "25"}},
		},
		{
			name: "columns beyond E are dropped",
			rows: [][]interface{}{
				{"A", "B", "C", "D", "E", "F", "G"},
				{1, 2, 3, 4, 5, 6, 7},
			},
			wantHeaders: []string{"A", "B", "C", "D", "E"},
			wantRows:    [][]string{{"1", "2", "3", "4", "5"}},
		},
		{
			name: "short rows are padded",
			rows: [][]interface{}{
				{"A", "B", "C"},
				{"x"},
			},
			wantHeaders: []string{"A", "B", "C"},
			wantRows:    [][]string{{"x", "", ""}},
		},
		{
			name: "body wider than header",
			rows: [][]interface{}{
				{"A"},
				{"x", "y"},
			},
			wantHeaders: []string{"A", ""},
			wantRows:    [][]string{{"x", "y"}},
		},
		{
			name: "interior blank row kept",
			rows: [][]interface{}{
				{"A"},
				{"x"},
				{},
				{"z"},
			},
			wantHeaders: []string{"A"},
			wantRows:    [][]string{{"x"}, {""}, {"z"}},
		},
		{
			name: "header only",
			rows: [][]interface{}{
				{"A", "B"},
			},
			wantHeaders: []string{"A", "B"},
			wantRows:    [][]string{},
		},
	}

	p := newParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildWorkbook(t, []string{"Data"}, map[string][][]interface{}{"Data": tt.rows})

			table, err := p.Parse("book.xlsx", data)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if table.FileName != "book.xlsx" {
				t.Errorf("FileName = %q, want %q", table.FileName, "book.xlsx")
			}
			if !reflect.DeepEqual(table.Headers, tt.wantHeaders) {
				t.Errorf("Headers = %q, want %q", table.Headers, tt.wantHeaders)
			}
			if len(table.Rows) != len(tt.wantRows) {
				t.Fatalf("len(Rows) = %d, want %d", len(table.Rows), len(tt.wantRows))
			}
			for i := range tt.wantRows {
				if !reflect.DeepEqual(table.Rows[i], tt.wantRows[i]) {
					t.Errorf("Rows[%d] = %q, want %q", i, table.Rows[i], tt.wantRows[i])
				}
			}
		})
	}
}

func TestParser_ParseFirstSheetOnly(t *testing.T) {
	data := buildWorkbook(t, []string{"First", "Second"}, map[string][][]interface{}{
		"First":  {{"One"}, {"1"}},
		"Second": {{"Two"}, {"2"}, {"3"}},
	})

	table, err := newParser(t).Parse("multi.xlsx", data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(table.Headers, []string{"One"}) {
		t.Errorf("Headers = %q, want [One]", table.Headers)
	}
	if len(table.Rows) != 1 {
		t.Errorf("len(Rows) = %d, want 1", len(table.Rows))
	}
}

func TestParser_ParseErrors(t *testing.T) {
	empty := buildWorkbook(t, []string{"Sheet1"}, nil)

	tests := []struct {
		name string
		file string
		data []byte
		want error
	}{
		{"empty sheet", "empty.xlsx", empty, excelview.ErrEmptySheet},
		{"garbage with xlsx name", "broken.xlsx", []byte("not a workbook"), excelview.ErrUnreadableFile},
		{"truncated zip", "broken.xlsx", []byte("PK\x03\x04\x00\x00"), excelview.ErrUnreadableFile},
		{"garbage with xls name", "broken.xls", []byte("not a workbook"), excelview.ErrUnreadableFile},
		{"csv", "data.csv", []byte("a,b\n1,2\n"), excelview.ErrUnreadableFile},
	}

	p := newParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.file, tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.want)
			}
			var perr *excelview.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse() error type = %T, want *excelview.ParseError", err)
			}
			if perr.FileName != tt.file {
				t.Errorf("ParseError.FileName = %q, want %q", perr.FileName, tt.file)
			}
		})
	}
}

func TestParser_ParseFile(t *testing.T) {
	p := newParser(t)

	if _, err := p.ParseFile(""); err != ErrMissingFilePath {
		t.Errorf("ParseFile(\"\") error = %v, want %v", err, ErrMissingFilePath)
	}
	if _, err := p.ParseFile(filepath.Join(t.TempDir(), "missing.xlsx")); err == nil {
		t.Error("ParseFile() on missing file succeeded")
	}
}

func TestParser_ExportRoundTrip(t *testing.T) {
	p, err := New(&Config{SheetName: "Rows"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	headers := []string{"Name", "Email", "Age"}
	rows := [][]string{
		{"Alice", "alice@example.com", "30"},
		{"Bob", "", "25"},
	}

	path := filepath.Join(t.TempDir(), "nested", "out.xlsx")
	if err := p.Export(path, headers, rows); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	table, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if table.FileName != "out.xlsx" {
		t.Errorf("FileName = %q, want out.xlsx", table.FileName)
	}
	if !reflect.DeepEqual(table.Headers, headers) {
		t.Errorf("Headers = %q, want %q", table.Headers, headers)
	}
	if !reflect.DeepEqual(table.Rows, rows) {
		t.Errorf("Rows = %q, want %q", table.Rows, rows)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{"Rows"}) {
		t.Errorf("GetSheetList() = %q, want [Rows]", got)
	}
}

func TestParser_WriteInvalidSheetName(t *testing.T) {
	p, err := New(&Config{SheetName: "bad/name"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var buf bytes.Buffer
	err = p.Write(&buf, []string{"A"}, nil)
	if !errors.Is(err, ErrInvalidSheetName) {
		t.Errorf("Write() error = %v, want %v", err, ErrInvalidSheetName)
	}
}

func TestNormalizeRows(t *testing.T) {
	tests := []struct {
		name string
		in   [][]string
		want [][]string
	}{
		{"nil", nil, [][]string{}},
		{"all blank", [][]string{{"", ""}, {}}, [][]string{}},
		{"trailing blank rows dropped", [][]string{{"a"}, {"b"}, {""}, {}}, [][]string{{"a"}, {"b"}}},
		{"trailing blank cells trimmed then padded", [][]string{{"a", "", ""}, {"b", "c"}}, [][]string{{"a", ""}, {"b", "c"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeRows(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("normalizeRows() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if !reflect.DeepEqual(got[i], tt.want[i]) {
					t.Errorf("normalizeRows()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
