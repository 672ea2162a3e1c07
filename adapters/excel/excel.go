package excel

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/extrame/xls"
	"github.com/ideamans/excelview"
	"github.com/xuri/excelize/v2"
)

// Parser turns workbook bytes into an excelview.Table and writes tables back to .xlsx
type Parser struct {
	config *Config
}

// New creates a new parser with the given configuration. A nil config uses DefaultConfig.
func New(config *Config) (*Parser, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create a copy of config to avoid external modifications
	configCopy := *config
	if configCopy.Charset == "" {
		configCopy.Charset = defaultCharset
	}
	if configCopy.SheetName == "" {
		configCopy.SheetName = defaultSheetName
	}

	return &Parser{
		config: &configCopy,
	}, nil
}

// ParseFile reads and parses the workbook at path
func (p *Parser) ParseFile(path string) (excelview.Table, error) {
	if path == "" {
		return excelview.Table{}, ErrMissingFilePath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return excelview.Table{}, fmt.Errorf("failed to read workbook: %w", err)
	}
	return p.Parse(filepath.Base(path), data)
}

// Parse reads the first sheet of the workbook in data. The first row becomes
// the headers and the remaining rows the body. Every row is cut to
// excelview.ColumnCount cells and padded with "" to the sheet width.
func (p *Parser) Parse(name string, data []byte) (excelview.Table, error) {
	var (
		rows [][]string
		err  error
	)

	switch DetectFormat(name, data) {
	case FormatXLSX:
		rows, err = readXLSX(data)
	case FormatXLS:
		rows, err = readXLS(data, p.config.Charset)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return excelview.Table{}, &excelview.ParseError{
			FileName: name,
			Err:      fmt.Errorf("%w: %v", excelview.ErrUnreadableFile, err),
		}
	}

	rows = normalizeRows(rows)
	if len(rows) == 0 {
		return excelview.Table{}, &excelview.ParseError{FileName: name, Err: excelview.ErrEmptySheet}
	}

	return excelview.Table{
		FileName: name,
		Headers:  rows[0],
		Rows:     rows[1:],
	}, nil
}

// readXLSX returns the formatted cell text of the first sheet
func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// readXLS returns the cell text of the first sheet of a BIFF workbook.
// The decoder panics on some malformed input; that is reported as an error.
func readXLS(data []byte, charset string) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("corrupt xls data: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), charset)
	if err != nil {
		return nil, err
	}
	if wb == nil {
		return nil, fmt.Errorf("no workbook stream found")
	}
	if wb.NumSheets() == 0 {
		return nil, nil
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	rows = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		rows = append(rows, xlsRow(sheet, i))
	}
	return rows, nil
}

// xlsRow reads the first cells of row i. Rows the sheet does not define are empty.
func xlsRow(sheet *xls.WorkSheet, i int) (cells []string) {
	defer func() {
		if recover() != nil {
			cells = nil
		}
	}()

	row := sheet.Row(i)
	if row == nil {
		return nil
	}
	cells = make([]string, excelview.ColumnCount)
	for c := range cells {
		cells[c] = row.Col(c)
	}
	return cells
}

// normalizeRows cuts rows to ColumnCount cells, drops trailing blank rows and
// pads every row with "" to the widest remaining row
func normalizeRows(rows [][]string) [][]string {
	width := 0
	out := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) > excelview.ColumnCount {
			row = row[:excelview.ColumnCount]
		}
		row = trimTrailingBlanks(row)
		if len(row) > width {
			width = len(row)
		}
		out[i] = row
	}

	last := len(out)
	for last > 0 && len(out[last-1]) == 0 {
		last--
	}
	out = out[:last]

	for i, row := range out {
		padded := make([]string, width)
		copy(padded, row)
		out[i] = padded
	}
	return out
}

func trimTrailingBlanks(row []string) []string {
	n := len(row)
	for n > 0 && row[n-1] == "" {
		n--
	}
	return row[:n]
}

// Export writes headers and rows to a new .xlsx file at path
func (p *Parser) Export(path string, headers []string, rows [][]string) error {
	if path == "" {
		return ErrMissingFilePath
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create Excel file: %w", err)
	}

	if err := p.Write(f, headers, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes headers and rows as a single-sheet .xlsx workbook to w
func (p *Parser) Write(w io.Writer, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := p.config.SheetName
	if sheet != defaultSheetName {
		if err := f.SetSheetName(defaultSheetName, sheet); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSheetName, err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	if err := sw.SetRow("A1", toValues(headers)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, toValues(row)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func toValues(cells []string) []interface{} {
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	return values
}
