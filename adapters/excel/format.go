package excel

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format is a workbook container format
type Format int

const (
	FormatUnknown Format = iota
	FormatXLSX           // Office Open XML (.xlsx, .xlsm)
	FormatXLS            // BIFF8 in an OLE2 compound file (.xls)
)

func (f Format) String() string {
	switch f {
	case FormatXLSX:
		return "xlsx"
	case FormatXLS:
		return "xls"
	default:
		return "unknown"
	}
}

var (
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFormat identifies the workbook format from the leading bytes of
// data, falling back to the extension of name
func DetectFormat(name string, data []byte) Format {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, ole2Magic):
		return FormatXLS
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	}
	return FormatUnknown
}
