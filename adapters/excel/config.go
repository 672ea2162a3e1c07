package excel

import (
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	defaultCharset   = "utf-8"
	defaultSheetName = "Sheet1"
)

// Config holds configuration for the Excel parser and exporter
type Config struct {
	Charset   string // Charset of legacy .xls string records (default: "utf-8")
	SheetName string // Name of the sheet written by Export (default: "Sheet1")
}

// DefaultConfig returns the configuration used when New is given nil
func DefaultConfig() *Config {
	return &Config{
		Charset:   defaultCharset,
		SheetName: defaultSheetName,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.SheetName) > excelize.MaxSheetNameLength {
		return ErrInvalidSheetName
	}
	return nil
}
