package excel

import "errors"

var (
	// ErrMissingFilePath is returned when file path is not specified
	ErrMissingFilePath = errors.New("file path is required")

	// ErrInvalidSheetName is returned when the export sheet name is not usable
	ErrInvalidSheetName = errors.New("invalid sheet name")

	// ErrUnsupportedFormat is returned when the content is neither an OOXML nor a BIFF workbook
	ErrUnsupportedFormat = errors.New("unsupported workbook format")
)
