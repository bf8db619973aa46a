package xlsxstream

import (
	"errors"
	"fmt"
)

// ErrPermission indicates the input file cannot be read.
var ErrPermission = errors.New("workbook not readable")

// ErrInvalidFormat indicates the input file is not a valid xlsx package.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrSheetIndex indicates a sheet index outside the workbook.
var ErrSheetIndex = errors.New("sheet index out of range")

// ErrSheetNotFound indicates no sheet carries the requested name.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrClosed indicates use of a closed workbook.
var ErrClosed = errors.New("workbook closed")

// PermissionError reports a source file that is missing, unreadable or a
// directory.
type PermissionError struct {
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *PermissionError) Unwrap() []error {
	return []error{ErrPermission, e.Err}
}

// FormatError reports a package that cannot be decoded.
type FormatError struct {
	Path   string
	Part   string // archive member, empty for container-level failures
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := "invalid workbook " + e.Path
	if e.Part != "" {
		msg += " (" + e.Part + ")"
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidFormat}
	}
	return []error{ErrInvalidFormat, e.Err}
}

// IndexError reports a sheet index outside [0, Count).
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("sheet index %d out of range [0, %d)", e.Index, e.Count)
}

func (e *IndexError) Unwrap() error {
	return ErrSheetIndex
}

// ExtractionError represents an error during extraction.
type ExtractionError struct {
	SheetName string
	Component string // "rows"
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error in sheet %q (%s): %v", e.SheetName, e.Component, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(sheetName, component string, err error) *ExtractionError {
	return &ExtractionError{
		SheetName: sheetName,
		Component: component,
		Err:       err,
	}
}
