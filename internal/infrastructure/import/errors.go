package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

// Row error codes
const (
	ErrCodeRequiredField   = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeInvalidType     = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeInvalidLength   = "ERR_IMPORT_INVALID_LENGTH"
	ErrCodeInvalidRange    = "ERR_IMPORT_INVALID_RANGE"
	ErrCodeDuplicateInFile = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeDuplicateInDB   = "ERR_IMPORT_DUPLICATE_IN_DB"
	ErrCodeMalformedRow    = "ERR_IMPORT_MALFORMED_ROW"
)

var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("CSV file is not valid UTF-8")
	ErrMissingHeader   = errors.New("CSV file missing header row")
	ErrNoDataRows      = errors.New("CSV file contains no data rows")
)

// RowError is a problem with one cell or row of the file
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ErrorCollection keeps the first maxErrors row errors and counts the rest
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
	rows       map[int]struct{}
}

// NewErrorCollection creates a collection, 100 errors kept by default
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{maxErrors: maxErrors, rows: make(map[int]struct{})}
}

// Add records an error
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	ec.rows[err.Row] = struct{}{}
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddRequired records a blank required cell
func (ec *ErrorCollection) AddRequired(row int, column string) {
	ec.Add(RowError{Row: row, Column: column, Code: ErrCodeRequiredField, Message: "value is required"})
}

// AddInvalid records a cell that does not parse or is out of range
func (ec *ErrorCollection) AddInvalid(row int, column, code, message, value string) {
	ec.Add(RowError{Row: row, Column: column, Code: code, Message: message, Value: value})
}

// AddDuplicate records a value seen earlier in the file or already stored
func (ec *ErrorCollection) AddDuplicate(row int, column, value string, inDB bool) {
	code, msg := ErrCodeDuplicateInFile, "duplicate value in file"
	if inDB {
		code, msg = ErrCodeDuplicateInDB, "value already exists"
	}
	ec.Add(RowError{Row: row, Column: column, Code: code, Message: msg, Value: value})
}

// Errors returns the kept errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// TotalCount returns the number of errors added, kept or not
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// RowCount returns the number of distinct rows with at least one error
func (ec *ErrorCollection) RowCount() int {
	return len(ec.rows)
}

// HasRow reports whether row has an error
func (ec *ErrorCollection) HasRow(row int) bool {
	_, ok := ec.rows[row]
	return ok
}

// HasErrors reports whether any error was added
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated reports whether errors were dropped
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > len(ec.errors)
}

func (ec *ErrorCollection) String() string {
	if !ec.HasErrors() {
		return "no errors"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s):", ec.totalCount)
	for _, e := range ec.errors {
		sb.WriteString("\n  ")
		sb.WriteString(e.Error())
	}
	if ec.IsTruncated() {
		fmt.Fprintf(&sb, "\n  ... and %d more", ec.totalCount-len(ec.errors))
	}
	return sb.String()
}
