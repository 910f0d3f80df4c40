package streaming

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("status record not found")

// DecodeError reports object content that is not valid UTF-8 text.
type DecodeError struct{}

func (DecodeError) Error() string {
	return "file content is not valid UTF-8"
}

// ParseError reports a malformed data row: wrong field count or an
// unparseable datetime. Row is the 1-based line number in the file, header
// included.
type ParseError struct {
	Row    int
	Reason string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// RowError is a single row-level failure reported by the warehouse.
type RowError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// BulkInsertError carries the structured list of row-level failures from a
// bulk insert, serialized into the message so the status record keeps the
// full diagnostic detail.
type BulkInsertError struct {
	Errors []RowError
}

func (e BulkInsertError) Error() string {
	detail, err := json.Marshal(e.Errors)
	if err != nil {
		return fmt.Sprintf("bulk insert failed with %d row errors", len(e.Errors))
	}
	return "bulk insert failed: " + string(detail)
}
