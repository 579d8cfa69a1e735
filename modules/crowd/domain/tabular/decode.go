package tabular

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Document is the parsed form of an uploaded tabular file. Header holds the
// first record, Rows everything after it. A zero-record file yields an empty
// Header and nil Rows.
type Document struct {
	Header []string
	Rows   [][]string
}

// Decode parses the raw upload into a Document, dispatching on the file
// extension. Anything that is not .xlsx is treated as CSV. Parse failures are
// reported as *DecodeError.
func Decode(filename string, data []byte) (Document, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return decodeXLSX(data)
	}
	return decodeCSV(data)
}

func decodeCSV(data []byte) (Document, error) {
	// The BOM decoder substitutes U+FFFD for broken sequences, so reject
	// invalid UTF-8 before it gets a chance to paper over them.
	if !utf8.Valid(data) {
		return Document{}, &DecodeError{Reason: "file is not valid UTF-8"}
	}
	stripped, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
	if err != nil {
		return Document{}, &DecodeError{Reason: "could not decode file contents", Err: err}
	}

	reader := csv.NewReader(bytes.NewReader(stripped))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Document{}, &DecodeError{Reason: "could not parse file as CSV", Err: err}
	}
	if len(records) == 0 {
		return Document{Header: []string{}}, nil
	}
	return Document{Header: records[0], Rows: records[1:]}, nil
}
