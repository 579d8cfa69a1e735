package tabular

import (
	"fmt"
	"strings"
)

// Category identifies the kind of schema mismatch an Issue describes.
type Category string

const (
	CategoryExtraFields   Category = "extra_fields"
	CategoryMissingFields Category = "missing_fields"
	CategoryRowArity      Category = "row_arity"
)

// Issue is a non-fatal diagnostic about an uploaded file. Issues are data,
// not errors: a file producing issues was parsed fine but cannot back a batch.
type Issue struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Fields   []string `json:"fields,omitempty"`
	Line     int      `json:"line,omitempty"`
}

func newExtraFieldsIssue(fields []string) Issue {
	return Issue{
		Category: CategoryExtraFields,
		Fields:   fields,
		Message: fmt.Sprintf(
			"the uploaded file contains fields that are not in the template. These extra fields are: %s",
			strings.Join(fields, ", "),
		),
	}
}

func newMissingFieldsIssue(fields []string) Issue {
	return Issue{
		Category: CategoryMissingFields,
		Fields:   fields,
		Message: fmt.Sprintf(
			"the uploaded file is missing fields that are in the template. These missing fields are: %s",
			strings.Join(fields, ", "),
		),
	}
}

func newRowArityIssue(line, got, expected int) Issue {
	return Issue{
		Category: CategoryRowArity,
		Line:     line,
		Message: fmt.Sprintf(
			"the file header has %d fields, but line %d has %d fields",
			expected, line, got,
		),
	}
}

// DecodeError means the upload could not be parsed as tabular data at all.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
