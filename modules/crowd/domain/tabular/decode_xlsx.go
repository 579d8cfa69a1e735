package tabular

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

func decodeXLSX(data []byte) (Document, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Document{}, &DecodeError{Reason: "could not open file as XLSX", Err: err}
	}
	defer func() {
		_ = workbook.Close()
	}()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return Document{}, &DecodeError{Reason: "workbook contains no sheets"}
	}

	// Only the first sheet is imported. GetRows trims trailing empty cells,
	// so rows are padded back to the header width before arity checks.
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return Document{}, &DecodeError{Reason: "could not read worksheet rows", Err: err}
	}
	if len(rows) == 0 {
		return Document{Header: []string{}}, nil
	}

	header := rows[0]
	body := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		for len(row) < len(header) {
			row = append(row, "")
		}
		body = append(body, row)
	}
	return Document{Header: header, Rows: body}, nil
}
