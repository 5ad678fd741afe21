package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"email-report-pipeline/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// xlsxMagic is the zip local-file-header signature; XLSX payloads are zip
// archives. Everything else is treated as CSV.
var xlsxMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// DecodeDocument turns a raw payload into header-keyed records. The first
// row supplies the headers; data rows shorter than the header row leave the
// missing cells absent.
func DecodeDocument(raw []byte) ([]map[string]string, error) {
	if bytes.HasPrefix(raw, xlsxMagic) {
		return decodeXLSX(raw)
	}
	return decodeCSV(string(raw))
}

func decodeCSV(text string) ([]map[string]string, error) {
	text = strings.TrimPrefix(text, bom)

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var records []map[string]string
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		records = append(records, zipRecord(header, fields))
	}

	return records, nil
}

func decodeXLSX(data []byte) ([]map[string]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ErrNoSheets
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	var records []map[string]string
	for _, fields := range rows[1:] {
		records = append(records, zipRecord(header, fields))
	}

	return records, nil
}

func zipRecord(header, fields []string) map[string]string {
	record := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(fields) {
			record[h] = fields[i]
		}
	}
	return record
}
