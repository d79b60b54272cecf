// internal/upload/preview.go
package upload

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "sentinel-assessment/internal/common/errors"
)

// DefaultPreviewRows matches the number of rows shown on the upload page.
const DefaultPreviewRows = 5

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Preview is the head of an uploaded table. The data is never analysed.
type Preview struct {
	Filename  string     `json:"filename"`
	Header    []string   `json:"header"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"totalRows"`
	Columns   int        `json:"columns"`
}

// Truncated reports whether more rows exist than are shown.
func (p Preview) Truncated() bool {
	return p.TotalRows > len(p.Rows)
}

// ReadPreview parses comma separated values from r. The first record is the
// header; up to maxRows data records are kept and the rest are only counted,
// so a malformed record anywhere in the file fails the upload.
func ReadPreview(r io.Reader, filename string, maxRows int) (*Preview, error) {
	if maxRows <= 0 {
		maxRows = DefaultPreviewRows
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewUploadParseError(filename, err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, apperrors.NewUploadParseError(filename, errors.New("file is empty"))
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewUploadParseError(filename, fmt.Errorf("reading header: %w", err))
	}
	for i, col := range header {
		header[i] = strings.TrimSpace(col)
	}

	preview := &Preview{
		Filename: filename,
		Header:   header,
		Rows:     make([][]string, 0, maxRows),
		Columns:  len(header),
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewUploadParseError(filename, err)
		}
		preview.TotalRows++
		if len(preview.Rows) < maxRows {
			preview.Rows = append(preview.Rows, record)
		}
	}

	return preview, nil
}
