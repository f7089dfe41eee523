// Package csvimport decodes an uploaded CSV file into a header list and
// records keyed by header, the input of a table rebuild.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"tablehub/internal/domain"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// File is a decoded CSV file.
type File struct {
	Headers []string
	Records []map[string]string
}

// Decode reads a CSV stream whose first row holds the headers. Rows shorter
// than the header row leave the trailing columns absent; extra cells are
// ignored. Fully empty lines are skipped by encoding/csv.
func Decode(r io.Reader) (*File, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrValidation("csv file is empty")
	}
	if err != nil {
		return nil, domain.ErrValidation("read csv header: %v", err)
	}
	headers := make([]string, len(header))
	copy(headers, header)
	headers = StripHeaderBOM(headers)

	f := &File{Headers: headers, Records: []map[string]string{}}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.ErrValidation("read csv: %v", err)
		}
		rec := make(map[string]string, len(headers))
		for i, h := range headers {
			if i >= len(row) {
				break
			}
			rec[h] = row[i]
		}
		f.Records = append(f.Records, rec)
	}
	return f, nil
}

// StripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
func StripHeaderBOM(headers []string) []string {
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}
	return headers
}

// IsCSV reports whether an upload looks like a CSV file by name or media type.
func IsCSV(filename, contentType string) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return true
	}
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	return ct == "text/csv" || ct == "application/csv"
}

// Describe summarizes a decoded file for logs.
func (f *File) Describe() string {
	return fmt.Sprintf("%d columns, %d rows", len(f.Headers), len(f.Records))
}
