package reports

import (
	"bytes"
	"encoding/csv"
	"io"
)

// WriteCSV writes a header row followed by the records. encoding/csv
// applies RFC4180 quoting: embedded quotes are doubled and fields
// containing commas, quotes or newlines are wrapped in quotes.
func WriteCSV(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, record := range records {
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVString renders header and records as one CSV document.
func CSVString(header []string, records [][]string) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, header, records); err != nil {
		return "", err
	}
	return buf.String(), nil
}
