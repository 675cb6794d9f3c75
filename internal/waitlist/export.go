package waitlist

import (
	"bytes"
	"context"
	"strings"
)

// CSVFilename is the attachment name used for waitlist exports.
const CSVFilename = "waitlist-export.csv"

const csvHeader = "Email,Signup Date,Time,Source"

// ExportCSV serializes the full signup log as CSV with the columns
// Email, Signup Date, Time, Source. Every field is quoted, matching the
// format the admin panel's import tooling expects; encoding/csv only quotes
// on demand, so rows are rendered by hand.
func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	signups, err := s.store.Signups(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(csvHeader)
	for _, rec := range signups {
		t := parseTimestamp(rec.Timestamp)
		buf.WriteByte('\n')
		writeQuoted(&buf, rec.Email)
		buf.WriteByte(',')
		writeQuoted(&buf, t.Format("1/2/2006"))
		buf.WriteByte(',')
		writeQuoted(&buf, t.Format("3:04:05 PM"))
		buf.WriteByte(',')
		writeQuoted(&buf, rec.Source)
	}
	return buf.Bytes(), nil
}

func writeQuoted(buf *bytes.Buffer, field string) {
	buf.WriteByte('"')
	buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
	buf.WriteByte('"')
}
