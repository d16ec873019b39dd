package harvest

import (
	"context"
	"strings"
)

// Format identifies a persisted output format.
type Format string

// Supported output formats. The values double as file extensions.
const (
	FormatText   Format = "txt"
	FormatJSON   Format = "json"
	FormatXML    Format = "xml"
	FormatSQLite Format = "db"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatXML, FormatSQLite}

// ParseFormat maps a format name or common alias to a Format.
// Returns EINVALID for unknown names.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	case "db", "sql", "sqlite":
		return FormatSQLite, nil
	}
	return "", Errorf(EINVALID, "unknown format %q", s)
}

// RecordWriter persists records for a named recipe.
// Implementations append to whatever the destination already holds and must
// not leave it half written when they fail.
type RecordWriter interface {
	// WriteRecords appends records to the destination identified by name.
	// Fields lists the field names in declaration order.
	WriteRecords(ctx context.Context, name string, fields []string, records []*Record) error
}
