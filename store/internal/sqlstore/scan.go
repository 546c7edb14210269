package sqlstore

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// TextTimeLayout is the fixed-width UTC layout used by dialects that store
// timestamps as text. Fixed width keeps lexical order equal to time order.
const TextTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var timeLayouts = []string{
	TextTimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// dbTime scans TIMESTAMPTZ columns and text-encoded timestamps alike.
type dbTime struct {
	Time  time.Time
	Valid bool
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = dbTime{}
		return nil
	case time.Time:
		*t = dbTime{Time: v.UTC(), Valid: true}
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	}
	return fmt.Errorf("sqlstore: cannot scan %T into time", src)
}

func (t *dbTime) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*t = dbTime{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = dbTime{Time: parsed.UTC(), Valid: true}
			return nil
		}
	}
	return fmt.Errorf("sqlstore: unrecognised time %q", s)
}

// Ptr returns nil for NULL.
func (t dbTime) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

var _ driver.Valuer = textTime{}

// textTime is the argument encoding for text-timestamp dialects.
type textTime time.Time

func (t textTime) Value() (driver.Value, error) {
	return time.Time(t).UTC().Format(TextTimeLayout), nil
}

// TextTime encodes t as a fixed-width UTC string. It is the TimeArg of
// dialects without a native timestamp type.
func TextTime(t time.Time) any { return textTime(t) }

// NativeTime passes t through for drivers with a timestamp type.
func NativeTime(t time.Time) any { return t }

// likePattern builds a case-insensitive substring pattern escaped for
// LIKE ... ESCAPE '\'.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}
