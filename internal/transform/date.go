package transform

import (
	"fmt"
	"strings"
	"time"
)

// ISODate is the output layout of the date transformation.
const ISODate = "2006-01-02"

type dateLayout struct {
	layout string
	family string
}

// Order matters: SAP exports write day.month.year, so that wins over the
// month/day reading of ambiguous values.
var dateLayouts = []dateLayout{
	{"02.01.2006", "dd.mm.yyyy"},
	{"2.1.2006", "dd.mm.yyyy"},
	{"01/02/2006", "mm/dd/yyyy"},
	{"1/2/2006", "mm/dd/yyyy"},
	{"2006-01-02", "yyyy-mm-dd"},
	{"2006-1-2", "yyyy-mm-dd"},
	{"2006/01/02", "yyyy/mm/dd"},
	{"20060102", "yyyymmdd"},
	{"2006-01-02 15:04:05", "yyyy-mm-dd"},
	{time.RFC3339, "yyyy-mm-dd"},
	{"01-02-06", "mm-dd-yy"},
}

// emptyDates are SAP placeholders meaning "no date".
var emptyDates = map[string]bool{
	"00.00.0000": true,
	"0000-00-00": true,
	"00000000":   true,
}

// ParseDate parses s with the accepted layouts and returns the layout
// family that matched. Placeholder dates return the zero time and family "".
func ParseDate(s string) (time.Time, string, error) {
	s = strings.TrimSpace(s)
	if emptyDates[s] {
		return time.Time{}, "", nil
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return t, l.family, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unrecognised date %q", s)
}

// FormatDate normalises s to YYYY-MM-DD. Placeholder dates become "".
func FormatDate(s string) (string, error) {
	t, _, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	if t.IsZero() {
		return "", nil
	}
	return t.Format(ISODate), nil
}
