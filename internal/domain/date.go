package domain

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the on-disk form of an event date. Every value has the same width,
// so ordering the strings lexically orders the dates chronologically.
const DateLayout = "2006-01-02T15:04:05.000Z"

// ErrDateOutOfRange is returned for dates that cannot be written in DateLayout
var ErrDateOutOfRange = errors.New("date out of range")

// FormatDate converts t to its canonical UTC text form
func FormatDate(t time.Time) (string, error) {
	u := t.UTC()
	if y := u.Year(); y < 0 || y > 9999 {
		return "", fmt.Errorf("%w: year %d", ErrDateOutOfRange, y)
	}
	return u.Format(DateLayout), nil
}

var inputLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate accepts the canonical form, RFC 3339 and plain dates (UTC midnight)
func ParseDate(s string) (time.Time, error) {
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: expected YYYY-MM-DD or RFC 3339", s)
}
