// Package iso8601 reads and writes the watermark timestamps exchanged with the server,
// e.g. 2014-12-03T18:21:07.512+0000.
package iso8601

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Layout      = "2006-01-02T15:04:05.000-0700"
	colonLayout = "2006-01-02T15:04:05.000-07:00"
)

var ErrInvalid = errors.New("iso8601: invalid timestamp")

// Epoch is the watermark used before anything has been synchronised.
var Epoch = Format(time.Unix(0, 0))

// Format renders t in UTC with millisecond precision.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse accepts numeric offsets with or without a colon, and a literal trailing Z.
// The result is always in UTC.
func Parse(s string) (time.Time, error) {
	value := strings.TrimSpace(s)
	if strings.HasSuffix(value, "Z") {
		value = strings.TrimSuffix(value, "Z") + "+0000"
	}

	t, err := time.Parse(Layout, value)
	if err != nil {
		var colonErr error
		if t, colonErr = time.Parse(colonLayout, value); colonErr != nil {
			return time.Time{}, fmt.Errorf("%w %q: %w", ErrInvalid, s, err)
		}
	}
	return t.UTC(), nil
}
