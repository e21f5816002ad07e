package logparse

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the tutor's log timestamp format: 24-hour time
// followed by day/month/year.
const TimestampLayout = "15:04:05 02/01/2006"

var (
	// ErrMalformedLine means the line has fewer than three
	// space-delimited segments and cannot carry a timestamp.
	ErrMalformedLine = errors.New("log line has unexpected structure")

	// ErrMalformedTimestamp means the first two tokens do not parse as
	// a timestamp.
	ErrMalformedTimestamp = errors.New("couldn't parse log line timestamp")
)

// SplitTimestamp splits a raw log line into its leading timestamp and the
// line remainder.
//
// The timestamp occupies the first two space-delimited tokens. A stray
// semicolon around the token pair is tolerated and stripped. Failures are
// recoverable: callers treat a failed split as "this line has no
// timestamp" and tally it rather than aborting the scan.
func SplitTimestamp(line string) (time.Time, string, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 3 {
		return time.Time{}, "", ErrMalformedLine
	}
	stamp := strings.Trim(parts[0]+" "+parts[1], ";")
	ts, err := time.Parse(TimestampLayout, stamp)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %q", ErrMalformedTimestamp, stamp)
	}
	return ts, parts[2], nil
}
