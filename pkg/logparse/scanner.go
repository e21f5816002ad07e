package logparse

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
)

// Stream is the result of scanning one log file.
type Stream struct {
	// Events holds one event per timestamped line, in file order.
	Events []Event

	// NoTimestampLines holds the lines whose timestamp extraction
	// failed; they are never dispatched to the recognizer.
	NoTimestampLines []string

	// ParseFailures counts events whose payload was malformed. Each
	// failure loses exactly one event, never the rest of the file.
	ParseFailures int

	// TotalLines is the number of physical lines read.
	TotalLines int
}

// UnknownCount returns how many events fell through to the Unknown
// catch-all.
func (s *Stream) UnknownCount() int {
	n := 0
	for _, ev := range s.Events {
		if ev.Kind() == KindUnknown {
			n++
		}
	}
	return n
}

// BuildStream scans a whole log file into an ordered event sequence.
//
// The presence of a timestamp delimits a new event; lines without one are
// tallied, not dispatched. Multi-line constructors advance the cursor
// past their continuation lines, so those are neither re-classified nor
// counted as timestampless.
func BuildStream(r io.Reader, logger *slog.Logger) (*Stream, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return buildStream(lines, logger), nil
}

// BuildStreamLines is BuildStream over an already-split line sequence.
func BuildStreamLines(lines []string, logger *slog.Logger) *Stream {
	return buildStream(lines, logger)
}

func buildStream(lines []string, logger *slog.Logger) *Stream {
	stream := &Stream{TotalLines: len(lines)}
	cur := NewCursor(lines)
	for {
		line, ok := cur.Next()
		if !ok {
			break
		}
		ts, rest, err := SplitTimestamp(line)
		if err != nil {
			stream.NoTimestampLines = append(stream.NoTimestampLines, line)
			continue
		}
		ev, err := Recognize(ts, rest, cur)
		if err != nil {
			stream.ParseFailures++
			var perr *ParseError
			if errors.As(err, &perr) {
				logger.Warn("dropping malformed event", "kind", perr.EventKind, "reason", perr.Reason)
			} else {
				logger.Warn("dropping malformed event", "error", err)
			}
			continue
		}
		if cr, ok := ev.(ClientRespondingEvent); ok && cr.SlowServer() {
			logger.Warn("inspect log file - slow server?", "timestamp", ts)
		}
		stream.Events = append(stream.Events, ev)
	}
	return stream
}
