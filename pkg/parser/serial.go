package parser

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/schedtrace/schedtrace/internal/model"
)

// SerialParser extracts scheduler lifecycle events from firmware serial
// output. Each useful line carries a CSV-like record
//
//	<timestamp_ms>,<KIND>,<task>[,<extra>]
//
// anywhere within the line; surrounding noise (boot banners, plotter
// output, corrupted prefixes) is ignored. Lines without a record are
// silently skipped: the serial link drops and mangles bytes routinely and
// that is not an error.
type SerialParser struct {
	cfg Config
}

// NewSerialParser creates a new serial trace parser.
func NewSerialParser(cfg Config) *SerialParser {
	return &SerialParser{cfg: cfg}
}

// Parse implements the Parser interface for serial trace logs.
func (p *SerialParser) Parse(ctx context.Context, r io.Reader, out chan<- model.Event) error {
	reader := bufio.NewReaderSize(r, p.cfg.BufferSize)

	for {
		select {
		case <-ctx.Done():
			return ErrContextCanceled
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if len(line) == 0 && err == io.EOF {
			break
		}

		line = bytes.TrimSpace(line)
		if event, ok := ExtractEvent(line); ok {
			select {
			case out <- event:
			case <-ctx.Done():
				return ErrContextCanceled
			}
		}

		if err == io.EOF {
			break
		}
	}

	return nil
}

// ExtractEvent scans a line for the leftmost embedded event record and
// returns it. ok is false when the line carries no record.
func ExtractEvent(line []byte) (model.Event, bool) {
	// Try every digit position as a candidate record start, leftmost
	// first. Candidates are not restricted to digit-run boundaries: in
	// "7,FOO,123,START,T1" the record begins at "123" even though that
	// run follows an earlier failed candidate.
	for pos := 0; pos < len(line); pos++ {
		if !isDigit(line[pos]) {
			continue
		}
		if event, ok := matchRecord(line, pos); ok {
			return event, true
		}
	}
	return model.Event{}, false
}

// matchRecord attempts to parse a record whose timestamp begins at pos.
func matchRecord(line []byte, pos int) (model.Event, bool) {
	end := pos
	for end < len(line) && isDigit(line[end]) {
		end++
	}
	if end >= len(line) || line[end] != ',' {
		return model.Event{}, false
	}

	timestamp, err := strconv.ParseInt(string(line[pos:end]), 10, 64)
	if err != nil {
		return model.Event{}, false
	}

	rest := line[end+1:]
	kind, rest, ok := matchKind(rest)
	if !ok {
		return model.Event{}, false
	}

	task, rest := readWord(rest)
	if len(task) == 0 {
		return model.Event{}, false
	}

	var extra []byte
	if len(rest) > 0 && rest[0] == ',' {
		extra, _ = readWord(rest[1:])
	}

	return model.Event{
		Timestamp: timestamp,
		Kind:      kind,
		Task:      string(task),
		Extra:     string(extra),
	}, true
}

// matchKind matches a kind name followed by a comma and returns the
// remainder after the comma. No kind name is a prefix of another, so a
// single pass over the table suffices.
func matchKind(b []byte) (model.Kind, []byte, bool) {
	for _, name := range kindNames {
		if len(b) > len(name) && b[len(name)] == ',' && bytes.HasPrefix(b, name) {
			return model.ParseKind(string(name)), b[len(name)+1:], true
		}
	}
	return model.KindUnknown, nil, false
}

var kindNames = [][]byte{
	[]byte("START"),
	[]byte("COMPLETE"),
	[]byte("RELEASE"),
	[]byte("MISS"),
	[]byte("WDT_PET"),
	[]byte("INFO"),
}

// readWord consumes a maximal run of [A-Za-z0-9_] characters.
func readWord(b []byte) ([]byte, []byte) {
	end := 0
	for end < len(b) && isWordByte(b[end]) {
		end++
	}
	return b[:end], b[end:]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordByte(c byte) bool {
	return c == '_' || isDigit(c) ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
