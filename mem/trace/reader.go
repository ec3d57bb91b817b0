// Package trace reads memory traces and records what the caches do with them.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// recordFields is the number of whitespace-separated fields of a record. The
// address is the second field and the access size the fourth.
const recordFields = 4

// MaxRecordLength is the longest line kept for parsing. Longer lines are
// reported as malformed records and skipped.
const MaxRecordLength = 4096

// overlongTextLength is how much of an overlong line is kept for reporting.
const overlongTextLength = 64

// A Record is one memory access of a trace.
type Record struct {
	Line    int
	Address uint64

	// Size is kept as written. Accesses are simulated as touching a single
	// line regardless of their size.
	Size string
}

// A TraceRecordError reports a record that cannot be simulated. The record is
// skipped and the trace continues.
type TraceRecordError struct {
	Line   int
	Text   string
	Reason string
}

func (e *TraceRecordError) Error() string {
	return fmt.Sprintf("invalid trace record at line %d (%q): %s",
		e.Line, e.Text, e.Reason)
}

// A Reader reads records from a trace.
type Reader struct {
	reader *bufio.Reader
	line   int
}

// NewReader creates a Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{reader: bufio.NewReader(r)}
}

// Next returns the next record. Blank lines are skipped. A malformed record
// is returned as a *TraceRecordError, after which Next can be called again.
// Next returns io.EOF at the end of the trace.
func (r *Reader) Next() (Record, error) {
	for {
		raw, overlong, err := r.readLine()
		if err != nil {
			return Record{}, err
		}

		r.line++

		if overlong {
			return Record{}, &TraceRecordError{
				Line: r.line,
				Text: raw + "...",
				Reason: fmt.Sprintf("line longer than %d bytes",
					MaxRecordLength),
			}
		}

		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}

		return r.parse(text)
	}
}

// readLine returns the next line without its terminator. Only the first
// MaxRecordLength bytes of a line are buffered; the rest is discarded and the
// line is flagged as overlong, with its text cut to a short prefix.
func (r *Reader) readLine() (string, bool, error) {
	var buf []byte
	overlong := false

	for {
		chunk, err := r.reader.ReadSlice('\n')

		if !overlong {
			buf = append(buf, chunk...)
			if len(buf) > MaxRecordLength+1 {
				overlong = true
				buf = buf[:overlongTextLength]
			}
		}

		switch {
		case err == nil:
			return trimLine(buf, overlong), overlong, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && (len(buf) > 0 || overlong):
			return trimLine(buf, overlong), overlong, nil
		default:
			return "", false, err
		}
	}
}

func trimLine(buf []byte, overlong bool) string {
	if overlong {
		return string(buf)
	}

	return strings.TrimRight(string(buf), "\r\n")
}

func (r *Reader) parse(text string) (Record, error) {
	fields := strings.Fields(text)
	if len(fields) != recordFields {
		return Record{}, &TraceRecordError{
			Line: r.line,
			Text: text,
			Reason: fmt.Sprintf("expected %d fields, got %d",
				recordFields, len(fields)),
		}
	}

	addr, err := ParseAddress(fields[1])
	if err != nil {
		return Record{}, &TraceRecordError{
			Line:   r.line,
			Text:   text,
			Reason: err.Error(),
		}
	}

	return Record{Line: r.line, Address: addr, Size: fields[3]}, nil
}

// ParseAddress parses a hexadecimal address of up to 64 bits, with or without
// a 0x prefix. Shorter addresses are zero-extended.
func ParseAddress(s string) (uint64, error) {
	digits := s
	if len(digits) > 2 && (digits[:2] == "0x" || digits[:2] == "0X") {
		digits = digits[2:]
	}

	addr, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}

	return addr, nil
}

// Replay feeds every well-formed record of r to access, in trace order.
// Malformed records are passed to onBadRecord, if not nil, and skipped. It
// returns the number of records accessed and stops at the first I/O error.
func Replay(
	r io.Reader,
	access func(Record),
	onBadRecord func(*TraceRecordError),
) (int, error) {
	reader := NewReader(r)
	n := 0

	for {
		record, err := reader.Next()

		var recordErr *TraceRecordError
		switch {
		case err == nil:
			access(record)
			n++
		case errors.Is(err, io.EOF):
			return n, nil
		case errors.As(err, &recordErr):
			if onBadRecord != nil {
				onBadRecord(recordErr)
			}
		default:
			return n, err
		}
	}
}
