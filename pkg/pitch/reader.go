package pitch

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/erain9/pitchvolume/pkg/diag"
	"github.com/erain9/pitchvolume/pkg/soup"
)

// DefaultMaxLineSize bounds a single capture line. Longer lines are
// discarded with a diagnostic.
const DefaultMaxLineSize = 64 * 1024

// ReaderOption configures a Reader
type ReaderOption func(*Reader)

// WithSink sets the destination for diagnostics
func WithSink(sink diag.Sink) ReaderOption {
	return func(r *Reader) {
		r.sink = sink
	}
}

// WithSkipMalformed isolates decode failures per record: they are reported
// as diagnostics and skipped instead of terminating the stream.
func WithSkipMalformed() ReaderOption {
	return func(r *Reader) {
		r.skipMalformed = true
	}
}

// WithMaxLineSize overrides DefaultMaxLineSize
func WithMaxLineSize(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.maxLineSize = n
		}
	}
}

// Reader is a lazy, single-pass stream of events decoded from SOUP framed lines.
//
//	r := pitch.NewReader(f)
//	for r.Next() {
//		handle(r.Event())
//	}
//	if err := r.Err(); err != nil { ... }
type Reader struct {
	src           *bufio.Reader
	buf           []byte
	sink          diag.Sink
	skipMalformed bool
	maxLineSize   int

	line  int
	event Event
	err   error
}

// NewReader creates a Reader over the lines of src
func NewReader(src io.Reader, opts ...ReaderOption) *Reader {
	r := &Reader{
		sink:        diag.Discard,
		maxLineSize: DefaultMaxLineSize,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.src = bufio.NewReaderSize(src, 4096)
	return r
}

// Next advances to the next event. It returns false at the end of input or on error.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}

	for {
		text, size, err := r.readLine()
		if err != nil {
			r.event = nil
			if err != io.EOF {
				r.err = fmt.Errorf("read capture: %w", err)
			}
			return false
		}
		r.line++

		if size > r.maxLineSize {
			diag.Report(r.sink, diag.Diagnostic{
				Kind:   diag.LineTooLong,
				Detail: fmt.Sprintf("line %d: %d bytes", r.line, size),
			})
			continue
		}

		payload, ok := soup.Unwrap(text, r.sink)
		if !ok {
			continue
		}

		ev, err := Decode(payload, r.sink)
		if err != nil {
			if r.skipMalformed {
				r.reportDecodeError(err)
				continue
			}
			r.event = nil
			r.err = fmt.Errorf("line %d: %w", r.line, err)
			return false
		}
		if ev == nil {
			continue
		}

		r.event = ev
		return true
	}
}

// readLine returns the next line without its terminator and the full length
// of that line. Bytes past maxLineSize are read but not kept.
func (r *Reader) readLine() (string, int, error) {
	r.buf = r.buf[:0]
	size := 0
	for {
		chunk, isPrefix, err := r.src.ReadLine()
		if err != nil {
			return "", 0, err
		}
		size += len(chunk)
		if size <= r.maxLineSize {
			r.buf = append(r.buf, chunk...)
		}
		if !isPrefix {
			return string(r.buf), size, nil
		}
	}
}

// Event returns the event produced by the last successful call to Next
func (r *Reader) Event() Event {
	return r.event
}

// Line returns the 1-based number of the line most recently read
func (r *Reader) Line() int {
	return r.line
}

// Err returns the first error that stopped the stream, if any
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) reportDecodeError(err error) {
	kind := diag.MalformedRecord
	if errors.Is(err, ErrUnsupportedVariant) {
		kind = diag.UnsupportedVariant
	}
	diag.Report(r.sink, diag.Diagnostic{
		Kind:   kind,
		Detail: fmt.Sprintf("line %d: %v", r.line, err),
	})
}
