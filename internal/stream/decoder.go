// ABOUTME: Line-oriented frame decoder with a carry buffer across chunk boundaries
// ABOUTME: Turns arbitrarily split byte chunks into whole "data: " frames and typed Events

package stream

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
)

// DataPrefix marks a line carrying one encoded event.
const DataPrefix = "data: "

const (
	// DefaultMaxLineBytes bounds the carry buffer so a peer that never sends
	// a newline cannot grow it without limit.
	DefaultMaxLineBytes = 1 << 20

	// DefaultReadBufferBytes is the size of each transport read.
	DefaultReadBufferBytes = 4096
)

var (
	// ErrLineTooLong is returned when a single unterminated line exceeds the
	// configured maximum.
	ErrLineTooLong = errors.New("frame line too long")

	// ErrTooManyMalformed is returned when more consecutive frames than the
	// configured limit fail to decode.
	ErrTooManyMalformed = errors.New("too many malformed frames")
)

// Stats counts what the decoder has seen since the last Reset.
type Stats struct {
	Frames    int // data lines decoded into events
	Malformed int // data lines whose payload was not valid JSON
	Discarded int // lines without the data prefix (blank keep-alives, comments)
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithMaxLineBytes sets the maximum length of one line. Zero or negative
// means unlimited.
func WithMaxLineBytes(n int) Option {
	return func(d *Decoder) { d.maxLine = n }
}

// WithMaxMalformed sets how many consecutive malformed frames are tolerated
// before decoding fails. Zero means unlimited.
func WithMaxMalformed(n int) Option {
	return func(d *Decoder) { d.maxMalformed = n }
}

// WithReadBuffer sets the size of each transport read made by Events.
func WithReadBuffer(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.readBuf = n
		}
	}
}

// WithLogger sets the logger used for per-frame diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Decoder converts a byte stream delivered in chunks into Events. It keeps
// any trailing partial line and prepends it to the next chunk. A Decoder
// serves one stream and is not safe for concurrent use.
type Decoder struct {
	carry        []byte
	maxLine      int
	maxMalformed int
	readBuf      int
	badRun       int
	stats        Stats
	logger       *slog.Logger
}

// NewDecoder creates a decoder with empty state.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		maxLine: DefaultMaxLineBytes,
		readBuf: DefaultReadBufferBytes,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "stream")
	return d
}

// Feed consumes one chunk and returns the events of every line the chunk
// completed, in order. Events decoded before an error are still returned.
func (d *Decoder) Feed(chunk []byte) ([]Event, error) {
	d.carry = append(d.carry, chunk...)

	var events []Event
	for {
		idx := bytes.IndexByte(d.carry, '\n')
		if idx < 0 {
			break
		}
		line := d.carry[:idx]
		ev, err := d.decodeLine(line)
		// Advance past the newline before handling the result so the
		// buffer never re-reads a consumed line.
		d.carry = d.carry[idx+1:]
		if err != nil {
			d.compact()
			return events, err
		}
		if ev != nil {
			events = append(events, ev)
		}
	}
	d.compact()

	if d.maxLine > 0 && len(d.carry) > d.maxLine {
		n := len(d.carry)
		d.carry = nil
		return events, fmt.Errorf("%w: %d bytes without newline", ErrLineTooLong, n)
	}
	return events, nil
}

// Flush decodes a final line left without a terminating newline. Call it
// once the transport reports end-of-stream.
func (d *Decoder) Flush() ([]Event, error) {
	if len(d.carry) == 0 {
		return nil, nil
	}
	line := d.carry
	d.carry = nil
	ev, err := d.decodeLine(line)
	if err != nil || ev == nil {
		return nil, err
	}
	return []Event{ev}, nil
}

// Reset discards buffered partial-line state and counters.
func (d *Decoder) Reset() {
	d.carry = nil
	d.badRun = 0
	d.stats = Stats{}
}

// Buffered returns the number of bytes held in the carry buffer.
func (d *Decoder) Buffered() int {
	return len(d.carry)
}

// Stats returns the counters accumulated since the last Reset.
func (d *Decoder) Stats() Stats {
	return d.stats
}

// decodeLine handles one complete line. A nil event with nil error means
// the line was skipped.
func (d *Decoder) decodeLine(line []byte) (Event, error) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	if d.maxLine > 0 && len(line) > d.maxLine {
		return nil, fmt.Errorf("%w: %d bytes", ErrLineTooLong, len(line))
	}

	if !bytes.HasPrefix(line, []byte(DataPrefix)) {
		d.stats.Discarded++
		return nil, nil
	}

	ev, err := decodePayload(line[len(DataPrefix):])
	if err != nil {
		d.stats.Malformed++
		d.badRun++
		d.logger.Debug("skipping malformed frame",
			"error", err,
			"bytes", len(line))
		if d.maxMalformed > 0 && d.badRun > d.maxMalformed {
			return nil, fmt.Errorf("%w: %d in a row", ErrTooManyMalformed, d.badRun)
		}
		return nil, nil
	}

	d.badRun = 0
	d.stats.Frames++
	return ev, nil
}

// compact copies the carry buffer down so the consumed prefix can be
// garbage collected.
func (d *Decoder) compact() {
	if len(d.carry) == 0 {
		d.carry = nil
		return
	}
	if cap(d.carry) > 2*len(d.carry) {
		d.carry = append([]byte(nil), d.carry...)
	}
}
