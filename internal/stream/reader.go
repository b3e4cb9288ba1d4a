// ABOUTME: Transport read loop exposing decoded frames as a lazy event sequence
// ABOUTME: One fresh Decoder per stream; yields a final error on transport failure

package stream

import (
	"context"
	"fmt"
	"io"
	"iter"
)

// Events reads r until end-of-stream and yields each decoded event in byte
// order. The sequence is finite and single-use: every call starts a new
// Decoder, and the reader is consumed as it goes.
//
// A clean EOF ends the sequence without an error. A transport failure,
// a decoder limit breach or ctx cancellation is yielded once as a final
// (nil, err) pair. Malformed frames are skipped and never yielded.
func Events(ctx context.Context, r io.Reader, opts ...Option) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		d := NewDecoder(opts...)
		defer d.Reset()

		buf := make([]byte, d.readBuf)
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			n, readErr := r.Read(buf)
			if n > 0 {
				events, err := d.Feed(buf[:n])
				for _, ev := range events {
					if !yield(ev, nil) {
						return
					}
				}
				if err != nil {
					yield(nil, err)
					return
				}
			}

			if readErr == io.EOF {
				events, err := d.Flush()
				for _, ev := range events {
					if !yield(ev, nil) {
						return
					}
				}
				if err != nil {
					yield(nil, err)
				}
				return
			}
			if readErr != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					yield(nil, ctxErr)
					return
				}
				yield(nil, fmt.Errorf("reading stream: %w", readErr))
				return
			}
		}
	}
}
