// ABOUTME: Wire encoder for stream events, the inverse of the frame decoder
// ABOUTME: Writes one "data: {type, data}" line per event followed by a blank line

package stream

import (
	"encoding/json"
	"fmt"
	"io"
)

// Encode renders ev as one frame including the trailing blank line.
func Encode(ev Event) ([]byte, error) {
	var p payload
	p.Type = ev.Type()

	var data any
	switch e := ev.(type) {
	case ContentDelta:
		data = map[string]string{"content": e.Content}
	case ResponseComplete:
		data = map[string]string{"reply": e.Reply}
	case ErrorEvent:
		data = map[string]string{"error": e.Message}
	case ActionDetermined:
		data = e.Action
	case Unknown:
		// Unknown keeps the whole payload; emit it verbatim.
		if len(e.Raw) > 0 {
			return frame(e.Raw), nil
		}
		data = map[string]string{}
	default:
		return nil, fmt.Errorf("unsupported event %T", ev)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshaling event data: %w", err)
	}
	p.Data = raw

	line, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling event: %w", err)
	}
	return frame(line), nil
}

// WriteEvent encodes ev and writes it to w.
func WriteEvent(w io.Writer, ev Event) error {
	b, err := Encode(ev)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func frame(body []byte) []byte {
	out := make([]byte, 0, len(DataPrefix)+len(body)+2)
	out = append(out, DataPrefix...)
	out = append(out, body...)
	return append(out, '\n', '\n')
}
