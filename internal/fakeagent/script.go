// ABOUTME: Reply scripts played by the fake agent, picked by keywords in the user message
// ABOUTME: Covers clean replies, agent errors, silent closes, unknown events and garbage lines

package fakeagent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/2389/leasing-chat/internal/stream"
)

// step is one thing written to the reply stream.
type step struct {
	event stream.Event
	raw   string // written verbatim when event is nil
}

// Script is a scripted reply.
type Script struct {
	Name  string
	steps []step
	// hang keeps the stream open after the last step until the client leaves.
	hang bool
}

// Events returns the well-formed events the script emits, in order.
func (s Script) Events() []stream.Event {
	var out []stream.Event
	for _, st := range s.steps {
		if st.event != nil {
			out = append(out, st.event)
		}
	}
	return out
}

// ScriptFor picks the reply script for a user message. Keywords:
// "error" ends with an agent error, "silent" closes without completing,
// "hang" stalls mid-reply, "ping" sends an unknown event first, "garbage"
// writes malformed lines, "tour" determines a tour action and "rewrite" has
// the completion replace the streamed text. Anything else is echoed.
func ScriptFor(message string) Script {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "error"):
		return Script{Name: "error", steps: []step{
			{event: stream.ContentDelta{Content: "Let me check "}},
			{event: stream.ErrorEvent{Message: "inventory service unavailable"}},
		}}
	case strings.Contains(lower, "silent"):
		return Script{Name: "silent", steps: []step{
			{event: stream.ContentDelta{Content: "Looking that up"}},
		}}
	case strings.Contains(lower, "hang"):
		return Script{Name: "hang", hang: true, steps: []step{
			{event: stream.ContentDelta{Content: "One moment"}},
		}}
	case strings.Contains(lower, "tour"):
		return tourScript()
	case strings.Contains(lower, "rewrite"):
		return Script{Name: "rewrite", steps: []step{
			{event: stream.ContentDelta{Content: "Draft answer"}},
			{event: stream.ResponseComplete{Reply: "Final answer: units start at $1,850."}},
		}}
	}

	reply := fmt.Sprintf("You said: **%s**", message)
	s := Script{Name: "echo", steps: deltas(reply)}
	if strings.Contains(lower, "ping") {
		s.Name = "ping"
		s.steps = append([]step{{event: stream.Unknown{Name: "ping", Raw: []byte(`{"type":"ping","data":{}}`)}}}, s.steps...)
	}
	if strings.Contains(lower, "garbage") {
		s.Name = "garbage"
		s.steps = append([]step{
			{raw: "data: {not json\n\n"},
			{raw: ": keep-alive comment\n\n"},
			{raw: "event: ignored\n"},
		}, s.steps...)
	}
	s.steps = append(s.steps, step{event: stream.ResponseComplete{Reply: reply}})
	return s
}

func tourScript() Script {
	confirm := true
	reply := "I can book a tour of unit 4B on Saturday at 10:00. Does that work?"
	action := stream.Action{
		Type:                 stream.ActionProposeTour,
		ResponseText:         reply,
		TourDate:             time.Now().AddDate(0, 0, 3).Format(time.DateOnly),
		TourTime:             "10:00",
		UnitID:               "4B",
		ConfirmationRequired: &confirm,
	}
	raw, _ := json.Marshal(action)

	steps := []step{{event: stream.ActionDetermined{Action: raw}}}
	steps = append(steps, deltas(reply)...)
	steps = append(steps, step{event: stream.ResponseComplete{Reply: reply}})
	return Script{Name: "tour", steps: steps}
}

// deltas splits text into word-sized content_delta steps.
func deltas(text string) []step {
	var out []step
	for word := range strings.SplitAfterSeq(text, " ") {
		out = append(out, step{event: stream.ContentDelta{Content: word}})
	}
	return out
}

// play writes the script to w, flushing after every step.
func (s Script) play(ctx context.Context, w http.ResponseWriter, delay time.Duration) error {
	rc := http.NewResponseController(w)
	for i, st := range s.steps {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		var err error
		if st.event != nil {
			err = stream.WriteEvent(w, st.event)
		} else {
			_, err = io.WriteString(w, st.raw)
		}
		if err != nil {
			return fmt.Errorf("writing %s step %d: %w", s.Name, i, err)
		}
		_ = rc.Flush()
	}

	if s.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}
