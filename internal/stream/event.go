// ABOUTME: Typed stream events decoded from the agent's reply frames
// ABOUTME: Defines the Event variants and the optional typed view of action payloads

package stream

import (
	"encoding/json"
	"fmt"
)

// Wire type names carried in the "type" field of each frame payload.
const (
	TypeContentDelta     = "content_delta"
	TypeActionDetermined = "action_determined"
	TypeResponseComplete = "response_complete"
	TypeError            = "error"
)

// Event is one decoded application event. The concrete type is one of
// ContentDelta, ActionDetermined, ResponseComplete, ErrorEvent or Unknown.
type Event interface {
	// Type returns the wire type name of the event.
	Type() string
	isEvent()
}

// ContentDelta carries an incremental fragment of agent text.
type ContentDelta struct {
	Content string
}

// ActionDetermined carries the agent's next-action decision. The payload is
// opaque to the reconciler; Decode offers a typed view for observers.
type ActionDetermined struct {
	Action json.RawMessage
}

// ResponseComplete carries the authoritative final reply text.
type ResponseComplete struct {
	Reply string
}

// ErrorEvent is an explicit error signaled by the agent.
type ErrorEvent struct {
	Message string
}

// Unknown is any frame whose type is not recognized. Raw is the whole payload.
type Unknown struct {
	Name string
	Raw  json.RawMessage
}

func (ContentDelta) Type() string     { return TypeContentDelta }
func (ActionDetermined) Type() string { return TypeActionDetermined }
func (ResponseComplete) Type() string { return TypeResponseComplete }
func (ErrorEvent) Type() string       { return TypeError }
func (u Unknown) Type() string        { return u.Name }

func (ContentDelta) isEvent()     {}
func (ActionDetermined) isEvent() {}
func (ResponseComplete) isEvent() {}
func (ErrorEvent) isEvent()       {}
func (Unknown) isEvent()          {}

// Action types the leasing agent chooses between.
const (
	ActionProposeTour      = "propose_tour"
	ActionAskClarification = "ask_clarification"
	ActionHandoffHuman     = "handoff_human"
)

// Action is the typed view of an action_determined payload.
type Action struct {
	Type                 string `json:"action_type"`
	ResponseText         string `json:"response_text,omitempty"`
	TourTime             string `json:"tour_time,omitempty"`
	TourDate             string `json:"tour_date,omitempty"`
	UnitID               string `json:"unit_id,omitempty"`
	ConfirmationRequired *bool  `json:"confirmation_required,omitempty"`
	ClarificationNeeded  string `json:"clarification_needed,omitempty"`
	FollowUp             *bool  `json:"follow_up,omitempty"`
}

// Decode parses the opaque action payload.
func (a ActionDetermined) Decode() (Action, error) {
	var action Action
	if len(a.Action) == 0 {
		return action, fmt.Errorf("empty action payload")
	}
	if err := json.Unmarshal(a.Action, &action); err != nil {
		return action, fmt.Errorf("decoding action payload: %w", err)
	}
	return action, nil
}

// payload is the JSON object carried on each data line.
type payload struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// dataField names the key each text-carrying event type reads from "data".
var dataField = map[string]string{
	TypeContentDelta:     "content",
	TypeResponseComplete: "reply",
	TypeError:            "error",
}

// decodePayload maps one JSON payload to its Event variant. Only the key the
// event type reads is decoded; other keys in "data" may hold any JSON.
func decodePayload(raw []byte) (Event, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}

	switch p.Type {
	case TypeContentDelta, TypeResponseComplete, TypeError:
		text, err := dataString(p.Data, dataField[p.Type])
		if err != nil {
			return nil, err
		}
		switch p.Type {
		case TypeContentDelta:
			return ContentDelta{Content: text}, nil
		case TypeResponseComplete:
			return ResponseComplete{Reply: text}, nil
		default:
			return ErrorEvent{Message: text}, nil
		}
	case TypeActionDetermined:
		return ActionDetermined{Action: cloneRaw(p.Data)}, nil
	default:
		return Unknown{Name: p.Type, Raw: cloneRaw(raw)}, nil
	}
}

// dataString reads data[key] as a string. Missing data, a missing key and
// JSON null all read as "".
func dataString(data json.RawMessage, key string) (string, error) {
	if len(data) == 0 || string(data) == "null" {
		return "", nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", fmt.Errorf("data: %w", err)
	}
	v, ok := fields[key]
	if !ok || string(v) == "null" {
		return "", nil
	}
	var text string
	if err := json.Unmarshal(v, &text); err != nil {
		return "", fmt.Errorf("data.%s: %w", key, err)
	}
	return text, nil
}

func cloneRaw(b []byte) json.RawMessage {
	if b == nil {
		return nil
	}
	out := make(json.RawMessage, len(b))
	copy(out, b)
	return out
}
