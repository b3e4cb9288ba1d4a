// Package stream decodes the agent's streamed reply into typed events.
//
// # Wire Format
//
// The reply body is UTF-8 text, one event per line:
//
//	data: {"type": "content_delta", "data": {"content": "Hel"}}
//	data: {"type": "content_delta", "data": {"content": "lo"}}
//	data: {"type": "action_determined", "data": {"action_type": "propose_tour", ...}}
//	data: {"type": "response_complete", "data": {"reply": "Hello there!"}}
//
// Lines without the "data: " prefix (blank keep-alives, comments) are
// discarded. A payload that is not valid JSON is skipped without ending the
// stream.
//
// # Chunking
//
// Transport reads carry no framing: one read may hold several lines or end
// in the middle of one. Decoder keeps the unterminated tail of each chunk
// and prepends it to the next, so the decoded sequence is identical for
// every way the same bytes can be split.
//
// # Usage
//
//	for ev, err := range stream.Events(ctx, resp.Body) {
//	    if err != nil {
//	        // transport failure, decoder limit, or ctx cancellation
//	        break
//	    }
//	    switch e := ev.(type) {
//	    case stream.ContentDelta:
//	        ...
//	    }
//	}
package stream
