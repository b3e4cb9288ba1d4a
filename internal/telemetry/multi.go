// ABOUTME: Multi fans one observation out to several observers in order
// ABOUTME: Nil observers are skipped so optional sinks can be passed unconditionally

package telemetry

import (
	"context"

	"github.com/2389/leasing-chat/internal/conversation"
)

type multi []conversation.Observer

// Multi returns an observer that calls each non-nil observer in turn.
func Multi(observers ...conversation.Observer) conversation.Observer {
	var m multi
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m multi) Observe(ctx context.Context, obs conversation.Observation) {
	for _, o := range m {
		o.Observe(ctx, obs)
	}
}
