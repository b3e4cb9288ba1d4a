// ABOUTME: Builds the observer chain for a chat: logs, optional SQLite ledger and the pub/sub bus
// ABOUTME: Also formats action notices shown next to the transcript

package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/2389/leasing-chat/internal/config"
	"github.com/2389/leasing-chat/internal/conversation"
	"github.com/2389/leasing-chat/internal/store"
	"github.com/2389/leasing-chat/internal/stream"
	"github.com/2389/leasing-chat/internal/telemetry"
)

type telemetrySetup struct {
	observer conversation.Observer
	bus      *gochannel.GoChannel
	topic    string
	store    store.Store // nil unless database_path is set
}

func setupTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*telemetrySetup, error) {
	t := &telemetrySetup{bus: telemetry.NewGoChannel(logger)}

	publisher := telemetry.NewBus(t.bus, cfg.BusTopic, logger)
	t.topic = publisher.Topic()

	var recorder conversation.Observer
	if cfg.DatabasePath != "" {
		s, err := store.NewSQLiteStore(cfg.DatabasePath)
		if err != nil {
			_ = t.bus.Close()
			return nil, fmt.Errorf("opening observation store: %w", err)
		}
		t.store = s
		recorder = telemetry.NewRecorder(s, logger)
	}

	t.observer = telemetry.Multi(telemetry.NewLogObserver(logger), recorder, publisher)
	return t, nil
}

func (t *telemetrySetup) Close() error {
	var errs []error
	if err := t.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing bus: %w", err))
	}
	if t.store != nil {
		if err := t.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing store: %w", err))
		}
	}
	return errors.Join(errs...)
}

// actionNotice describes an action record for the user. Other kinds return "".
func actionNotice(rec telemetry.Record) string {
	if rec.Kind != string(conversation.ObservedAction) {
		return ""
	}
	action, err := rec.Action()
	if err != nil {
		return ""
	}

	switch action.Type {
	case stream.ActionProposeTour:
		notice := "Tour proposed"
		if action.TourDate != "" {
			notice += " for " + action.TourDate
		}
		if action.TourTime != "" {
			notice += " at " + action.TourTime
		}
		if action.UnitID != "" {
			notice += " (unit " + action.UnitID + ")"
		}
		return notice
	case stream.ActionAskClarification:
		if action.ClarificationNeeded != "" {
			return "Agent needs: " + action.ClarificationNeeded
		}
		return "Agent asked for clarification"
	case stream.ActionHandoffHuman:
		return "Handing off to a leasing specialist"
	default:
		return "Agent action: " + action.Type
	}
}
