// ABOUTME: observations subcommand: reads the SQLite observation ledger for one conversation
// ABOUTME: Prints a per-kind summary followed by the observations oldest first

package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/leasing-chat/internal/store"
)

func newObservationsCmd(a *app) *cobra.Command {
	var (
		conversationID string
		limit          int
	)

	cmd := &cobra.Command{
		Use:   "observations",
		Short: "Show recorded reply observations for a conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Telemetry.DatabasePath == "" {
				return errors.New("telemetry.database_path is not configured")
			}
			s, err := store.NewSQLiteStore(a.cfg.Telemetry.DatabasePath)
			if err != nil {
				return fmt.Errorf("opening observation store: %w", err)
			}
			defer s.Close()

			counts, err := s.CountByKind(cmd.Context(), conversationID)
			if err != nil {
				return err
			}
			obs, err := s.ListObservations(cmd.Context(), conversationID, limit)
			if err != nil {
				return err
			}

			printObservations(cmd.OutOrStdout(), counts, obs)
			return nil
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "Conversation ID")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum observations to list (max 500)")
	_ = cmd.MarkFlagRequired("conversation")
	return cmd
}

func printObservations(w io.Writer, counts map[store.Kind]int, obs []*store.Observation) {
	if len(obs) == 0 {
		fmt.Fprintln(w, "No observations recorded")
		return
	}

	kinds := make([]store.Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)

	gray := color.New(color.FgHiBlack)
	for _, k := range kinds {
		fmt.Fprintf(w, "%-16s %d\n", k, counts[k])
	}
	fmt.Fprintln(w)

	for _, o := range obs {
		gray.Fprintf(w, "%s ", o.Timestamp.Local().Format(time.TimeOnly))
		kindColor(o).Fprintf(w, "%-16s", o.Kind)
		fmt.Fprintf(w, " %s", o.MessageID)
		if o.EventType != "" {
			gray.Fprintf(w, " [%s]", o.EventType)
		}
		if o.Detail != "" {
			fmt.Fprintf(w, " %s", o.Detail)
		}
		fmt.Fprintln(w)
	}
}

func kindColor(o *store.Observation) *color.Color {
	switch {
	case o.Kind == store.KindAgentError, o.Kind == store.KindStreamFailure:
		return color.New(color.FgRed)
	case o.Kind == store.KindAction:
		return color.New(color.FgYellow)
	case o.Forced:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgGreen)
	}
}
