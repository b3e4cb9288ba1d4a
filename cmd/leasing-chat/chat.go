// ABOUTME: chat subcommand: starts a conversation and runs the interactive loop
// ABOUTME: Printer, bus listener and input loop run together under an errgroup

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/2389/leasing-chat/internal/client"
	"github.com/2389/leasing-chat/internal/config"
	"github.com/2389/leasing-chat/internal/conversation"
	"github.com/2389/leasing-chat/internal/stream"
	"github.com/2389/leasing-chat/internal/telemetry"
	"github.com/2389/leasing-chat/internal/transcript"
)

// moveInLead is how far ahead the move-in date defaults to.
const moveInLead = 30 * 24 * time.Hour

type chatOptions struct {
	name      string
	email     string
	phone     string
	community string
	bedrooms  int
	moveIn    string
	echo      bool
	quiet     bool
}

func newChatCmd(a *app) *cobra.Command {
	var opts chatOptions

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start a conversation with the leasing agent",
		Long: `Start a conversation with the leasing agent and chat interactively.

Type a message and press enter to send it. Commands:
  /export <file>  write the transcript as HTML
  /help           show commands
  /quit           leave the conversation`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.startRequest()
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), a, opts, req, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.name, "name", "", "Your name")
	f.StringVar(&opts.email, "email", "", "Your email address")
	f.StringVar(&opts.phone, "phone", "", "Your phone number (optional)")
	f.StringVar(&opts.community, "community", "", "Community ID (see the communities command)")
	f.IntVar(&opts.bedrooms, "bedrooms", 1, "Bedrooms wanted")
	f.StringVar(&opts.moveIn, "move-in", "", "Move-in date YYYY-MM-DD (default 30 days from today)")
	f.BoolVar(&opts.echo, "echo", false, "Echo your own messages into the transcript")
	f.BoolVar(&opts.quiet, "quiet", false, "Skip the banner")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("community")

	return cmd
}

// startRequest builds and validates the bootstrap request from the flags.
func (o chatOptions) startRequest() (client.StartRequest, error) {
	moveIn := o.moveIn
	if moveIn == "" {
		moveIn = time.Now().Add(moveInLead).Format(time.DateOnly)
	} else if _, err := time.Parse(time.DateOnly, moveIn); err != nil {
		return client.StartRequest{}, fmt.Errorf("--move-in %q is not a YYYY-MM-DD date", moveIn)
	}

	req := client.StartRequest{
		Lead: client.Lead{
			Name:  strings.TrimSpace(o.name),
			Email: strings.TrimSpace(o.email),
		},
		Preferences: client.Preferences{
			Bedrooms: o.bedrooms,
			MoveIn:   moveIn,
		},
		CommunityID: o.community,
	}
	if phone := strings.TrimSpace(o.phone); phone != "" {
		req.Lead.Phone = &phone
	}

	if err := req.Validate(); err != nil {
		return client.StartRequest{}, err
	}
	return req, nil
}

func streamOptions(cfg config.StreamConfig) []stream.Option {
	return []stream.Option{
		stream.WithMaxLineBytes(cfg.MaxLineBytes),
		stream.WithMaxMalformed(cfg.MaxMalformedFrames),
		stream.WithReadBuffer(cfg.ReadBufferBytes),
	}
}

func runChat(ctx context.Context, a *app, opts chatOptions, req client.StartRequest, in io.Reader, out, errOut io.Writer) error {
	logger := a.logger

	if !opts.quiet {
		cyan := color.New(color.FgCyan)
		cyan.Fprint(out, banner)
		gray := color.New(color.FgHiBlack)
		gray.Fprintf(out, "    version: %s\n", version)
		gray.Fprintf(out, "    agent:   %s\n\n", a.cfg.Agent.BaseURL)
	}

	tel, err := setupTelemetry(a.cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	defer tel.Close()

	broadcaster := conversation.NewBroadcaster(logger)
	defer broadcaster.Close()

	session := conversation.NewSession(
		conversation.WithBroadcaster(broadcaster),
		conversation.WithSessionLogger(logger),
	)
	svc := conversation.New(
		client.New(a.cfg.Agent, logger),
		session,
		tel.observer,
		logger,
		conversation.WithIdleTimeout(a.cfg.Agent.IdleTimeout),
		conversation.WithStreamOptions(streamOptions(a.cfg.Stream)...),
	)

	if err := svc.Start(ctx, req); err != nil {
		return err
	}
	color.New(color.FgHiBlack).Fprintf(out, "conversation %s\n", session.Snapshot().ConversationID)

	var printerOpts []transcript.PrinterOption
	if opts.echo {
		printerOpts = append(printerOpts, transcript.WithUserEcho())
	}
	printer := transcript.NewPrinter(out, printerOpts...)
	printer.Render(session.Snapshot())

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, stop := context.WithCancel(gctx)
	defer stop()

	snapshots, _ := broadcaster.Subscribe(loopCtx)
	g.Go(func() error {
		return printer.Run(loopCtx, snapshots)
	})
	g.Go(func() error {
		return telemetry.Listen(loopCtx, tel.bus, tel.topic, func(rec telemetry.Record) {
			if notice := actionNotice(rec); notice != "" {
				color.New(color.FgYellow).Fprintf(errOut, "  * %s\n", notice)
			}
		})
	})
	g.Go(func() error {
		defer stop()
		r := &repl{svc: svc, printer: printer, out: out, logger: logger}
		return r.run(loopCtx, in)
	})

	return g.Wait()
}
