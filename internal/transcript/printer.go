// ABOUTME: Printer renders conversation snapshots to a terminal as they stream in
// ABOUTME: Prints only the new tail of each agent message and restates replaced finals

package transcript

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/2389/leasing-chat/internal/conversation"
)

// PrinterOption configures a Printer.
type PrinterOption func(*Printer)

// WithUserEcho also prints user messages. Off by default since the terminal
// already shows what was typed.
func WithUserEcho() PrinterOption {
	return func(p *Printer) { p.echoUser = true }
}

// Printer is a passive snapshot subscriber. It keeps what it has already
// written per message and prints only the difference, so dropped snapshots
// cost nothing but latency.
type Printer struct {
	mu       sync.Mutex
	out      io.Writer
	echoUser bool

	shown    map[string]string // message ID -> text already written
	finished map[string]bool

	agent    *color.Color
	user     *color.Color
	fallback *color.Color
	dim      *color.Color
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer, opts ...PrinterOption) *Printer {
	p := &Printer{
		out:      out,
		shown:    make(map[string]string),
		finished: make(map[string]bool),
		agent:    color.New(color.FgCyan, color.Bold),
		user:     color.New(color.FgGreen, color.Bold),
		fallback: color.New(color.FgRed),
		dim:      color.New(color.FgHiBlack),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run renders snapshots from ch until it closes or ctx is done.
func (p *Printer) Run(ctx context.Context, ch <-chan conversation.Conversation) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-ch:
			if !ok {
				return nil
			}
			p.Render(snap)
		}
	}
}

// Render writes whatever snap adds over what has been printed so far.
func (p *Printer) Render(snap conversation.Conversation) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, msg := range snap.Messages {
		if p.finished[msg.ID] {
			continue
		}
		if msg.Sender == conversation.SenderUser {
			if p.echoUser {
				p.user.Fprint(p.out, "you: ")
				fmt.Fprintln(p.out, msg.Content)
			}
			p.finished[msg.ID] = true
			continue
		}
		p.renderAgent(msg)
	}
}

func (p *Printer) renderAgent(msg conversation.Message) {
	shown, started := p.shown[msg.ID]
	if !started {
		p.agent.Fprint(p.out, "agent: ")
	}

	if msg.Streaming {
		// A streaming message only grows; anything else waits for the final text.
		if tail, ok := strings.CutPrefix(msg.Content, shown); ok && tail != "" {
			fmt.Fprint(p.out, tail)
			p.shown[msg.ID] = msg.Content
		} else if !started {
			p.shown[msg.ID] = ""
		}
		return
	}

	switch {
	case msg.Content == conversation.FallbackText:
		if shown != "" {
			fmt.Fprintln(p.out)
		}
		p.fallback.Fprintln(p.out, msg.Content)
	case msg.Content == shown:
		fmt.Fprintln(p.out)
	case shown == "":
		fmt.Fprintln(p.out, msg.Content)
	case strings.HasPrefix(msg.Content, shown):
		fmt.Fprintln(p.out, msg.Content[len(shown):])
	default:
		// The completion replaced the streamed text; restate it.
		fmt.Fprintln(p.out)
		p.dim.Fprint(p.out, "  ↳ ")
		fmt.Fprintln(p.out, msg.Content)
	}
	p.shown[msg.ID] = msg.Content
	p.finished[msg.ID] = true
}
