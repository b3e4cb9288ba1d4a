// ABOUTME: Interactive input loop for the chat subcommand
// ABOUTME: Sends each line to the agent and handles /export, /help and /quit

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/leasing-chat/internal/conversation"
	"github.com/2389/leasing-chat/internal/transcript"
)

const helpText = `Commands:
  /export <file>  write the transcript as HTML
  /help           show commands
  /quit           leave the conversation`

var errQuit = errors.New("quit")

type repl struct {
	svc     *conversation.Service
	printer *transcript.Printer
	out     io.Writer
	logger  *slog.Logger
}

// run reads lines from in until EOF, /quit or ctx is done. Sends are
// synchronous: the next prompt appears once the reply is finalized.
func (r *repl) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	prompt := color.New(color.FgGreen, color.Bold)
	for {
		prompt.Fprint(r.out, "> ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.out)
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("reading input: %w", err)
					}
				default:
				}
				return nil
			}
			line = l
		}

		if err := r.handle(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
	}
}

// handle runs one input line. Commands are matched on the trimmed line; a
// message is sent exactly as typed.
func (r *repl) handle(ctx context.Context, line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	if cmd, arg, ok := parseCommand(trimmed); ok {
		switch cmd {
		case "quit", "exit":
			return errQuit
		case "help":
			fmt.Fprintln(r.out, helpText)
		case "export":
			if arg == "" {
				fmt.Fprintln(r.out, "usage: /export <file>")
				return nil
			}
			if err := r.export(arg); err != nil {
				color.New(color.FgRed).Fprintf(r.out, "export failed: %v\n", err)
				return nil
			}
			fmt.Fprintf(r.out, "transcript written to %s\n", arg)
		default:
			fmt.Fprintf(r.out, "unknown command /%s\n", cmd)
		}
		return nil
	}

	if err := r.svc.Send(ctx, line); err != nil {
		if errors.Is(err, conversation.ErrEmptyMessage) {
			return nil
		}
		return err
	}
	// Render the final state synchronously so it lands before the next prompt.
	r.printer.Render(r.svc.Session().Snapshot())
	return nil
}

func (r *repl) export(path string) error {
	html, err := transcript.RenderHTML(r.svc.Session().Snapshot())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	r.logger.Debug("transcript exported", "path", path)
	return nil
}

// parseCommand splits "/name arg" input. A lone "/" or a line starting with
// "//" is treated as a message.
func parseCommand(line string) (cmd, arg string, ok bool) {
	rest, found := strings.CutPrefix(line, "/")
	if !found || rest == "" || strings.HasPrefix(rest, "/") {
		return "", "", false
	}
	cmd, arg, _ = strings.Cut(rest, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg), true
}
