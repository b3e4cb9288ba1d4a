// ABOUTME: Entry point for the leasing-chat terminal client
// ABOUTME: Wires config, logging and the cobra command tree

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389/leasing-chat/internal/config"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _                _                    _           _
| | ___  __ _ ___(_)_ __   __ _    ___| |__   __ _| |_
| |/ _ \/ _' / __| | '_ \ / _' |  / __| '_ \ / _' | __|
| |  __/ (_| \__ \ | | | | (_| | | (__| | | | (_| | |_
|_|\___|\__,_|___/_|_| |_|\__, |  \___|_| |_|\__,_|\__|
                          |___/
`

// app carries what every subcommand needs once the root has loaded config.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "leasing-chat",
		Short:         "Chat with a leasing agent from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default $LEASING_CHAT_CONFIG or ~/.config/leasing-chat/config.yaml)")

	root.AddCommand(
		newCommunitiesCmd(a),
		newChatCmd(a),
		newObservationsCmd(a),
	)
	return root
}

// load resolves the config file and sets up logging. An explicit --config
// must exist; the default location may be absent.
func (a *app) load() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.Load(a.configPath)
	} else {
		a.configPath = config.Path()
		cfg, err = config.LoadOrDefault(a.configPath)
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a.cfg = cfg
	a.logger = setupLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(a.logger)
	return nil
}
