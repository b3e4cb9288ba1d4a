// ABOUTME: communities subcommand: lists the leasing communities a chat can start in
// ABOUTME: Prints one community per line with its ID for use with chat --community

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/leasing-chat/internal/client"
)

func newCommunitiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "communities",
		Short: "List leasing communities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(a.cfg.Agent, a.logger)
			communities, err := c.ListCommunities(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing communities: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(communities) == 0 {
				fmt.Fprintln(out, "No communities available")
				return nil
			}

			cyan := color.New(color.FgCyan)
			gray := color.New(color.FgHiBlack)
			for _, community := range communities {
				cyan.Fprintf(out, "%-20s", community.ID)
				fmt.Fprintf(out, " %s", community.Name)
				gray.Fprintf(out, "  %s", community.Address)
				if community.Phone != nil {
					gray.Fprintf(out, "  %s", *community.Phone)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
