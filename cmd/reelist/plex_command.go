package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"reelist/internal/services/plex"
)

func newPlexCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plex",
		Short: "Plex server utilities",
	}

	cmd.AddCommand(newPlexTestCommand(cmdCtx))

	return cmd
}

func newPlexTestCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Verify the Plex connection and configured library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := cmdCtx.plexClient()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if err := client.CheckConnection(ctx); err != nil {
				if errors.Is(err, plex.ErrUnauthorized) {
					return fmt.Errorf("connect to plex: token rejected by %s", cfg.Plex.URL)
				}
				return fmt.Errorf("connect to plex: %w", err)
			}
			fmt.Fprintf(out, "Connected to %s\n", cfg.Plex.URL)

			section, sections, err := client.SectionByTitle(ctx, cfg.Plex.Library)
			if err != nil {
				if errors.Is(err, plex.ErrNotFound) {
					fmt.Fprintln(out, renderSectionList(sections))
				}
				return err
			}

			items, err := client.SectionItems(ctx, section.Key)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Library %q holds %d movies\n", section.Title, len(items))
			return nil
		},
	}
}
