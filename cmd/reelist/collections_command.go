package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelist/internal/services/plex"
)

func newCollectionsCommand(cmdCtx *commandContext) *cobra.Command {
	var library string

	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List collections in the configured movie library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := cmdCtx.plexClient()
			if err != nil {
				return err
			}
			if strings.TrimSpace(library) == "" {
				library = cfg.Plex.Library
			}

			ctx := cmd.Context()
			section, sections, err := client.SectionByTitle(ctx, library)
			if err != nil {
				if errors.Is(err, plex.ErrNotFound) {
					fmt.Fprintln(cmd.OutOrStdout(), renderSectionList(sections))
				}
				return err
			}

			collections, err := client.Collections(ctx, section.Key)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(collections) == 0 {
				fmt.Fprintf(out, "Library %q has no collections\n", section.Title)
				return nil
			}

			rows := make([][]string, 0, len(collections))
			for _, collection := range collections {
				rows = append(rows, []string{collection.Title, strconv.Itoa(collection.Count)})
			}
			fmt.Fprintln(out, renderTable([]string{"Collection", "Items"}, rows, 1))
			return nil
		},
	}

	cmd.Flags().StringVar(&library, "library", "", "Plex movie library (defaults to plex.library)")
	return cmd
}
