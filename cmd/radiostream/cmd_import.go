/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/radiostream/internal/eventbus"
	"github.com/friendsincode/radiostream/internal/events"
	"github.com/friendsincode/radiostream/internal/settings"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import tracks from a YAML catalog export",
	Long: `Insert or replace tracks listed in a YAML file of the form

  tracks:
    - id: 7f0c...
      artist: Nirvana
      album: Nevermind
      title: Lithium
      rating: 80
      playcount: 12
      last_played: 2026-01-02T15:04:05Z

Tracks without an id get a new one. The whole file is rejected when any
rating is not one of 0, 20, 40, 60, 80 or 100.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importDryRun bool

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse the file without writing to the database")
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	tracks, err := settings.LoadTracksFile(args[0])
	if err != nil {
		return err
	}
	if importDryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "%d tracks parsed from %s\n", len(tracks), args[0])
		return nil
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	saved, err := cat.library.Upsert(cmd.Context(), tracks)
	if err != nil {
		return fmt.Errorf("import tracks: %w", err)
	}
	logger.Info().Str("file", args[0]).Int("tracks", len(saved)).Msg("tracks imported")

	if cfg.NATSURL != "" {
		if err := announceImport(len(saved), args[0]); err != nil {
			logger.Warn().Err(err).Msg("import event not forwarded")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d tracks imported\n", len(saved))
	return nil
}

// announceImport publishes a track.imported event to NATS so running
// servers can react to the new catalog.
func announceImport(count int, source string) error {
	nc, err := eventbus.Dial(eventbus.DefaultNATSConfig(cfg.NATSURL), logger)
	if err != nil {
		return err
	}

	bus := events.NewBus()
	fwd := eventbus.NewForwarder(bus, nc, logger)
	fwd.Start()
	bus.Publish(events.EventTracksImported, events.Payload{"count": count, "source": source})
	return fwd.Close()
}
