/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/friendsincode/radiostream/internal/settings"
	"github.com/friendsincode/radiostream/internal/smartblock"
)

var previewCmd = &cobra.Command{
	Use:   "preview [query...]",
	Short: "Print a generated playlist with per-rule scores",
	Long: `Generate a playlist from the catalog and print every selected track
with the contribution of each rule. The query uses the playlist query
language, e.g. "genre:rock rating:60..". Without a query the whole
catalog is considered.`,
	RunE: runPreview,
}

var (
	previewCount    int
	previewShuffle  bool
	previewPlaylist string
	previewRules    string
	previewSeed     int64
)

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().IntVarP(&previewCount, "count", "c", 10, "Number of tracks to select")
	previewCmd.Flags().BoolVarP(&previewShuffle, "shuffle", "s", false, "Shuffle the selection")
	previewCmd.Flags().StringVar(&previewPlaylist, "playlist", "", "Use the query of a saved playlist")
	previewCmd.Flags().StringVar(&previewRules, "rules", "", "YAML rule settings file overriding the stored rules")
	previewCmd.Flags().Int64Var(&previewSeed, "seed", 0, "Shuffle seed (0 picks one from the clock)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if previewPlaylist != "" && len(args) > 0 {
		return fmt.Errorf("use either a query or --playlist, not both")
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	ctx := cmd.Context()
	stored, err := cat.settings.Load(ctx)
	if err != nil {
		return err
	}

	rules := stored.Rules
	if previewRules != "" {
		if rules, err = settings.LoadRuleSettingsFile(previewRules); err != nil {
			return err
		}
	}

	query := strings.Join(args, " ")
	if previewPlaylist != "" {
		playlist, err := cat.settings.Playlist(ctx, previewPlaylist)
		if err != nil {
			return err
		}
		query = playlist.Query
	}

	engine := smartblock.New(cat.library, logger)
	result, err := engine.Generate(ctx, smartblock.GenerateRequest{
		Settings: rules,
		Count:    previewCount,
		Shuffle:  previewShuffle,
		Query:    query,
		Seed:     previewSeed,
	})
	if err != nil {
		return err
	}

	printPreview(cmd.OutOrStdout(), result)
	return nil
}

func printPreview(w io.Writer, result smartblock.GenerateResult) {
	for _, st := range result.Tracks {
		fmt.Fprintln(w, formatScoredTrack(st))
	}
	fmt.Fprintf(w, "%d of %d candidate tracks selected\n", len(result.Tracks), result.Candidates)
}

// formatScoredTrack renders one line of the preview listing.
func formatScoredTrack(st smartblock.ScoredTrack) string {
	parts := make([]string, 0, len(st.Scores))
	for _, name := range st.Scores.Names() {
		parts = append(parts, fmt.Sprintf("%s: %.2f", name, st.Scores[name]))
	}
	return fmt.Sprintf("Track: %-60s Scores: %.2f=[%s]", st.Track.String(), st.Scores.Total(), strings.Join(parts, ", "))
}
