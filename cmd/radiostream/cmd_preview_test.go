/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/friendsincode/radiostream/internal/models"
	"github.com/friendsincode/radiostream/internal/smartblock"
)

func TestFormatScoredTrack(t *testing.T) {
	st := smartblock.ScoredTrack{
		Track: models.Track{Artist: "Nirvana", Album: "Nevermind", Title: "Lithium"},
		Scores: smartblock.Scores{
			smartblock.RulePlayCount: -1.5,
			smartblock.RuleRating:    8,
		},
	}

	got := formatScoredTrack(st)
	want := "Track: " + padRight("Nirvana - Nevermind - Lithium", 60) + " Scores: 6.50=[play_count: -1.50, rating: 8.00]"
	if got != want {
		t.Fatalf("formatScoredTrack =\n%q\nwant\n%q", got, want)
	}
}

func TestPrintPreview(t *testing.T) {
	var buf bytes.Buffer
	printPreview(&buf, smartblock.GenerateResult{
		Tracks: []smartblock.ScoredTrack{
			{Track: models.Track{Artist: "A", Title: "One"}, Scores: smartblock.Scores{smartblock.RuleRating: 2}},
			{Track: models.Track{Artist: "B", Title: "Two"}, Scores: smartblock.Scores{smartblock.RuleRating: 1}},
		},
		Candidates: 7,
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "Track: A - One") {
		t.Fatalf("first line %q", lines[0])
	}
	if lines[2] != "2 of 7 candidate tracks selected" {
		t.Fatalf("summary line %q", lines[2])
	}
}

func padRight(s string, n int) string {
	return s + strings.Repeat(" ", n-len(s))
}
