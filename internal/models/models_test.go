/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "testing"

func TestIsValidRating(t *testing.T) {
	tests := []struct {
		rating int
		want   bool
	}{
		{0, true},
		{20, true},
		{60, true},
		{100, true},
		{55, false},
		{-20, false},
		{120, false},
	}
	for _, tt := range tests {
		if got := IsValidRating(tt.rating); got != tt.want {
			t.Errorf("IsValidRating(%d) = %v, want %v", tt.rating, got, tt.want)
		}
	}
}

func TestTrackHelpers(t *testing.T) {
	tr := Track{Artist: "Portishead", Album: "Dummy", Title: "Roads"}
	if !tr.IsNew() {
		t.Fatal("unrated track should be new")
	}
	if got := tr.AlbumKey(); got != "Portishead - Dummy" {
		t.Fatalf("AlbumKey = %q", got)
	}
	if got := tr.String(); got != "Portishead - Dummy - Roads" {
		t.Fatalf("String = %q", got)
	}

	tr.Album = ""
	tr.Rating = RatingFour
	if tr.IsNew() {
		t.Fatal("rated track should not be new")
	}
	if got := tr.String(); got != "Portishead - Roads" {
		t.Fatalf("String without album = %q", got)
	}
}
