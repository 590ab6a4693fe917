/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"strings"
	"time"
)

// Rating buckets. Zero means the listener has not rated the track yet.
const (
	RatingUnrated = 0
	RatingOne     = 20
	RatingTwo     = 40
	RatingThree   = 60
	RatingFour    = 80
	RatingFive    = 100

	MaxRating = RatingFive
)

// ValidRatings lists every accepted rating value in ascending order.
var ValidRatings = []int{RatingUnrated, RatingOne, RatingTwo, RatingThree, RatingFour, RatingFive}

// IsValidRating reports whether r is one of the rating buckets.
func IsValidRating(r int) bool {
	for _, v := range ValidRatings {
		if v == r {
			return true
		}
	}
	return false
}

// Track is a catalog entry considered by the playlist generator.
type Track struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id" yaml:"id"`
	Artist     string     `gorm:"index" json:"artist" yaml:"artist"`
	Album      string     `gorm:"index" json:"album" yaml:"album"`
	Title      string     `gorm:"index" json:"title" yaml:"title"`
	Genre      string     `gorm:"index" json:"genre,omitempty" yaml:"genre"`
	Path       string     `json:"path,omitempty" yaml:"path"`
	Rating     int        `gorm:"index" json:"rating" yaml:"rating"`
	PlayCount  int        `json:"playcount" yaml:"playcount"`
	LastPlayed *time.Time `json:"last_played,omitempty" yaml:"last_played"`
	CreatedAt  time.Time  `json:"-" yaml:"-"`
	UpdatedAt  time.Time  `json:"-" yaml:"-"`
}

// IsNew reports whether the track is still unrated.
func (t Track) IsNew() bool {
	return t.Rating == RatingUnrated
}

// AlbumKey groups tracks of the same album by the same artist.
func (t Track) AlbumKey() string {
	return t.Artist + " - " + t.Album
}

// String renders the track the way listings show it.
func (t Track) String() string {
	var b strings.Builder
	b.WriteString(t.Artist)
	b.WriteString(" - ")
	if t.Album != "" {
		b.WriteString(t.Album)
		b.WriteString(" - ")
	}
	b.WriteString(t.Title)
	return b.String()
}

// Playlist is a named, persisted query over the catalog.
type Playlist struct {
	Name      string    `gorm:"primaryKey;type:varchar(255)" json:"name"`
	Query     string    `gorm:"type:text" json:"query"`
	CanDelete bool      `json:"can_delete"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// RuleSettingsRecord persists the rule weights as a flat JSON document.
type RuleSettingsRecord struct {
	ID        string             `gorm:"primaryKey;type:varchar(64)"`
	Values    map[string]float64 `gorm:"type:text;serializer:json"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (RuleSettingsRecord) TableName() string {
	return "rule_settings"
}
