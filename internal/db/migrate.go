/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"gorm.io/gorm"

	"github.com/friendsincode/radiostream/internal/models"
)

// Migrate applies database schema migrations using GORM auto-migrate.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.Track{},
		&models.Playlist{},
		&models.RuleSettingsRecord{},
	); err != nil {
		return err
	}

	if err := clampNegativePlayCounts(database); err != nil {
		return err
	}

	return nil
}

// clampNegativePlayCounts repairs rows written by older importers that
// stored -1 for "unknown".
func clampNegativePlayCounts(database *gorm.DB) error {
	return database.Model(&models.Track{}).
		Where("play_count < ?", 0).
		Update("play_count", 0).Error
}
