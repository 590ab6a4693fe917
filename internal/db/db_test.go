/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"testing"

	"github.com/friendsincode/radiostream/internal/config"
	"github.com/friendsincode/radiostream/internal/models"
)

func TestDialectorRejectsUnknownBackend(t *testing.T) {
	if _, err := Dialector("oracle", "dsn"); err == nil {
		t.Fatal("expected unknown backend to fail")
	}
	for _, backend := range []config.DatabaseBackend{config.DatabasePostgres, config.DatabaseMySQL, config.DatabaseSQLite} {
		d, err := Dialector(backend, "dsn")
		if err != nil {
			t.Fatalf("Dialector(%s): %v", backend, err)
		}
		if d.Name() != string(backend) {
			t.Fatalf("Dialector(%s).Name() = %s", backend, d.Name())
		}
	}
}

func TestConnectAndMigrateSQLite(t *testing.T) {
	database, err := Connect(&config.Config{
		Environment: "test",
		DBBackend:   config.DatabaseSQLite,
		DBDSN:       "file::memory:",
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer Close(database)

	if err := Migrate(database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	for _, model := range []any{&models.Track{}, &models.Playlist{}, &models.RuleSettingsRecord{}} {
		if !database.Migrator().HasTable(model) {
			t.Fatalf("missing table for %T", model)
		}
	}

	bad := models.Track{ID: "t1", Artist: "A", Title: "T", PlayCount: -1}
	if err := database.Create(&bad).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := Migrate(database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	var got models.Track
	if err := database.First(&got, "id = ?", "t1").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.PlayCount != 0 {
		t.Fatalf("play count = %d, want 0 after migration", got.PlayCount)
	}
}
