/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/friendsincode/radiostream/internal/cache"
	"github.com/friendsincode/radiostream/internal/db"
	"github.com/friendsincode/radiostream/internal/library"
	"github.com/friendsincode/radiostream/internal/settings"
)

// catalog holds the stores the offline commands work on.
type catalog struct {
	db       *gorm.DB
	cache    *cache.Cache
	library  *library.Library
	settings *settings.Store
}

// openCatalog connects to the configured database and migrates it.
func openCatalog() (*catalog, error) {
	database, err := db.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		_ = db.Close(database)
		return nil, err
	}

	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisAddr = cfg.RedisAddr
	cacheCfg.RedisPassword = cfg.RedisPassword
	cacheCfg.RedisDB = cfg.RedisDB
	c, err := cache.New(cacheCfg, logger)
	if err != nil {
		c = cache.Disabled(logger)
	}

	return &catalog{
		db:       database,
		cache:    c,
		library:  library.New(database, logger),
		settings: settings.NewStore(database, c, logger),
	}, nil
}

func (c *catalog) Close() {
	_ = c.cache.Close()
	if err := db.Close(c.db); err != nil {
		logger.Warn().Err(err).Msg("close database")
	}
}
