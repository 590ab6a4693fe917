/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package cache

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithoutAddressIsDisabled(t *testing.T) {
	c, err := New(Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.IsAvailable() {
		t.Fatal("cache without address should be disabled")
	}
}

func TestNewWithUnreachableServerIsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RedisAddr = "127.0.0.1:1"

	c, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()
	if c.IsAvailable() {
		t.Fatal("unreachable cache should be disabled")
	}
}

func TestDisabledCacheIsANoOp(t *testing.T) {
	ctx := context.Background()
	for name, c := range map[string]*Cache{"disabled": Disabled(zerolog.Nop()), "nil": nil} {
		t.Run(name, func(t *testing.T) {
			if err := c.SetRules(ctx, map[string]float64{"rating_power": 10}); err != nil {
				t.Fatalf("SetRules: %v", err)
			}
			if _, ok := c.GetRules(ctx); ok {
				t.Fatal("disabled cache returned rules")
			}
			if err := c.SetPlaylist(ctx, CachedPlaylist{Name: "Metal"}); err != nil {
				t.Fatalf("SetPlaylist: %v", err)
			}
			if _, ok := c.GetPlaylist(ctx, "Metal"); ok {
				t.Fatal("disabled cache returned a playlist")
			}
			if _, ok := c.GetPlaylistList(ctx); ok {
				t.Fatal("disabled cache returned a playlist list")
			}
			if err := c.InvalidatePlaylist(ctx, "Metal"); err != nil {
				t.Fatalf("InvalidatePlaylist: %v", err)
			}
			if err := c.FlushAll(ctx); err != nil {
				t.Fatalf("FlushAll: %v", err)
			}
			if err := c.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
		})
	}
}
