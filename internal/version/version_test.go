/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })

	Version, Commit = "1.2.3", "abc123"
	info := Get()
	if info.Version != "1.2.3" || info.Commit != "abc123" {
		t.Fatalf("unexpected info %+v", info)
	}
	if !strings.HasPrefix(info.String(), "radiostream 1.2.3 (commit abc123, go") {
		t.Fatalf("String() = %q", info.String())
	}
}
