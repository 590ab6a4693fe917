/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package version provides build version information.
package version

import (
	"fmt"
	"runtime"
)

// Version is the current version of radiostream.
// This is set at build time via ldflags:
//
//	-X github.com/friendsincode/radiostream/internal/version.Version=X.Y.Z
var Version = "0.3.0"

// Commit is the git revision the binary was built from.
var Commit = "unknown"

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

// Get returns the build information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
	}
}

// String renders the build information for the version command.
func (i Info) String() string {
	return fmt.Sprintf("radiostream %s (commit %s, %s)", i.Version, i.Commit, i.GoVersion)
}
