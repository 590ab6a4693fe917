/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/friendsincode/radiostream/internal/models"
	"github.com/friendsincode/radiostream/internal/smartblock"
)

// LoadRuleSettingsFile reads a YAML rule settings document from disk.
func LoadRuleSettingsFile(path string) (smartblock.RuleSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return smartblock.RuleSettings{}, fmt.Errorf("read rules file: %w", err)
	}
	return DecodeRuleSettings(data)
}

// DecodeRuleSettings parses a flat YAML mapping of rule keys to numbers.
// Every key must be present.
func DecodeRuleSettings(data []byte) (smartblock.RuleSettings, error) {
	var values map[string]float64
	if err := yaml.Unmarshal(data, &values); err != nil {
		return smartblock.RuleSettings{}, fmt.Errorf("%w: %v", smartblock.ErrInvalidSettings, err)
	}
	return smartblock.RuleSettingsFromValues(values)
}

// EncodeRuleSettings renders rule settings as YAML.
func EncodeRuleSettings(rules smartblock.RuleSettings) ([]byte, error) {
	return yaml.Marshal(rules)
}

// trackFile is the document read by LoadTracksFile.
type trackFile struct {
	Tracks []models.Track `yaml:"tracks"`
}

// LoadTracksFile reads a YAML catalog export of the form
// "tracks: [{artist, album, title, rating, playcount, last_played}]".
func LoadTracksFile(path string) ([]models.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tracks file: %w", err)
	}
	var doc trackFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tracks file: %w", err)
	}
	return doc.Tracks, nil
}
