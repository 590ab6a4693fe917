/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package smartblock

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/friendsincode/radiostream/internal/models"
)

// ErrInvalidSettings indicates a rule settings value that cannot drive a run.
var ErrInvalidSettings = errors.New("invalid rule settings")

// RuleSettings carries every weight, threshold and quota used by a run.
// It is read-only for the engine.
type RuleSettings struct {
	RatingPower float64 `json:"rating_power" yaml:"rating_power"`

	PlayLastTimePower   float64 `json:"play_last_time_power" yaml:"play_last_time_power"`
	PlayLastTimeMaxDays int     `json:"play_last_time_max_days" yaml:"play_last_time_max_days" validate:"gt=0"`

	PlayCountPower float64 `json:"play_count_power" yaml:"play_count_power"`
	PlayCountMax   int     `json:"play_count_max" yaml:"play_count_max" validate:"gt=0"`

	NewSongPower float64 `json:"new_song_power" yaml:"new_song_power"`

	UnratedPower   float64 `json:"unrated_power" yaml:"unrated_power"`
	Star1MinDays   int     `json:"star_1_min_days" yaml:"star_1_min_days" validate:"gte=0"`
	Star2MinDays   int     `json:"star_2_min_days" yaml:"star_2_min_days" validate:"gte=0"`
	Star3MinDays   int     `json:"star_3_min_days" yaml:"star_3_min_days" validate:"gte=0"`
	Star4MinDays   int     `json:"star_4_min_days" yaml:"star_4_min_days" validate:"gte=0"`
	Star5MinDays   int     `json:"star_5_min_days" yaml:"star_5_min_days" validate:"gte=0"`
	UnratedMinDays int     `json:"unrated_min_days" yaml:"unrated_min_days" validate:"gte=0"`

	LimitLowRatingFrom    int     `json:"limit_low_rating_from" yaml:"limit_low_rating_from" validate:"gte=0,lte=100"`
	LimitLowRatingPercent float64 `json:"limit_low_rating_percent" yaml:"limit_low_rating_percent" validate:"gte=0,lte=100"`

	LimitArtistsPercent  float64 `json:"limit_artists_percent" yaml:"limit_artists_percent" validate:"gte=0,lte=100"`
	LimitNewSongsPercent float64 `json:"limit_new_songs_percent" yaml:"limit_new_songs_percent" validate:"gte=0,lte=100"`

	LimitNewAlbumsCount int `json:"limit_new_albums_count" yaml:"limit_new_albums_count" validate:"gte=0"`
}

// DefaultRuleSettings returns the stock tuning used when nothing was saved yet.
func DefaultRuleSettings() RuleSettings {
	return RuleSettings{
		RatingPower: 10,

		PlayLastTimePower:   15,
		PlayLastTimeMaxDays: 300,

		PlayCountPower: -15,
		PlayCountMax:   100,

		NewSongPower: 30,

		UnratedPower:   DisqualifyPenalty,
		Star1MinDays:   84,
		Star2MinDays:   42,
		Star3MinDays:   21,
		Star4MinDays:   16,
		Star5MinDays:   14,
		UnratedMinDays: 0,

		LimitLowRatingFrom:    40,
		LimitLowRatingPercent: 10,

		LimitArtistsPercent:  10,
		LimitNewSongsPercent: 10,

		LimitNewAlbumsCount: 1,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	return v
}

// Validate rejects settings that would make scoring undefined.
func (s RuleSettings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	v := reflect.ValueOf(s)
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).Kind() != reflect.Float64 {
			continue
		}
		if f := v.Field(i).Float(); math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidSettings, jsonName(v.Type().Field(i)))
		}
	}
	return nil
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// MinRestDays returns the minimum days between plays for a rating bucket.
func (s RuleSettings) MinRestDays(rating int) (int, bool) {
	switch rating {
	case models.RatingUnrated:
		return s.UnratedMinDays, true
	case models.RatingOne:
		return s.Star1MinDays, true
	case models.RatingTwo:
		return s.Star2MinDays, true
	case models.RatingThree:
		return s.Star3MinDays, true
	case models.RatingFour:
		return s.Star4MinDays, true
	case models.RatingFive:
		return s.Star5MinDays, true
	}
	return 0, false
}

// Values flattens the settings into a key → number document.
func (s RuleSettings) Values() map[string]float64 {
	data, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	values := make(map[string]float64, len(SettingKeys()))
	if err := json.Unmarshal(data, &values); err != nil {
		return nil
	}
	return values
}

// SettingKeys lists the document keys every settings document must carry.
func SettingKeys() []string {
	t := reflect.TypeOf(RuleSettings{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if name := jsonName(t.Field(i)); name != "" {
			keys = append(keys, name)
		}
	}
	return keys
}

// RuleSettingsFromValues builds settings from a flat document. Every key
// must be present; nothing is defaulted.
func RuleSettingsFromValues(values map[string]float64) (RuleSettings, error) {
	var missing []string
	for _, key := range SettingKeys() {
		if _, ok := values[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return RuleSettings{}, fmt.Errorf("%w: missing %s", ErrInvalidSettings, strings.Join(missing, ", "))
	}

	data, err := json.Marshal(values)
	if err != nil {
		return RuleSettings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var s RuleSettings
	if err := dec.Decode(&s); err != nil {
		return RuleSettings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	if err := s.Validate(); err != nil {
		return RuleSettings{}, err
	}
	return s, nil
}
