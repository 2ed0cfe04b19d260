// Package config loads the outliner's tunable settings the same way the
// rest of this module's ambient stack loads configuration: via Viper,
// layering a file, environment variables, and hardcoded defaults.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// OutliningSettings mirrors Outlining.cpp's hidden command-line flags
// (spec.md §9 "Configuration knobs"): how many rounds to run, how long a
// candidate must be before it is worth considering, how many parameters an
// outlined function may take, and whether new functions are inserted next
// to their first caller or appended at module end.
type OutliningSettings struct {
	PlaceNearCaller bool
	MaxRounds       int
	MinLength       int
	MinParameters   int
	MaxParameters   int
}

// DefaultOutliningSettings matches Outlining.cpp's own defaults: a
// three-instruction floor below which outlining can never pay for itself,
// no lower bound on parameter count, and a generous upper bound, run for up
// to four rounds with newly created functions kept near their caller.
func DefaultOutliningSettings() OutliningSettings {
	return OutliningSettings{
		PlaceNearCaller: true,
		MaxRounds:       4,
		MinLength:       3,
		MinParameters:   0,
		MaxParameters:   32,
	}
}

// Load reads outlining settings from configPath (if non-empty) and from
// SHAPELINE_-prefixed environment variables, falling back to
// DefaultOutliningSettings for anything neither source sets.
func Load(configPath string) (OutliningSettings, error) {
	settings := DefaultOutliningSettings()

	v := viper.New()
	v.SetEnvPrefix("SHAPELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("outlining.place_near_caller", settings.PlaceNearCaller)
	v.SetDefault("outlining.max_rounds", settings.MaxRounds)
	v.SetDefault("outlining.min_length", settings.MinLength)
	v.SetDefault("outlining.min_parameters", settings.MinParameters)
	v.SetDefault("outlining.max_parameters", settings.MaxParameters)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return settings, err
		}
	}

	settings.PlaceNearCaller = v.GetBool("outlining.place_near_caller")
	settings.MaxRounds = v.GetInt("outlining.max_rounds")
	settings.MinLength = v.GetInt("outlining.min_length")
	settings.MinParameters = v.GetInt("outlining.min_parameters")
	settings.MaxParameters = v.GetInt("outlining.max_parameters")
	return settings, nil
}
