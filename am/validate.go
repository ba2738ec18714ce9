package am

import (
	"github.com/Masterminds/semver/v3"

	"github.com/dronefly-project/dronefly/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Parser.PreferDatesFrom != "" && c.Parser.PreferDatesFrom != PreferDatesFromPast {
		return errors.Newf("parser.prefer_dates_from must be %q, got %q", PreferDatesFromPast, c.Parser.PreferDatesFrom)
	}

	for name, macro := range c.Parser.Macros {
		if name == "" {
			return errors.New("parser.macros: macro name cannot be empty")
		}
		if macro.IsEmpty() {
			return errors.Newf("parser.macros.%s expands to nothing", name)
		}
	}

	if c.Log.Verbosity < 0 {
		return errors.Newf("log.verbosity must be >= 0, got %d", c.Log.Verbosity)
	}

	if c.Plugin.HostVersion != "" {
		if _, err := semver.NewVersion(c.Plugin.HostVersion); err != nil {
			return errors.Wrapf(err, "plugin.host_version %q is not a semantic version", c.Plugin.HostVersion)
		}
	}

	// 0 = unlimited, negative = invalid
	if c.Plugin.RefinesPerMinute < 0 {
		return errors.Newf("plugin.refines_per_minute must be >= 0, got %f", c.Plugin.RefinesPerMinute)
	}
	if c.Plugin.RefineBurst < 0 {
		return errors.Newf("plugin.refine_burst must be >= 0, got %d", c.Plugin.RefineBurst)
	}

	return nil
}
