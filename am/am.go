// Package am loads, validates, persists and watches the dronefly
// configuration ("am" as in "I am configured like this").
package am

import (
	"fmt"

	"github.com/dronefly-project/dronefly/parser"
)

// Config represents the dronefly configuration
type Config struct {
	INat   INatConfig   `mapstructure:"inat" toml:"inat" yaml:"inat" json:"inat"`
	Parser ParserConfig `mapstructure:"parser" toml:"parser" yaml:"parser" json:"parser"`
	Log    LogConfig    `mapstructure:"log" toml:"log" yaml:"log" json:"log"`
	Plugin PluginConfig `mapstructure:"plugin" toml:"plugin" yaml:"plugin" json:"plugin"`
}

// INatConfig configures links to the partner site
type INatConfig struct {
	WWWBaseURL string `mapstructure:"www_base_url" toml:"www_base_url" yaml:"www_base_url" json:"www_base_url"` // e.g. "https://www.inaturalist.org"
}

// ParserConfig configures query parsing
type ParserConfig struct {
	PreferDatesFrom string                  `mapstructure:"prefer_dates_from" toml:"prefer_dates_from" yaml:"prefer_dates_from" json:"prefer_dates_from"` // only "past" is supported
	Macros          map[string]parser.Macro `mapstructure:"macros" toml:"macros,omitempty" yaml:"macros,omitempty" json:"macros,omitempty"`               // added to, or replacing, the built-in macros
}

// LogConfig configures the global logger
type LogConfig struct {
	JSON      bool `mapstructure:"json" toml:"json" yaml:"json" json:"json"`                     // JSON lines instead of the console encoder
	Verbosity int  `mapstructure:"verbosity" toml:"verbosity" yaml:"verbosity" json:"verbosity"` // 0 warn, 1 info, 2+ debug
}

// PluginConfig configures how the plugin presents itself to the host bot
type PluginConfig struct {
	Name             string  `mapstructure:"name" toml:"name" yaml:"name" json:"name"`
	HostVersion      string  `mapstructure:"host_version" toml:"host_version" yaml:"host_version" json:"host_version"`                         // version of the host runtime (semver)
	RefinesPerMinute float64 `mapstructure:"refines_per_minute" toml:"refines_per_minute" yaml:"refines_per_minute" json:"refines_per_minute"` // per-user reaction refinements; 0 = unlimited
	RefineBurst      int     `mapstructure:"refine_burst" toml:"refine_burst" yaml:"refine_burst" json:"refine_burst"`                         // limiter burst
	WatchConfig      bool    `mapstructure:"watch_config" toml:"watch_config" yaml:"watch_config" json:"watch_config"`                         // reload macros when the config file changes
}

// PreferDatesFromPast resolves ambiguous dates toward the past, the only supported value.
const PreferDatesFromPast = "past"

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{INat: %s, Parser: {PreferDatesFrom: %s, Macros: %d}, Log: {JSON: %t, Verbosity: %d}, Plugin: %s}",
		c.INat.WWWBaseURL, c.Parser.PreferDatesFrom, len(c.Parser.Macros), c.Log.JSON, c.Log.Verbosity, c.Plugin.Name)
}
