package am

import (
	"github.com/spf13/viper"
)

// Default values
const (
	DefaultWWWBaseURL       = "https://www.inaturalist.org"
	DefaultPluginName       = "inat"
	DefaultHostVersion      = "3.5.0"
	DefaultRefinesPerMinute = 30
	DefaultRefineBurst      = 5
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("inat.www_base_url", DefaultWWWBaseURL)

	v.SetDefault("parser.prefer_dates_from", PreferDatesFromPast)

	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)

	v.SetDefault("plugin.name", DefaultPluginName)
	v.SetDefault("plugin.host_version", DefaultHostVersion)
	v.SetDefault("plugin.refines_per_minute", DefaultRefinesPerMinute)
	v.SetDefault("plugin.refine_burst", DefaultRefineBurst)
	v.SetDefault("plugin.watch_config", true)
}

// bindEnvVars binds the settings most often overridden in deployments
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("inat.www_base_url", "DRONEFLY_INAT_WWW_BASE_URL")
	v.BindEnv("log.json", "DRONEFLY_LOG_JSON")
	v.BindEnv("log.verbosity", "DRONEFLY_LOG_VERBOSITY")
	v.BindEnv("plugin.host_version", "DRONEFLY_PLUGIN_HOST_VERSION")
}

// Default returns a config holding only the built-in defaults
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// Defaults always decode
		panic(err)
	}
	return cfg
}

// GetWWWBaseURL returns the partner site base URL (default: https://www.inaturalist.org)
func (c *Config) GetWWWBaseURL() string {
	if c.INat.WWWBaseURL == "" {
		return DefaultWWWBaseURL
	}
	return c.INat.WWWBaseURL
}
