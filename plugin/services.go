package plugin

import (
	"go.uber.org/zap"

	"github.com/dronefly-project/dronefly/am"
	"github.com/dronefly-project/dronefly/logger"
)

// ServiceRegistry provides access to host services for plugins.
type ServiceRegistry interface {
	// Logger returns a logger for this plugin
	Logger(name string) *zap.SugaredLogger

	// Config returns the loaded configuration
	Config() *am.Config

	// ConfigPath returns the file the configuration was loaded from, or ""
	ConfigPath() string
}

// DefaultServiceRegistry is the standard implementation of ServiceRegistry
type DefaultServiceRegistry struct {
	logger     *zap.SugaredLogger
	config     *am.Config
	configPath string
}

// NewServiceRegistry creates a service registry. A nil config means the
// built-in defaults; a nil logger means the global logger.
func NewServiceRegistry(config *am.Config, configPath string, log *zap.SugaredLogger) *DefaultServiceRegistry {
	if config == nil {
		config = am.Default()
	}
	return &DefaultServiceRegistry{
		logger:     log,
		config:     config,
		configPath: configPath,
	}
}

// Logger returns a named logger for a plugin
func (r *DefaultServiceRegistry) Logger(name string) *zap.SugaredLogger {
	base := r.logger
	if base == nil {
		base = logger.Logger
	}
	return base.Named("plugin."+name).With(logger.FieldPlugin, name)
}

// Config returns the loaded configuration
func (r *DefaultServiceRegistry) Config() *am.Config {
	return r.config
}

// ConfigPath returns the file the configuration was loaded from
func (r *DefaultServiceRegistry) ConfigPath() string {
	return r.configPath
}
