package plugin

import (
	"context"
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/dronefly-project/dronefly/errors"
)

// Registry manages all loaded plugins
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	version string // host version
}

// NewRegistry creates a new plugin registry for a host of the given version
func NewRegistry(hostVersion string) *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
		version: hostVersion,
	}
}

// Register registers a plugin
// Returns error if plugin name conflicts or version incompatible
func (r *Registry) Register(plugin Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	metadata := plugin.Metadata()

	if _, exists := r.plugins[metadata.Name]; exists {
		return errors.Newf("plugin already registered: %s", metadata.Name)
	}

	if err := r.validateVersion(metadata); err != nil {
		return errors.Wrapf(err, "version incompatible for %s", metadata.Name)
	}

	r.plugins[metadata.Name] = plugin
	return nil
}

// Get retrieves a plugin by name
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plugin, ok := r.plugins[name]
	return plugin, ok
}

// List returns all registered plugin names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// snapshot copies the plugin map so lifecycle calls run without the lock
func (r *Registry) snapshot() map[string]Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plugins := make(map[string]Plugin, len(r.plugins))
	for name, plugin := range r.plugins {
		plugins[name] = plugin
	}
	return plugins
}

// InitializeAll initializes all registered plugins in name order
func (r *Registry) InitializeAll(ctx context.Context, services ServiceRegistry) error {
	plugins := r.snapshot()
	for _, name := range r.List() {
		if err := plugins[name].Initialize(ctx, services); err != nil {
			return errors.Wrapf(err, "failed to initialize plugin %s", name)
		}
	}
	return nil
}

// ShutdownAll shuts down all registered plugins in reverse name order
func (r *Registry) ShutdownAll(ctx context.Context) error {
	plugins := r.snapshot()
	names := r.List()
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	var errs []error
	for _, name := range names {
		if err := plugins[name].Shutdown(ctx); err != nil {
			errs = append(errs, errors.Wrapf(err, "failed to shutdown plugin %s", name))
		}
	}

	if len(errs) > 0 {
		return errors.Newf("shutdown errors: %v", errs)
	}
	return nil
}

// HealthCheckAll checks health of all plugins
func (r *Registry) HealthCheckAll(ctx context.Context) map[string]HealthStatus {
	plugins := r.snapshot()
	results := make(map[string]HealthStatus, len(plugins))
	for name, plugin := range plugins {
		results[name] = plugin.Health(ctx)
	}
	return results
}

// validateVersion checks if the plugin's host constraint admits this host
func (r *Registry) validateVersion(metadata Metadata) error {
	if metadata.HostVersion == "" {
		return nil
	}

	hostVer, err := semver.NewVersion(r.version)
	if err != nil {
		return errors.Wrapf(err, "invalid host version %s", r.version)
	}

	constraint, err := semver.NewConstraint(metadata.HostVersion)
	if err != nil {
		return errors.Wrapf(err, "invalid version constraint %s", metadata.HostVersion)
	}

	if !constraint.Check(hostVer) {
		return errors.Newf("plugin requires host %s, but running %s", metadata.HostVersion, r.version)
	}

	return nil
}
