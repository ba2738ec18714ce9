// Package plugin provides the boundary between dronefly and the host bot
// runtime that loads it.
//
// The host owns the chat connection, rendering, and the remote API client.
// A plugin receives commands and reaction interactions from the host and
// answers with queries the host turns into API calls and messages.
//
// Architecture:
//   - The host registers each plugin in a Registry, which checks the
//     plugin's host-version constraint with semver
//   - Plugins read configuration and loggers through a ServiceRegistry
//   - Follow-up interactions on one message are serialized with KeyedLocks
package plugin

import (
	"context"
)

// Plugin defines the interface that every plugin loaded by the host implements.
type Plugin interface {
	// Metadata returns information about this plugin
	Metadata() Metadata

	// Initialize is called when the plugin is loaded
	Initialize(ctx context.Context, services ServiceRegistry) error

	// Shutdown is called when the host is shutting down
	Shutdown(ctx context.Context) error

	// Health returns the health status of this plugin
	Health(ctx context.Context) HealthStatus
}

// Metadata describes a plugin
type Metadata struct {
	// Name is the plugin identifier (e.g., "inat")
	Name string

	// Version is the plugin version (semver)
	Version string

	// HostVersion is the required host version (semver constraint, e.g. ">= 3.5")
	HostVersion string

	// Description is a human-readable description
	Description string

	// Author is the plugin author/maintainer
	Author string

	// License is the plugin license (e.g., "AGPL-3.0")
	License string
}

// HealthStatus represents the health of a plugin
type HealthStatus struct {
	Healthy bool
	Paused  bool // True if plugin is intentionally paused (not a failure)
	Message string
	Details map[string]interface{}
}

// PluginState represents the current state of a plugin
type PluginState string

const (
	// StateLoading indicates the plugin is being initialized
	StateLoading PluginState = "loading"
	// StateRunning indicates the plugin is active and processing requests
	StateRunning PluginState = "running"
	// StatePaused indicates the plugin is temporarily suspended
	StatePaused PluginState = "paused"
	// StateStopped indicates the plugin has been shut down
	StateStopped PluginState = "stopped"
	// StateFailed indicates the plugin failed to initialize
	StateFailed PluginState = "failed"
)

// PausablePlugin is an optional interface for plugins that support pause/resume.
type PausablePlugin interface {
	Plugin

	// Pause temporarily suspends the plugin's operations.
	// The plugin should refuse new requests but keep its state.
	Pause(ctx context.Context) error

	// Resume restores the plugin to active operation after a pause.
	Resume(ctx context.Context) error
}
