package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldRequestID = "request_id"
	FieldUserID    = "user_id"
	FieldGuildID   = "guild_id"
	FieldChannelID = "channel_id"
	FieldMessageID = "message_id"

	// Components
	FieldComponent = "component"
	FieldPlugin    = "plugin"

	// Queries
	FieldQuery     = "query"
	FieldCanonical = "canonical"
	FieldTaxonID   = "taxon_id"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError     = "error"
	FieldErrorKind = "error_kind"

	// Files and paths
	FieldFile = "file"
)

// Context keys for propagating logging context
type contextKey string

const (
	requestIDKey contextKey = "logger_request_id"
	guildIDKey   contextKey = "logger_guild_id"
	channelIDKey contextKey = "logger_channel_id"
	componentKey contextKey = "logger_component"
)

// WithRequestID adds a request ID to the context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithChannel adds the guild and channel a command came from
func WithChannel(ctx context.Context, guildID, channelID string) context.Context {
	ctx = context.WithValue(ctx, guildIDKey, guildID)
	return context.WithValue(ctx, channelIDKey, channelID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		fields = append(fields, FieldRequestID, requestID)
	}
	if guildID, ok := ctx.Value(guildIDKey).(string); ok && guildID != "" {
		fields = append(fields, FieldGuildID, guildID)
	}
	if channelID, ok := ctx.Value(channelIDKey).(string); ok && channelID != "" {
		fields = append(fields, FieldChannelID, channelID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// LoggerFromContext returns a logger with fields extracted from context.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
//
// Example:
//
//	log := logger.ComponentLogger("plugin.inat")
//	log.Debugw("refining", logger.FieldQuery, text)
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
