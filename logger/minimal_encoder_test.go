package logger

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func encode(t *testing.T, level zapcore.Level, name, msg string, fields ...zapcore.Field) string {
	t.Helper()
	entry := zapcore.Entry{
		Level:      level,
		Time:       time.Date(2026, 10, 17, 9, 30, 5, 0, time.UTC),
		LoggerName: name,
		Message:    msg,
	}
	buf, err := newMinimalEncoder().EncodeEntry(entry, fields)
	require.NoError(t, err)
	defer buf.Free()
	return ansi.ReplaceAllString(buf.String(), "")
}

func TestEncodeParsedQuery(t *testing.T) {
	line := encode(t, zapcore.InfoLevel, "parser", "parsed query",
		zap.String(FieldQuery, "rg birds by me"),
		zap.String(FieldCanonical, "birds by me opt quality_grade=research"),
		zap.Int(FieldTaxonID, 3),
		zap.String(FieldRequestID, "6f1c"),
	)

	assert.Equal(t, "09:30:05  parser  parsed query  "+
		"query=rg birds by me canonical=birds by me opt quality_grade=research "+
		"taxon_id=3 request_id=6f1c\n", line)
}

func TestEncodeRefineFailure(t *testing.T) {
	line := encode(t, zapcore.WarnLevel, "plugin.inat", "query not understood: `--bogus`",
		zap.String(FieldGuildID, "g1"),
		zap.String(FieldChannelID, "c7"),
		zap.String(FieldErrorKind, "syntax"),
		zap.Strings("suggestions", []string{"by", "from"}),
		zap.Int64(FieldDurationMS, 12),
	)

	assert.Contains(t, line, "  WARN  p.inat  query not understood: `--bogus`  ")
	assert.Contains(t, line, "guild_id=g1 channel_id=c7 error_kind=syntax suggestions=[by from] duration_ms=12ms")
}

func TestEncodeKeepsEveryField(t *testing.T) {
	fields := []zapcore.Field{
		zap.String(FieldUserID, "99"),
		zap.String(FieldMessageID, "m1"),
		zap.String(FieldPlugin, "inat"),
		zap.String(FieldComponent, "embed"),
		zap.String(FieldFile, "/etc/dronefly/dronefly.toml"),
		zap.Bool("watch_config", true),
		zap.Float64("refines_per_minute", 0.5),
		zap.Int("macros", 24),
		zap.String("place", "nova scotia"),
		zap.String("field.with.dots", "ok"),
		zap.Error(errors.New("unbalanced quote")),
	}
	line := encode(t, zapcore.DebugLevel, "am.watcher", "config reloaded", fields...)

	for _, want := range []string{
		"DEBUG",
		"a.watcher",
		"user_id=99",
		"message_id=m1",
		"plugin=inat",
		"component=embed",
		"file=/etc/dronefly/dronefly.toml",
		"watch_config=true",
		"refines_per_minute=0.5",
		"macros=24",
		"place=nova scotia",
		"field.with.dots=ok",
		"error=unbalanced quote",
	} {
		assert.Contains(t, line, want)
	}
}

func TestEncodeSkipsNilError(t *testing.T) {
	line := encode(t, zapcore.InfoLevel, "", "no error", zap.Error(nil))
	assert.Equal(t, "09:30:05  no error\n", line)
}

func TestEncodeLevels(t *testing.T) {
	assert.NotContains(t, encode(t, zapcore.InfoLevel, "parser", "x"), "INFO")
	assert.Contains(t, encode(t, zapcore.ErrorLevel, "parser", "x"), "ERROR")
}

func TestAbbreviateName(t *testing.T) {
	tests := map[string]string{
		"parser":      "parser",
		"plugin.inat": "p.inat",
		"am.watcher":  "a.watcher",
		".hidden":     ".hidden",
	}
	for in, want := range tests {
		assert.Equal(t, want, abbreviateName(in), in)
	}
}

func TestEncodeOtherFieldTypes(t *testing.T) {
	line := encode(t, zapcore.InfoLevel, "plugin", "limiter",
		zap.Duration("every", 2*time.Second),
		zap.Uint64("tokens", 5),
		zap.ByteString("raw", []byte("from peru")),
		zap.Binary("blob", []byte{0x01}),
	)

	assert.Contains(t, line, "every=2s")
	assert.Contains(t, line, "tokens=5")
	assert.Contains(t, line, "raw=from peru")
	assert.Contains(t, line, "blob=")
}
