package logger

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// Everforest Dark palette
var palette = struct {
	fg          string
	greenBright string
	greenMid    string
	greenDeep   string
	aqua        string
	orange      string
	yellow      string
	red         string
	redBg       string
	yellowBg    string
}{
	fg:          "\x1b[38;5;223m",
	greenBright: "\x1b[38;5;108m",
	greenMid:    "\x1b[38;5;107m",
	greenDeep:   "\x1b[38;5;65m",
	aqua:        "\x1b[38;5;109m",
	orange:      "\x1b[38;5;208m",
	yellow:      "\x1b[38;5;179m",
	red:         "\x1b[38;5;167m",
	redBg:       "\x1b[48;5;52m",
	yellowBg:    "\x1b[48;5;58m",
}

// backtickPattern matches `code` spans in user-facing messages.
var backtickPattern = regexp.MustCompile("`[^`]+`")

func colorComponent(name string) string {
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	switch hash % 3 {
	case 0:
		return palette.greenBright
	case 1:
		return palette.greenDeep
	default:
		return palette.orange
	}
}

// colorizeMessage renders the message in the base color with `code` spans
// (option names, dates) highlighted.
func colorizeMessage(msg string) string {
	var result strings.Builder
	last := 0
	for _, m := range backtickPattern.FindAllStringIndex(msg, -1) {
		if m[0] > last {
			result.WriteString(palette.fg + msg[last:m[0]] + colorReset)
		}
		result.WriteString(palette.orange + msg[m[0]:m[1]] + colorReset)
		last = m[1]
	}
	if last < len(msg) {
		result.WriteString(palette.fg + msg[last:] + colorReset)
	}
	return result.String()
}

// minimalEncoder implements a calm, compact console encoder.
// Format: "13:04:35  p.inat  refined query  request_id=3f2a… query=by me"
type minimalEncoder struct {
	zapcore.Encoder // Embed a base encoder for field serialization
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{Encoder: enc.Encoder.Clone()}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := buffer.NewPool().Get()

	final.AppendString(palette.greenMid)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	if lvl := levelColorString(ent.Level); lvl != "" {
		final.AppendString("  ")
		final.AppendString(lvl)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponent(ent.LoggerName))
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(colorizeMessage(ent.Message))

	if rendered := extractFieldValues(fields); rendered != "" {
		final.AppendString("  ")
		final.AppendString(rendered)
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for anything but INFO.
func levelColorString(level zapcore.Level) string {
	switch level {
	case zapcore.InfoLevel:
		return ""
	case zapcore.DebugLevel:
		return palette.greenDeep + "DEBUG" + colorReset
	case zapcore.WarnLevel:
		return colorBold + palette.yellowBg + palette.yellow + "WARN" + colorReset
	default:
		return colorBold + palette.redBg + palette.red + level.CapitalString() + colorReset
	}
}

// abbreviateName shortens component names: parser -> parser, plugin.inat -> p.inat
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// extractFieldValues renders every field as key=value in field order.
// Ids are highlighted, durations get a unit, error kinds stand out.
func extractFieldValues(fields []zapcore.Field) string {
	values := make([]string, 0, len(fields))
	for _, field := range fields {
		if field.Type == zapcore.SkipType {
			continue
		}
		val := fieldValue(field)
		switch field.Key {
		case FieldRequestID, FieldTaxonID, FieldUserID, FieldGuildID, FieldChannelID, FieldMessageID:
			values = append(values, field.Key+"="+palette.aqua+val+colorReset)
		case FieldQuery, FieldCanonical:
			values = append(values, field.Key+"="+palette.greenBright+val+colorReset)
		case FieldDurationMS:
			values = append(values, field.Key+"="+palette.greenBright+val+colorReset+"ms")
		case FieldErrorKind, FieldError:
			values = append(values, field.Key+"="+palette.red+val+colorReset)
		default:
			values = append(values, field.Key+"="+val)
		}
	}
	return strings.Join(values, " ")
}

// fieldValue renders one field through a map encoder so every zap field type,
// including arrays and objects, comes out as text.
func fieldValue(field zapcore.Field) string {
	m := zapcore.NewMapObjectEncoder()
	field.AddTo(m)
	v, ok := m.Fields[field.Key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
