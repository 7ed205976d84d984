package logger

import (
	"context"
	"fmt"
	"log"
	"maps"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Level orders log severities
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var minLevel atomic.Int32

func init() {
	minLevel.Store(int32(LevelInfo))
}

// SetLevel sets the minimum printed level from its name; unknown names select info
func SetLevel(name string) {
	minLevel.Store(int32(ParseLevel(name)))
}

// ParseLevel maps debug/info/warn/error to a Level
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func enabled(l Level) bool {
	return int32(l) >= minLevel.Load()
}

// Info logs an informational message with structured fields
func Info(msg string, fields Fields) {
	if enabled(LevelInfo) {
		log.Printf("[INFO] %s %v", msg, formatFields(fields))
	}
	breadcrumb("info", msg, fields, sentry.LevelInfo)
}

// Error logs an error message with structured fields and sends to Sentry
func Error(msg string, err error, fields Fields) {
	log.Printf("[ERROR] %s: %v %v", msg, err, formatFields(fields))

	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			for key, value := range fields {
				scope.SetContext(key, map[string]interface{}{
					"value": value,
				})
			}

			// Tags for filtering in Sentry
			if styleID, ok := fields["style_id"].(string); ok {
				scope.SetTag("style_id", styleID)
			}
			if command, ok := fields["command"].(string); ok {
				scope.SetTag("command", command)
			}

			hub.CaptureException(err)
		})
	}
}

// Warn logs a warning message with structured fields
func Warn(msg string, fields Fields) {
	if enabled(LevelWarn) {
		log.Printf("[WARN] %s %v", msg, formatFields(fields))
	}
	breadcrumb("warning", msg, fields, sentry.LevelWarning)
}

// Debug logs a debug message with structured fields
func Debug(msg string, fields Fields) {
	if enabled(LevelDebug) {
		log.Printf("[DEBUG] %s %v", msg, formatFields(fields))
	}
	breadcrumb("debug", msg, fields, sentry.LevelDebug)
}

func breadcrumb(kind, msg string, fields Fields, level sentry.Level) {
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		sentry.AddBreadcrumb(&sentry.Breadcrumb{
			Type:     kind,
			Category: "log",
			Message:  msg,
			Data:     convertFieldsToMap(fields),
			Level:    level,
		})
	}
}

// LogRender logs a completed render pass with its event counts
func LogRender(ctx context.Context, styleID string, duration time.Duration, notes, drums int, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}

	fields["style_id"] = styleID
	fields["duration_ms"] = duration.Milliseconds()
	fields["notes"] = notes
	fields["drums"] = drums

	Debug("Render completed", fields)

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		span := sentry.StartSpan(ctx, "engine.render")
		span.Description = styleID
		span.SetData("notes", notes)
		span.SetData("drums", drums)
		span.Finish()
	}
}

// formatFields renders fields as {k=v, ...} in key order
func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("{")
	for i, k := range slices.Sorted(maps.Keys(fields)) {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(formatValue(fields[k]))
	}
	b.WriteString("}")
	return b.String()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%.2f", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func convertFieldsToMap(fields Fields) map[string]interface{} {
	result := make(map[string]interface{})
	for k, v := range fields {
		result[k] = v
	}
	return result
}
