package logger

import (
	"fmt"
	"log/slog"
	"os"
)

const (
	LevelCritical = slog.Level(12)
	LevelPanic    = slog.Level(14)
	LevelFatal    = slog.Level(16)
)

func levelAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) != 0 || attr.Key != slog.LevelKey {
		return attr
	}
	l, ok := attr.Value.Any().(slog.Level)
	if !ok || l < LevelCritical {
		return attr
	}
	name := func(base string, offset slog.Level) string {
		if offset == 0 {
			return base
		}
		return fmt.Sprintf("%s%+d", base, offset)
	}
	switch {
	case l < LevelPanic:
		return slog.String(attr.Key, name("CRITICAL", l-LevelCritical))
	case l < LevelFatal:
		return slog.String(attr.Key, name("PANIC", l-LevelPanic))
	default:
		return slog.String(attr.Key, name("FATAL", l-LevelFatal))
	}
}

func newGCPHandler(opts *slog.HandlerOptions) slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       opts.Level,
		ReplaceAttr: attrReplacerChain(gcpAttrReplacer, opts.ReplaceAttr),
	})
}

// https://cloud.google.com/logging/docs/reference/v2/rest/v2/LogEntry#logseverity
func gcpAttrReplacer(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.MessageKey:
		attr.Key = "message"
	case slog.SourceKey:
		attr.Key = "logging.googleapis.com/sourceLocation"
	case slog.LevelKey:
		attr.Key = "severity"
		if l, ok := attr.Value.Any().(slog.Level); ok {
			switch {
			case l < slog.LevelInfo:
				attr.Value = slog.StringValue("DEBUG")
			case l < slog.LevelWarn:
				attr.Value = slog.StringValue("INFO")
			case l < slog.LevelError:
				attr.Value = slog.StringValue("WARNING")
			case l < LevelCritical:
				attr.Value = slog.StringValue("ERROR")
			case l < LevelPanic:
				attr.Value = slog.StringValue("CRITICAL")
			case l < LevelFatal:
				attr.Value = slog.StringValue("ALERT")
			default:
				attr.Value = slog.StringValue("EMERGENCY")
			}
		}
	}
	return attr
}
