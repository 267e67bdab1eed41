package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorYellow  = "\033[33m"
	colorGreen   = "\033[32m"
	colorCyan    = "\033[36m"
	colorGray    = "\033[90m"
	colorMagenta = "\033[35m"
)

type discardHandler struct{}

// DiscardHandler returns a no-op handler
func DiscardHandler() slog.Handler {
	return &discardHandler{}
}

func (h *discardHandler) Handle(_ context.Context, r slog.Record) error {
	return nil
}

func (h *discardHandler) Enabled(_ context.Context, level slog.Level) bool {
	return false
}

func (h *discardHandler) WithGroup(name string) slog.Handler {
	return h
}

func (h *discardHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func levelColor(l slog.Level) string {
	switch {
	case l >= LevelCrit:
		return colorMagenta
	case l >= slog.LevelError:
		return colorRed
	case l >= slog.LevelWarn:
		return colorYellow
	case l >= slog.LevelInfo:
		return colorGreen
	case l >= slog.LevelDebug:
		return colorCyan
	default:
		return colorGray
	}
}

// replaceLevel renders the custom trace/crit levels by name instead of "DEBUG-4" / "ERROR+4".
func replaceLevel(useColor bool) func(groups []string, a slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key != slog.LevelKey || len(groups) != 0 {
			return a
		}
		lvl, ok := a.Value.Any().(slog.Level)
		if !ok {
			return a
		}
		name := strings.TrimSpace(LevelAlignedString(lvl))
		if useColor {
			name = levelColor(lvl) + name + colorReset
		}
		return slog.String(slog.LevelKey, name)
	}
}

// NewTerminalHandlerWithLevel returns a human readable handler that drops records below lvl.
func NewTerminalHandlerWithLevel(w io.Writer, lvl slog.Level, useColor bool) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: replaceLevel(useColor),
	})
}

// JSONHandler returns a handler which prints records in JSON format.
func JSONHandler(w io.Writer) slog.Handler {
	return JSONHandlerWithLevel(w, levelMaxVerbosity)
}

// JSONHandlerWithLevel returns a JSON handler that drops records below lvl.
func JSONHandlerWithLevel(w io.Writer, lvl slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: replaceLevel(false),
	})
}
