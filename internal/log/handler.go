package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// cliHandler renders records as "level: message key=value ..." lines, with
// the level prefix colored when the stream is a terminal (fatih/color
// handles detection).
type cliHandler struct {
	level slog.Level
	w     io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr
}

var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgHiBlack),
	slog.LevelInfo:  color.New(color.FgCyan),
	slog.LevelWarn:  color.New(color.FgYellow),
	slog.LevelError: color.New(color.FgRed),
}

func (h cliHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h cliHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	prefix := strings.ToLower(r.Level.String())
	if c, ok := levelColors[r.Level]; ok {
		prefix = c.Sprint(prefix)
	}
	sb.WriteString(prefix)
	sb.WriteString(": ")
	sb.WriteString(r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, sb.String())
	return err
}

func (h cliHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	h.attrs = merged
	return h
}

// WithGroup is accepted but groups are flattened; the CLI output has no
// nested structure.
func (h cliHandler) WithGroup(string) slog.Handler {
	return h
}
