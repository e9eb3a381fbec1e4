package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\x1b[0m"
	colorDim    = "\x1b[2m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorCyan   = "\x1b[36m"
)

// consoleHandler renders records as a single human-readable line:
// timestamp, level, message, then key=value attrs.
type consoleHandler struct {
	out    io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
	color  bool
}

func newConsoleHandler(out io.Writer, level slog.Leveler) *consoleHandler {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	} else if f, ok := unwrapFile(out); ok {
		color = isatty.IsTerminal(f.Fd())
	}
	return &consoleHandler{out: out, level: level, color: color}
}

func unwrapFile(out io.Writer) (*os.File, bool) {
	lw, ok := out.(*lockedWriter)
	if !ok {
		return nil, false
	}
	f, ok := lw.w.(*os.File)
	return f, ok
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.level != nil {
		minLevel = h.level.Level()
	}
	return level >= minLevel
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(h.dim(record.Time.Format("15:04:05.000")))
	b.WriteByte(' ')
	b.WriteString(h.levelLabel(record.Level))
	b.WriteByte(' ')
	b.WriteString(record.Message)

	for _, attr := range h.attrs {
		h.appendAttr(&b, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		h.appendAttr(&b, attr)
		return true
	})
	b.WriteByte('\n')

	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), h.qualify(attrs)...)
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *consoleHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 {
		return attrs
	}
	prefix := strings.Join(h.groups, ".")
	qualified := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		qualified = append(qualified, slog.Attr{Key: prefix + "." + attr.Key, Value: attr.Value})
	}
	return qualified
}

func (h *consoleHandler) appendAttr(b *strings.Builder, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	b.WriteByte(' ')
	b.WriteString(h.dim(attr.Key + "="))
	b.WriteString(formatValue(attr.Value))
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	s := v.String()
	if strings.ContainsAny(s, " \t\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

func (h *consoleHandler) levelLabel(level slog.Level) string {
	label := strings.ToUpper(level.String())
	if !h.color {
		return label
	}
	switch {
	case level >= slog.LevelError:
		return colorRed + label + colorReset
	case level >= slog.LevelWarn:
		return colorYellow + label + colorReset
	case level <= slog.LevelDebug:
		return colorDim + label + colorReset
	default:
		return colorCyan + label + colorReset
	}
}

func (h *consoleHandler) dim(s string) string {
	if !h.color {
		return s
	}
	return colorDim + s + colorReset
}
