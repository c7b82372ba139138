package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	key, str, num, boolean, null, dur, tm lipgloss.Style
	trace, debug, info, warn, err         lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return &palette{
		key:     fg("8"),
		str:     fg("6"),
		num:     fg("3"),
		boolean: fg("2"),
		null:    fg("8"),
		dur:     fg("5"),
		tm:      fg("4"),
		trace:   fg("4"),
		debug:   fg("4").Bold(true),
		info:    fg("2").Bold(true),
		warn:    fg("3").Bold(true),
		err:     fg("1").Bold(true),
	}
}

func (p *palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler writes colorized records either on one line as key=value
// pairs (FormatText) or as an indented object (FormatJSON).
type prettyHandler struct {
	opts   slog.HandlerOptions
	format Format
	colors *palette
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr // preformatted, keys already qualified
	prefix string      // group qualifier for record attributes
}

func newPrettyHandler(w io.Writer, format Format, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		format: format,
		colors: newPalette(w),
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	lowest := slog.LevelInfo
	if h.opts.Level != nil {
		lowest = h.opts.Level.Level()
	}

	return level >= lowest
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))

	for _, a := range attrs {
		out = append(out, h.flatten(h.prefix, a)...)
	}

	return out
}

func (h *prettyHandler) flatten(prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() != slog.KindGroup {
		if a.Equal(slog.Attr{}) {
			return nil
		}

		return []slog.Attr{{Key: prefix + a.Key, Value: a.Value}}
	}

	if a.Key != "" {
		prefix += a.Key + "."
	}

	var out []slog.Attr
	for _, g := range a.Value.Group() {
		out = append(out, h.flatten(prefix, g)...)
	}

	return out
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	builtin := func(a slog.Attr) {
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if !a.Equal(slog.Attr{}) {
			fields = append(fields, a)
		}
	}

	if !r.Time.IsZero() {
		builtin(slog.Time(slog.TimeKey, r.Time))
	}

	level := r.Level
	builtin(slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			builtin(slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	builtin(slog.String(slog.MessageKey, r.Message))

	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, h.flatten(h.prefix, a)...)

		return true
	})

	var buf bytes.Buffer

	if h.format == FormatJSON {
		h.object(&buf, level, fields)
	} else {
		h.line(&buf, level, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) line(buf *bytes.Buffer, level slog.Level, fields []slog.Attr) {
	for i, a := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.colors.key.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(h.value(level, a))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) object(buf *bytes.Buffer, level slog.Level, fields []slog.Attr) {
	buf.WriteString("{\n")

	for i, a := range fields {
		buf.WriteString("  ")
		buf.WriteString(h.colors.key.Render(a.Key))
		buf.WriteString(": ")
		buf.WriteString(h.value(level, a))

		if i < len(fields)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
}

func (h *prettyHandler) value(level slog.Level, a slog.Attr) string {
	v := a.Value

	if a.Key == slog.LevelKey {
		return h.colors.level(level).Render(v.String())
	}

	switch v.Kind() {
	case slog.KindString:
		return h.colors.str.Render(oneLine(v.String()))
	case slog.KindInt64:
		return h.colors.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return h.colors.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return h.colors.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		return h.colors.boolean.Render(strconv.FormatBool(v.Bool()))
	case slog.KindDuration:
		return h.colors.dur.Render(v.Duration().String())
	case slog.KindTime:
		return h.colors.tm.Render(v.Time().Format(time.RFC3339))
	}

	x := v.Any()
	if x == nil {
		return h.colors.null.Render("null")
	}

	if err, ok := x.(error); ok {
		return h.colors.str.Render(oneLine(err.Error()))
	}

	return h.colors.str.Render(oneLine(fmt.Sprint(x)))
}

func oneLine(s string) string {
	if !strings.ContainsRune(s, '\n') {
		return s
	}

	return strconv.Quote(s)
}
