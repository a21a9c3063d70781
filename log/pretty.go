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

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of a pretty handler. Styles are bound to a
// renderer for the handler's output, so colors are dropped automatically
// when the output is not a terminal.
type palette struct {
	key, str, num, dur, tim, null lipgloss.Style
	yes, no                       lipgloss.Style
	trace, debug, info, warn, err lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		dur:   fg("5"),
		tim:   fg("4"),
		null:  fg("8"),
		yes:   fg("2"),
		no:    fg("1"),
		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3").Bold(true),
		err:   fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
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

// prettyHandler writes colorized records either as key=value pairs on one
// line or as an indented JSON-like block.
type prettyHandler struct {
	cfg    config
	style  palette
	mu     *sync.Mutex
	attrs  []slog.Attr // qualified with the groups open when they were added
	groups []string
}

func newPrettyHandler(cfg config) *prettyHandler {
	return &prettyHandler{
		cfg:   cfg,
		style: newPalette(cfg.output),
		mu:    &sync.Mutex{},
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.Level(h.cfg.level)
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]field, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		if s := h.cfg.formatTime(r.Time); s != "" {
			fields = append(fields, field{slog.TimeKey, h.style.tim.Render(s)})
		}
	}

	fields = append(fields, field{
		slog.LevelKey,
		h.style.level(r.Level).Render(strings.ToUpper(Level(r.Level).String())),
	})

	if h.cfg.caller {
		if src := r.Source(); src != nil && src.File != "" {
			fields = append(fields, field{
				slog.SourceKey,
				h.style.str.Render(fmt.Sprintf("%s:%d", src.File, src.Line)),
			})
		}
	}

	fields = append(fields, field{slog.MessageKey, h.style.str.Render(r.Message)})

	for _, a := range h.attrs {
		fields = h.appendAttr(fields, "", a)
	}

	prefix := strings.Join(h.groups, ".")

	r.Attrs(func(a slog.Attr) bool {
		fields = h.appendAttr(fields, prefix, a)

		return true
	})

	var buf bytes.Buffer

	if h.cfg.format == FormatJSON {
		buf.WriteString("{\n")

		for i, f := range fields {
			if i > 0 {
				buf.WriteString(",\n")
			}

			buf.WriteString("  " + h.style.key.Render(f.key) + ": " + f.value)
		}

		buf.WriteString("\n}\n")
	} else {
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(' ')
			}

			buf.WriteString(h.style.key.Render(f.key) + "=" + f.value)
		}

		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.cfg.output.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	prefix := strings.Join(h.groups, ".")

	c := *h
	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)

	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}

		c.attrs = append(c.attrs, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &c
}

type field struct {
	key, value string
}

// appendAttr flattens groups into dotted keys.
func (h *prettyHandler) appendAttr(fields []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return fields
	}

	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, g := range a.Value.Group() {
			fields = h.appendAttr(fields, key, g)
		}

		return fields
	}

	return append(fields, field{key, h.value(a.Value)})
}

func (h *prettyHandler) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.style.str.Render(v.String())
	case slog.KindInt64:
		return h.style.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return h.style.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return h.style.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return h.style.yes.Render("true")
		}

		return h.style.no.Render("false")
	case slog.KindDuration:
		return h.style.dur.Render(v.Duration().String())
	case slog.KindTime:
		return h.style.tim.Render(h.cfg.formatTime(v.Time()))
	case slog.KindAny:
		switch x := v.Any().(type) {
		case nil:
			return h.style.null.Render("null")
		case slog.Level:
			return h.style.level(x).Render(strings.ToUpper(Level(x).String()))
		case error:
			return h.style.str.Render(x.Error())
		}
	}

	return h.style.str.Render(v.String())
}
