package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// prettyHandler writes one human-readable line per record:
//
//	2006-01-02 15:04:05.000 INFO [run 01234567 · merge] merger: message key=value
//
// Component, run, stage and chunk attributes are lifted into the prefix.
type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	preset    []field
	prefix    string
	addSource bool
}

type field struct {
	key   string
	value slog.Value
}

// header holds the attributes shown before the message.
type header struct {
	component, runID, stage, chunk string
}

func (hd *header) take(f field) bool {
	var slot *string
	switch f.key {
	case FieldComponent:
		slot = &hd.component
	case FieldRunID:
		slot = &hd.runID
	case FieldStage:
		slot = &hd.stage
	case FieldChunkIndex:
		slot = &hd.chunk
	default:
		return false
	}
	if *slot == "" {
		*slot = plainValue(f.value)
	}
	return true
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}
	fields := append([]field(nil), h.preset...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendFlattened(fields, h.prefix, attr)
		return true
	})

	var hd header
	body := newOrderedFields(len(fields))
	for _, f := range fields {
		if !hd.take(f) {
			body.set(f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var buf bytes.Buffer
	buf.WriteString(formatTimestamp(ts))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	buf.WriteByte(' ')
	if subject := FormatSubject(hd.runID, hd.stage, hd.chunk); subject != "" {
		buf.WriteString("[" + subject + "] ")
	}
	if hd.component != "" {
		buf.WriteString(hd.component + ": ")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	buf.WriteString(msg)
	if src := record.Source(); h.addSource && src != nil {
		buf.WriteString(" [" + filepath.Base(src.File) + ":" + strconv.Itoa(src.Line) + "]")
	}
	for _, f := range body.items {
		buf.WriteString(" " + f.key + "=" + formatValue(f.value))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = append([]field(nil), h.preset...)
	for _, attr := range attrs {
		next.preset = appendFlattened(next.preset, h.prefix, attr)
	}
	return &next
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = joinKey(h.prefix, name)
	return &next
}

// appendFlattened expands groups into dotted keys.
func appendFlattened(dst []field, prefix string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		inner := prefix
		if attr.Key != "" {
			inner = joinKey(prefix, attr.Key)
		}
		for _, child := range value.Group() {
			dst = appendFlattened(dst, inner, child)
		}
		return dst
	}
	key := joinKey(prefix, attr.Key)
	if key == "" {
		return dst
	}
	return append(dst, field{key: key, value: value})
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

// orderedFields keeps the last value for each key in first-seen order.
type orderedFields struct {
	items []field
	pos   map[string]int
}

func newOrderedFields(capacity int) *orderedFields {
	return &orderedFields{items: make([]field, 0, capacity), pos: make(map[string]int, capacity)}
}

func (o *orderedFields) set(f field) {
	if i, ok := o.pos[f.key]; ok {
		o.items[i] = f
		return
	}
	o.pos[f.key] = len(o.items)
	o.items = append(o.items, f)
}
