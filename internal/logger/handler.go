package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	tsLayoutMillis = "2006-01-02T15:04:05.000Z07:00"
)

// lineHandler renders slog records as single ordered lines, either key=value
// or JSON, and hands them to the async writer. Known keys come first in a
// fixed order, the rest alphabetically.
type lineHandler struct {
	level    slog.Leveler
	out      *asyncWriter
	format   logFormat
	keyOrder []string

	attrs  []slog.Attr
	groups []string
}

func newLineHandler(level slog.Leveler, out *asyncWriter, format logFormat, keyOrder []string) *lineHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	if keyOrder == nil {
		keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &lineHandler{level: level, out: out, format: format, keyOrder: keyOrder}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *lineHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.out == nil {
		return fmt.Errorf("logger: writer not initialized")
	}

	fields := make(map[string]any, 16)
	ts := r.Time.UTC()
	fields["ts"] = ts.Truncate(time.Millisecond).Format(tsLayoutMillis)
	fields["level"] = normalizeLevel(r.Level.String())
	if h.format == formatJSON {
		fields["ts_unix_nano"] = ts.UnixNano()
	}

	for _, a := range h.attrs {
		h.absorb(fields, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.absorb(fields, a)
		return true
	})

	mergeContextMeta(ctx, fields)
	h.compactRIDField(fields)
	h.finalize(fields, r.Message)

	line, err := h.render(fields)
	if err != nil {
		return err
	}
	if len(line) == 0 || line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}
	return h.out.Write(line)
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func (h *lineHandler) absorb(fields map[string]any, attr slog.Attr) {
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".")
	}
	walkAttr(prefix, attr, func(k string, v slog.Value) {
		key, val, ok := coerceAttr(k, v)
		if !ok {
			return
		}
		fields[key] = val
	})
}

// compactRIDField shortens the rid for readability; JSON output keeps the
// full value under rid_full.
func (h *lineHandler) compactRIDField(fields map[string]any) {
	rid, ok := stringField(fields, "rid")
	if !ok || rid == "" {
		return
	}
	compact := CompactRID(rid)
	if compact == "" || compact == rid {
		return
	}
	if h.format == formatJSON {
		if _, seen := fields["rid_full"]; !seen {
			fields["rid_full"] = rid
		}
	}
	fields["rid"] = compact
}

// finalize guarantees event/component presence, normalizes enum-like values,
// and drops empty fields.
func (h *lineHandler) finalize(fields map[string]any, msg string) {
	if event, ok := stringField(fields, "event"); !ok || event == "" {
		if msg != "" {
			fields["event"] = msg
		} else {
			fields["event"] = "unknown"
		}
	}
	if component, ok := stringField(fields, "component"); !ok || component == "" {
		fields["component"] = "app"
	}

	if level, ok := stringField(fields, "level"); ok {
		fields["level"] = normalizeLevel(level)
	}
	normalizeField(fields, "status", normalizeStatus, false)
	normalizeField(fields, "cache", normalizeCache, true)
	normalizeField(fields, "outcome", normalizeOutcome, true)

	for k, v := range fields {
		switch val := v.(type) {
		case string:
			if val == "" {
				delete(fields, k)
			}
		case fmt.Stringer:
			if val.String() == "" {
				delete(fields, k)
			}
		case nil:
			delete(fields, k)
		}
	}
}

// normalizeField rewrites a vocabulary field in place. Values outside the
// vocabulary are either left as-is or dropped, depending on strict.
func normalizeField(fields map[string]any, key string, normalize func(string) (string, bool), strict bool) {
	raw, ok := stringField(fields, key)
	if !ok || raw == "" {
		return
	}
	val, known := normalize(raw)
	switch {
	case known:
		fields[key] = val
	case strict:
		delete(fields, key)
	}
}

func (h *lineHandler) render(fields map[string]any) ([]byte, error) {
	if h.format == formatJSON {
		return renderJSON(fields, h.keyOrder)
	}
	return renderKV(fields, h.keyOrder), nil
}

func walkAttr(prefix string, attr slog.Attr, fn func(string, slog.Value)) {
	key := attr.Key
	if key == "" {
		key = prefix
	} else if prefix != "" {
		key = prefix + "." + key
	}
	if attr.Value.Kind() == slog.KindGroup {
		for _, child := range attr.Value.Group() {
			walkAttr(key, child, fn)
		}
		return
	}
	if key != "" {
		fn(key, attr.Value)
	}
}

// coerceAttr converts a slog value to a plain loggable one. Durations become
// milliseconds with an _ms key suffix.
func coerceAttr(key string, val slog.Value) (string, any, bool) {
	if key == "" {
		return "", nil, false
	}
	switch val.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(val.String()), true
	case slog.KindBool:
		return key, val.Bool(), true
	case slog.KindInt64:
		return key, val.Int64(), true
	case slog.KindUint64:
		u := val.Uint64()
		if u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, u, true
	case slog.KindFloat64:
		return key, val.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(val.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, val.Time().UTC().Format(time.RFC3339Nano), true
	case slog.KindAny:
		switch x := val.Any().(type) {
		case error:
			return key, x.Error(), true
		case string:
			return key, strings.TrimSpace(x), true
		case time.Duration:
			return durationKey(key), RoundMS(x).Milliseconds(), true
		case fmt.Stringer:
			return key, x.String(), true
		case nil:
			return key, nil, false
		default:
			return key, fmt.Sprint(x), true
		}
	default:
		return key, val.Any(), true
	}
}

func durationKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_duration"):
		return strings.TrimSuffix(key, "_duration") + "_duration_ms"
	case !strings.HasSuffix(key, "_ms"):
		return key + "_ms"
	}
	return key
}

func renderJSON(fields map[string]any, order []string) ([]byte, error) {
	var buf strings.Builder
	buf.WriteByte('{')
	first := true
	visited := make(map[string]struct{}, len(fields))
	emit := func(k string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(strconv.Quote(k))
		buf.WriteByte(':')
		buf.Write(data)
		visited[k] = struct{}{}
		return nil
	}
	for _, key := range order {
		if val, ok := fields[key]; ok {
			if err := emit(key, val); err != nil {
				return nil, err
			}
		}
	}
	var rest []string
	for k := range fields {
		if _, seen := visited[k]; !seen {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		if err := emit(key, fields[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return []byte(buf.String()), nil
}

func renderKV(fields map[string]any, order []string) []byte {
	keys := orderedKeys(fields, order)
	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(kvValue(fields[key]))
	}
	return []byte(b.String())
}

func orderedKeys(fields map[string]any, order []string) []string {
	keys := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, key := range order {
		if _, ok := fields[key]; ok {
			keys = append(keys, key)
			seen[key] = struct{}{}
		}
	}
	tail := len(keys)
	for key := range fields {
		if _, ok := seen[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys[tail:])
	return keys
}

func kvValue(val any) string {
	switch v := val.(type) {
	case string:
		if v != "" && strings.IndexFunc(v, needsQuote) >= 0 {
			return strconv.Quote(v)
		}
		return v
	case bool:
		return strconv.FormatBool(v)
	case int, int64, uint64, float64:
		return fmt.Sprint(v)
	default:
		s := fmt.Sprint(v)
		if strings.IndexFunc(s, needsQuote) >= 0 {
			return strconv.Quote(s)
		}
		return s
	}
}

func needsQuote(r rune) bool {
	return r <= 32 || r == '=' || r == '"'
}

func stringField(fields map[string]any, key string) (string, bool) {
	v, ok := fields[key]
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}

// mergeContextMeta copies request metadata from the context unless the record
// already carries the key.
func mergeContextMeta(ctx context.Context, fields map[string]any) {
	if ctx == nil {
		return
	}
	setIfAbsent(fields, "rid", RIDFrom(ctx))
	setIfAbsent(fields, "handler", HandlerFrom(ctx))
	setIfAbsentInt(fields, "user_id", UserIDFrom(ctx))
	setIfAbsentInt(fields, "chat_id", ChatIDFrom(ctx))
	setIfAbsentInt(fields, "update_id", int64(UpdateIDFrom(ctx)))
}

func setIfAbsent(fields map[string]any, key, val string) {
	if val == "" {
		return
	}
	if _, ok := fields[key]; !ok {
		fields[key] = val
	}
}

func setIfAbsentInt(fields map[string]any, key string, val int64) {
	if val == 0 {
		return
	}
	if _, ok := fields[key]; !ok {
		fields[key] = val
	}
}
