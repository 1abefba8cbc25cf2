package logging

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveKeys are attribute keys whose string values are always replaced,
// regardless of shape.
var sensitiveKeys = map[string]struct{}{
	"authorization": {},
	"password":      {},
	"secret":        {},
	"token":         {},
	"api_key":       {},
	"signature":     {},
}

// sensitivePatterns match token-shaped substrings inside otherwise loggable
// values: bearer credentials, API keys with the issuer prefix, and compact
// JWTs.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/=]+`),
	regexp.MustCompile(`hdt_[A-Za-z0-9+/=_\-]+`),
	regexp.MustCompile(`eyJ[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+`),
}

// RedactingHandler wraps a slog.Handler and scrubs sensitive attribute values
// before they are written.
type RedactingHandler struct {
	next slog.Handler
}

// NewRedactingHandler creates a handler that redacts sensitive values and
// forwards records to next.
func NewRedactingHandler(next slog.Handler) *RedactingHandler {
	return &RedactingHandler{next: next}
}

// Enabled reports whether the wrapped handler handles records at the given level.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle scrubs the record's message and attributes, then forwards it.
func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, RedactString(record.Message), record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		clean.AddAttrs(redactAttr(attr))
		return true
	})
	return h.next.Handle(ctx, clean)
}

// WithAttrs returns a redacting handler over the wrapped handler with the
// scrubbed attributes applied.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		clean = append(clean, redactAttr(attr))
	}
	return &RedactingHandler{next: h.next.WithAttrs(clean)}
}

// WithGroup returns a redacting handler over the wrapped handler's group.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name)}
}

// RedactString replaces token-shaped substrings in s.
func RedactString(s string) string {
	for _, pattern := range sensitivePatterns {
		s = pattern.ReplaceAllString(s, redacted)
	}
	return s
}

func redactAttr(attr slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(attr.Key)]; ok {
		return slog.String(attr.Key, redacted)
	}

	value := attr.Value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		return slog.String(attr.Key, RedactString(value.String()))
	case slog.KindGroup:
		group := value.Group()
		clean := make([]any, 0, len(group))
		for _, member := range group {
			clean = append(clean, redactAttr(member))
		}
		return slog.Group(attr.Key, clean...)
	case slog.KindAny:
		if m, ok := value.Any().(map[string]any); ok {
			return slog.Any(attr.Key, redactMap(m))
		}
		return attr
	default:
		return attr
	}
}

func redactMap(m map[string]any) map[string]any {
	clean := make(map[string]any, len(m))
	for key, value := range m {
		if _, ok := sensitiveKeys[strings.ToLower(key)]; ok {
			clean[key] = redacted
			continue
		}
		switch v := value.(type) {
		case string:
			clean[key] = RedactString(v)
		case map[string]any:
			clean[key] = redactMap(v)
		default:
			clean[key] = v
		}
	}
	return clean
}
