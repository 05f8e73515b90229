package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Simplici0/fabquote/internal/domain"
)

// Result is the outcome of an AI-assisted step: either the structured value
// the service produced, or the deterministic fallback with the reason it was
// used. The fallback is always computed, so both arms carry a usable value.
type Result[T any] struct {
	value    T
	fallback T
	ok       bool
	reason   string
}

// Ok wraps a value produced by the external service.
func Ok[T any](value, fallback T) Result[T] {
	return Result[T]{value: value, fallback: fallback, ok: true}
}

// Fallback wraps the deterministic value and why it was used.
func Fallback[T any](fallback T, reason string) Result[T] {
	return Result[T]{value: fallback, fallback: fallback, reason: reason}
}

// Value is the value to use: the service's when Ok, the fallback otherwise.
func (r Result[T]) Value() T {
	if r.ok {
		return r.value
	}
	return r.fallback
}

// FallbackValue is the deterministic value regardless of which arm won.
func (r Result[T]) FallbackValue() T { return r.fallback }

// IsOk reports whether the service's value is in use.
func (r Result[T]) IsOk() bool { return r.ok }

// Reason explains why the fallback was used; empty when Ok.
func (r Result[T]) Reason() string { return r.reason }

// Ask sends req with a deadline of timeout and parses the reply. Any
// failure, including a nil completer, becomes the Fallback arm; Ask never
// returns an error.
func Ask[T any](ctx context.Context, c domain.Completer, req domain.CompletionRequest, timeout time.Duration, parse func(string) (T, error), fallback T) Result[T] {
	if c == nil {
		return Fallback(fallback, domain.ErrNoCompleter.Error())
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reply, err := c.Complete(ctx, req)
	if err != nil {
		return Fallback(fallback, describe(err))
	}
	v, err := parse(reply)
	if err != nil {
		return Fallback(fallback, "malformed response: "+err.Error())
	}
	return Ok(v, fallback)
}

func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoCompleter):
		return err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	default:
		return err.Error()
	}
}

// StripCodeFence removes a surrounding ```json ... ``` fence if present.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// DecodeObject parses a JSON object from a reply, tolerating code fences
// and prose around the braces.
func DecodeObject(reply string) (map[string]any, error) {
	text := StripCodeFence(reply)
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return out, nil
	}
	start, end := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("decode JSON object: %w", err)
	}
	return out, nil
}

// DecodeArray parses a JSON array of objects from a reply, tolerating code
// fences and prose around the brackets.
func DecodeArray(reply string) ([]map[string]any, error) {
	text := StripCodeFence(reply)
	var raw []any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		start, end := strings.IndexByte(text, '['), strings.LastIndexByte(text, ']')
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no JSON array in reply")
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
			return nil, fmt.Errorf("decode JSON array: %w", err)
		}
	}
	out := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// Number reads a numeric value from decoded JSON, accepting numbers and
// numeric strings. NaN and infinities are rejected.
func Number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case json.Number:
		var err error
		if f, err = n.Float64(); err != nil {
			return 0, false
		}
	case string:
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%g", &f); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
