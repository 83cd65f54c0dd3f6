package etl

import (
	"fmt"
	"strconv"
	"strings"
)

// ── Transformer ────────────────────────────────────────────
// Transformers modify or drop records between the source and the note
// mapper. Each returns the (possibly modified) record and whether to keep it.

// Transformer rewrites a record, or drops it by returning false.
type Transformer interface {
	Transform(Record) (Record, bool)
}

// TransformerFunc adapts a plain function to the Transformer interface.
type TransformerFunc func(Record) (Record, bool)

func (f TransformerFunc) Transform(r Record) (Record, bool) { return f(r) }

// FilterTransform drops records where the given field does not match the value.
type FilterTransform struct {
	Field string
	Op    string // "eq" | "neq" | "contains"
	Value string
}

func (t *FilterTransform) Transform(r Record) (Record, bool) {
	v := r.String(t.Field)
	switch t.Op {
	case "eq":
		return r, v == t.Value
	case "neq":
		return r, v != t.Value
	case "contains":
		return r, strings.Contains(strings.ToLower(v), strings.ToLower(t.Value))
	default:
		return r, true
	}
}

// NonEmptyTransform drops records whose field is blank.
type NonEmptyTransform struct {
	Field string
}

func (t *NonEmptyTransform) Transform(r Record) (Record, bool) {
	return r, r.String(t.Field) != ""
}

// DedupeTransform drops records whose field repeats an earlier one,
// ignoring case and surrounding space. It is stateful; use one per run.
type DedupeTransform struct {
	Field string
	seen  map[string]bool
}

func (t *DedupeTransform) Transform(r Record) (Record, bool) {
	if t.seen == nil {
		t.seen = map[string]bool{}
	}
	key := strings.ToLower(r.String(t.Field))
	if t.seen[key] {
		return r, false
	}
	t.seen[key] = true
	return r, true
}

// ── Helpers ────────────────────────────────────────────────

func trimmed(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func toInt(v any) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case int:
		return x
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(x))
		return n
	}
	return 0
}
