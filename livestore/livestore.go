// Package livestore implements the path-addressed live tree: a hierarchical
// key-value store where every path can be written, patched, deleted, and
// subscribed to. A subscription delivers the full current value at its path
// immediately and again on every change underneath it, and must be torn down
// with the returned unsubscribe func when the consumer goes away.
package livestore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Read when no value exists at or under a path
var ErrNotFound = errors.New("livestore: no value at path")

// ChangeFunc receives the full value at the subscribed path after a change.
// A nil value means the path holds nothing.
type ChangeFunc func(value json.RawMessage)

// UnsubscribeFunc tears down a subscription. Safe to call more than once.
type UnsubscribeFunc func()

// Store is the live tree surface. Writes are full overwrites of the value at
// a path; Patch merge-updates named fields of an object value; Push returns a
// fresh unique child key without writing anything.
type Store interface {
	Read(ctx context.Context, path string) (json.RawMessage, error)
	Write(ctx context.Context, path string, value interface{}) error
	Patch(ctx context.Context, path string, fields map[string]interface{}) error
	Delete(ctx context.Context, path string) error
	Push(path string) string
	Subscribe(ctx context.Context, path string, fn ChangeFunc) (UnsubscribeFunc, error)
	Close() error
}

// NewPushKey generates a fresh unique child key
func NewPushKey() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// pathAffects reports whether a change at changed is visible from a
// subscription rooted at sub: same path, a descendant, or an ancestor.
func pathAffects(sub, changed string) bool {
	return sub == changed ||
		strings.HasPrefix(changed, sub+"/") ||
		strings.HasPrefix(sub, changed+"/")
}

// buildValue reconstructs the value at base from a flat map of stored
// entries (paths at or under base). A branch becomes a JSON object keyed by
// child segment; an object stored at an interior path merges its fields with
// the children below it, children winning on collision.
func buildValue(base string, entries map[string]json.RawMessage) (json.RawMessage, error) {
	exact, hasExact := entries[base]

	children := make(map[string]interface{})
	for p, raw := range entries {
		if p == base {
			continue
		}
		rel := strings.TrimPrefix(p, base+"/")
		insertAt(children, strings.Split(rel, "/"), raw)
	}

	if len(children) == 0 {
		if hasExact {
			return exact, nil
		}
		return nil, ErrNotFound
	}

	if hasExact {
		mergeObject(children, exact)
	}
	return json.Marshal(children)
}

func insertAt(node map[string]interface{}, segs []string, raw json.RawMessage) {
	key := segs[0]
	if len(segs) == 1 {
		if existing, ok := node[key].(map[string]interface{}); ok {
			mergeObject(existing, raw)
		} else {
			node[key] = raw
		}
		return
	}

	var child map[string]interface{}
	switch cur := node[key].(type) {
	case map[string]interface{}:
		child = cur
	case json.RawMessage:
		child = make(map[string]interface{})
		mergeObject(child, cur)
		node[key] = child
	default:
		child = make(map[string]interface{})
		node[key] = child
	}
	insertAt(child, segs[1:], raw)
}

// mergeObject adds the fields of a JSON object into dst without replacing
// keys dst already has
func mergeObject(dst map[string]interface{}, raw json.RawMessage) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return
	}
	for k, v := range fields {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}
