package config

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Source identifies where a resolved value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceFile     Source = "file"
	SourceEnv      Source = "env"
	SourceCLI      Source = "cli"
	SourceOverride Source = "override"
)

// Entry is a single resolved option.
type Entry struct {
	Value  cty.Value
	Source Source
}

// Tree is the resolved configuration of one invocation. Keys keep the order
// in which they were first set.
type Tree struct {
	keys    []string
	entries map[string]Entry
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{entries: make(map[string]Entry)}
}

// SplitKey splits "model.lr" into ("model", "lr"). Keys without a dot belong
// to the top-level namespace "".
func SplitKey(key string) (namespace, name string) {
	if i := strings.IndexByte(key, '.'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}

// JoinKey is the inverse of SplitKey.
func JoinKey(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// Set stores v for key, replacing any previous value.
func (t *Tree) Set(key string, v cty.Value, src Source) {
	if _, ok := t.entries[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.entries[key] = Entry{Value: v, Source: src}
}

// Get returns the value stored for key.
func (t *Tree) Get(key string) (cty.Value, bool) {
	e, ok := t.entries[key]
	return e.Value, ok
}

// Entry returns the value and source stored for key.
func (t *Tree) Entry(key string) (Entry, bool) {
	e, ok := t.entries[key]
	return e, ok
}

// Keys returns all keys in insertion order.
func (t *Tree) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Len is the number of keys in the tree.
func (t *Tree) Len() int {
	return len(t.keys)
}

// Namespaces lists the namespaces present in the tree in first-seen order.
// The top-level namespace is reported as "".
func (t *Tree) Namespaces() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, key := range t.keys {
		ns, _ := SplitKey(key)
		if _, ok := seen[ns]; ok {
			continue
		}
		seen[ns] = struct{}{}
		out = append(out, ns)
	}
	return out
}

// Namespace returns the values under ns keyed by option name.
func (t *Tree) Namespace(ns string) map[string]cty.Value {
	out := make(map[string]cty.Value)
	for _, key := range t.keys {
		keyNS, name := SplitKey(key)
		if keyNS == ns {
			out[name] = t.entries[key].Value
		}
	}
	return out
}

// NamespaceKeys returns the option names under ns in insertion order.
func (t *Tree) NamespaceKeys(ns string) []string {
	var out []string
	for _, key := range t.keys {
		keyNS, name := SplitKey(key)
		if keyNS == ns {
			out = append(out, name)
		}
	}
	return out
}

// Clone returns an independent copy of the tree.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		keys:    append([]string(nil), t.keys...),
		entries: make(map[string]Entry, len(t.entries)),
	}
	for k, e := range t.entries {
		c.entries[k] = e
	}
	return c
}

// Equal reports whether both trees hold the same keys with equal values.
// Order and sources are ignored.
func (t *Tree) Equal(other *Tree) bool {
	if t.Len() != other.Len() {
		return false
	}
	for key, e := range t.entries {
		o, ok := other.entries[key]
		if !ok || !e.Value.RawEquals(o.Value) {
			return false
		}
	}
	return true
}
