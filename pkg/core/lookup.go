package core

import "strings"

// Lookup resolves a dotted path ("cache.enabled") through nested maps.
func Lookup(m map[string]any, path string) (any, bool) {
	if m == nil {
		return nil, false
	}
	if v, ok := m[path]; ok {
		return v, true
	}
	head, rest, found := strings.Cut(path, ".")
	if !found {
		return nil, false
	}
	switch next := m[head].(type) {
	case map[string]any:
		return Lookup(next, rest)
	case Data:
		return Lookup(next, rest)
	default:
		return nil, false
	}
}

// Assign writes v at a dotted path, creating intermediate maps.
func Assign(m map[string]any, path string, v any) {
	head, rest, found := strings.Cut(path, ".")
	if !found {
		m[path] = v
		return
	}
	next, ok := m[head].(map[string]any)
	if !ok {
		next = make(map[string]any)
		m[head] = next
	}
	Assign(next, rest, v)
}
