package executor

import (
	"strconv"
	"strings"
)

func appendPath(path Path, elem PathElement) Path {
	out := make(Path, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}

// pathToString renders a path as it reads in error messages: obj.items[1].name.
func pathToString(path Path) string {
	var b strings.Builder
	for _, elem := range path {
		switch v := elem.(type) {
		case string:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		case int:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v))
			b.WriteByte(']')
		}
	}
	return b.String()
}

func pathEqual(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasPrefix(path, prefix Path) bool {
	return len(prefix) <= len(path) && pathEqual(path[:len(prefix)], prefix)
}

func (s *executionState) markNulled(path Path) {
	s.nulled = append(s.nulled, path)
}

// isNulled reports whether path lies in a subtree that was replaced by null.
func (s *executionState) isNulled(path Path) bool {
	for _, p := range s.nulled {
		if hasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (s *executionState) dataNulled() bool {
	for _, p := range s.nulled {
		if len(p) == 0 {
			return true
		}
	}
	return false
}

// writeAtPath stores value at path inside data. Parents are expected to
// exist already: they were written when their own selection set was
// expanded. An empty path is left to the caller.
func writeAtPath(data map[string]any, path Path, value any) {
	if len(path) == 0 {
		return
	}
	var parent any = data
	for _, elem := range path[:len(path)-1] {
		switch e := elem.(type) {
		case string:
			m, ok := parent.(map[string]any)
			if !ok {
				return
			}
			parent = m[e]
		case int:
			l, ok := parent.([]any)
			if !ok || e >= len(l) {
				return
			}
			parent = l[e]
		}
	}
	switch e := path[len(path)-1].(type) {
	case string:
		if m, ok := parent.(map[string]any); ok {
			m[e] = value
		}
	case int:
		if l, ok := parent.([]any); ok && e < len(l) {
			l[e] = value
		}
	}
}
