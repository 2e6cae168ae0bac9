package engine

import "strings"

// Separator splits a qualified name into context and name.
const Separator = "."

// entry is anything addressable by a (context, name) pair.
type entry interface {
	Context() string
	Name() string
}

// QualifiedName joins a context and a name.
func QualifiedName(context, name string) string {
	return context + Separator + name
}

// SplitName splits a token on its first separator. An unqualified token
// yields the empty (wildcard) context.
func SplitName(token string) (context, name string) {
	if c, n, ok := strings.Cut(token, Separator); ok {
		return c, n
	}
	return "", token
}

// resolve returns every entry matching token. Zero matches is a failure, one
// is a hit, more than one is ambiguous; callers must never pick among several.
func resolve[T entry](entries []T, token string) []T {
	context, name := SplitName(token)
	var matches []T
	for _, e := range entries {
		if e.Name() != name {
			continue
		}
		if context == "" || context == e.Context() {
			matches = append(matches, e)
		}
	}
	return matches
}

// resolveOne applies the zero/one/many rule and turns failures into errors.
// kind names the entry type ("verb" or "setting") in messages.
func resolveOne[T entry](entries []T, token, kind string) (T, error) {
	var zero T
	matches := resolve(entries, token)
	switch len(matches) {
	case 0:
		return zero, NewUnknownError(kind, token)
	case 1:
		return matches[0], nil
	default:
		return zero, NewAmbiguousError(kind, token, qualifiedNames(matches))
	}
}

func qualifiedNames[T entry](entries []T) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, QualifiedName(e.Context(), e.Name()))
	}
	return names
}
