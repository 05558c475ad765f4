package core

import (
	"strings"
	"unicode"
)

// unexported constants.
const (
	keyDelimiter = "."
	longPrefix   = "--"
)

// camelToKebab converts a Go identifier to kebab-case, keeping acronyms
// intact (HTTPTimeout -> http-timeout, fooBar -> foo-bar).
func camelToKebab(name string) string {
	var result strings.Builder

	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if unicode.IsLower(prev) || (i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
				result.WriteRune('-')
			}
		}

		result.WriteRune(unicode.ToLower(r))
	}

	return result.String()
}

// defaultNameTransform derives the CLI spelling of a field name.
func defaultNameTransform(name string) string {
	kebab := camelToKebab(strings.ReplaceAll(name, "_", "-"))

	return strings.Trim(kebab, "-")
}

// nameStartsWith reports whether s begins with prefix, treating hyphen and
// underscore as the same character.
func nameStartsWith(s, prefix string) bool {
	return strings.HasPrefix(normalizeName(s), normalizeName(prefix))
}

func normalizeName(s string) string {
	return strings.ReplaceAll(s, "_", "-")
}

// cliOptionName assembles a long option spelling from structural keys.
func cliOptionName(keys ...string) string {
	return longPrefix + strings.Join(keys, keyDelimiter)
}

// resolveName formats one name component: a trailing "*" wildcard drops the
// component so descendants flatten into the parent namespace, and anything
// not already option-like gains the long prefix.
func resolveName(elem string) string {
	if strings.HasSuffix(elem, "*") {
		elem = strings.TrimRight(strings.TrimSuffix(elem, "*"), keyDelimiter)
	}

	if elem != "" && !strings.HasPrefix(elem, "-") {
		elem = longPrefix + elem
	}

	return elem
}

// resolveParameterNames composes name groups left-to-right into dotted CLI
// spellings. A component starting with "-" is absolute and discards any
// accumulated prefix; an empty (wildcarded) prefix is skipped.
func resolveParameterNames(groups ...[]string) []string {
	nonEmpty := make([][]string, 0, len(groups))

	for _, group := range groups {
		if len(group) > 0 {
			nonEmpty = append(nonEmpty, group)
		}
	}

	if len(nonEmpty) == 0 {
		return nil
	}

	if len(nonEmpty) == 1 {
		out := make([]string, 0, len(nonEmpty[0]))
		for _, name := range nonEmpty[0] {
			if name == "*" {
				out = append(out, "*")
			} else {
				out = append(out, resolveName(name))
			}
		}

		return out
	}

	var combined []string

	for _, left := range nonEmpty[0] {
		left = resolveName(left)

		for _, right := range nonEmpty[1] {
			if strings.HasPrefix(right, "-") || left == "" {
				combined = append(combined, right)
			} else {
				combined = append(combined, left+keyDelimiter+right)
			}
		}
	}

	rest := append([][]string{combined}, nonEmpty[2:]...)

	return resolveParameterNames(rest...)
}

// splitKeys splits a dotted remainder into structural keys.
func splitKeys(s string) []string {
	if s == "" {
		return nil
	}

	return strings.Split(s, keyDelimiter)
}

func joinKeys(keys []string) string {
	return strings.Join(keys, keyDelimiter)
}

// isOptionLike reports whether a raw CLI token looks like an option rather
// than a value. Negative numbers are not option-like.
func isOptionLike(token string) bool {
	if !strings.HasPrefix(token, "-") || token == "-" || token == longPrefix {
		return false
	}

	if len(token) > 1 && (unicode.IsDigit(rune(token[1])) || token[1] == '.') {
		return false
	}

	return true
}

// upperDisplayName renders a display-only name for positional parameters.
func upperDisplayName(name string) string {
	return strings.ToUpper(defaultNameTransform(name))
}
