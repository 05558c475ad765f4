package core

import (
	"os"
	"reflect"
	"strings"
)

// Path is a filesystem path. Iterable parameters of Path split environment
// values on the platform's path-list separator, matching PATH-style
// variables.
type Path string

// unexported variables.
var (
	//nolint:gochecknoglobals // reflect type for path-list env splitting
	pathType = reflect.TypeFor[Path]()
)

// splitEnvValue turns one environment variable value into value tokens,
// honoring a custom splitter when the parameter carries one.
func splitEnvValue(argument *Argument, raw string) []string {
	if split := argument.parameter.EnvVarSplit; split != nil {
		return split(argument.hint, raw, argument.parameter.Delimiter)
	}

	return EnvVarSplit(argument.hint, raw, argument.parameter.Delimiter)
}

// EnvVarSplit is the default environment splitter. Iterable and map hints
// split on the delimiter, defaulting to whitespace; iterables of Path
// split on the platform path-list separator instead. Everything else
// passes through as a single value.
func EnvVarSplit(target reflect.Type, raw string, delimiter string) []string {
	t := derefType(target)

	if !isIterable(t) && !isMapLike(t) {
		return []string{raw}
	}

	if isIterable(t) && derefType(t.Elem()) == pathType {
		return strings.Split(raw, string(os.PathListSeparator))
	}

	if delimiter != "" {
		return strings.Split(raw, delimiter)
	}

	return strings.Fields(raw)
}
