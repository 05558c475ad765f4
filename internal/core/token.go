package core

import "strings"

// Exported constants.
const (
	SourceCLI     Source = "cli"
	SourceConfig  Source = "config"
	SourceEnv     Source = "env"
	SourceDefault Source = "default"
)

// Source identifies where a token originated, for error messages.
type Source string

// Implicit wraps a typed value that bypasses string coercion entirely.
// A nil *Implicit means "no implicit value"; an Implicit wrapping nil is a
// deliberate nil value (e.g. negating an optional flag).
type Implicit struct {
	Value any
}

// ImplicitValue is shorthand for building an implicit token value.
func ImplicitValue(v any) *Implicit {
	return &Implicit{Value: v}
}

// Token is one raw input unit assigned to an Argument, with provenance.
// Tokens are treated as immutable; derive variants with Evolve.
type Token struct {
	// Keyword is the CLI spelling that matched (e.g. "--output"), or "" for
	// a purely positional token.
	Keyword string

	// Value is the raw string value. May be empty for implicit tokens.
	Value string

	// Source records where the token came from.
	Source Source

	// Index disambiguates repeated values for the same keyword.
	Index int

	// Keys is the structural path remaining after matching; empty when the
	// argument itself was matched exactly.
	Keys []string

	// Implicit carries a typed value for flags, bypassing coercion.
	Implicit *Implicit
}

// Address identifies the physical occurrence a token came from. Two tokens
// share an address when they were produced by the same CLI occurrence.
type Address struct {
	Keys  string
	Index int
}

// Address returns the occurrence address of the token.
func (t Token) Address() Address {
	return Address{Keys: strings.Join(t.Keys, "."), Index: t.Index}
}

// Evolve returns a copy of the token with the given mutations applied.
func (t Token) Evolve(mutate func(*Token)) Token {
	out := t
	out.Keys = append([]string(nil), t.Keys...)
	mutate(&out)

	return out
}

// String renders the token for error messages.
func (t Token) String() string {
	var b strings.Builder

	if t.Keyword != "" {
		b.WriteString(t.Keyword)
	}

	if t.Value != "" {
		if b.Len() > 0 {
			b.WriteString("=")
		}

		b.WriteString(t.Value)
	}

	if b.Len() == 0 {
		b.WriteString("(implicit)")
	}

	if t.Source != "" && t.Source != SourceCLI {
		b.WriteString(" (from ")
		b.WriteString(string(t.Source))
		b.WriteString(")")
	}

	return b.String()
}
