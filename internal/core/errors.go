package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Exported variables.
var (
	ErrArgumentOrder   = errors.New("positional argument follows keyword argument")
	ErrCoercion        = errors.New("invalid value")
	ErrCombinedShort   = errors.New("cannot combine multiple value-taking short options")
	ErrConfig          = errors.New("invalid argument configuration")
	ErrMissingArgument = errors.New("missing required argument")
	ErrMixedArgument   = errors.New("cannot mix positional and keyed values")
	ErrRepeatArgument  = errors.New("argument specified multiple times")
	ErrUnknownOption   = errors.New("unknown option")
	ErrUnusedTokens    = errors.New("unused tokens")
	ErrValidation      = errors.New("validation failed")
)

// ErrorDetail carries shared context attached to parse errors while they
// propagate. Every field is optional at construction; enrichment happens as
// the error crosses frames that know more.
type ErrorDetail struct {
	// Argument is the argument the error is about, once known.
	Argument *Argument

	// InputTokens are the raw tokens the whole parse started from.
	InputTokens []string

	// UnusedTokens are tokens no argument claimed.
	UnusedTokens []string
}

// argumentName names the owning argument for messages, if known.
func (d *ErrorDetail) argumentName() string {
	if d.Argument == nil {
		return ""
	}

	return d.Argument.Name()
}

// attachArgument fills Argument if unset.
func (d *ErrorDetail) attachArgument(argument *Argument) {
	if d.Argument == nil {
		d.Argument = argument
	}
}

// detailed is implemented by all parse errors carrying an ErrorDetail.
type detailed interface {
	detail() *ErrorDetail
}

// attachArgument enriches err with the owning argument if err carries detail
// and does not already name one.
func attachArgument(err error, argument *Argument) {
	var carrier detailed
	if errors.As(err, &carrier) {
		carrier.detail().attachArgument(argument)
	}
}

// attachInputTokens records the original token stream on the error.
func attachInputTokens(err error, input, unused []string) {
	var carrier detailed
	if errors.As(err, &carrier) {
		d := carrier.detail()
		d.InputTokens = input
		d.UnusedTokens = unused
	}
}

// CoercionError reports a token whose string value could not be converted to
// the target type.
type CoercionError struct {
	ErrorDetail

	Msg        string
	Token      *Token
	TargetType reflect.Type
}

func (e *CoercionError) Error() string {
	var b strings.Builder

	b.WriteString(ErrCoercion.Error())

	if e.Token != nil {
		fmt.Fprintf(&b, " %q", e.Token.Value)
	}

	if name := e.argumentName(); name != "" {
		b.WriteString(" for ")
		b.WriteString(name)
	}

	if e.TargetType != nil {
		fmt.Fprintf(&b, ": expected %s", e.TargetType)
	}

	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}

	if e.Token != nil && e.Token.Source != "" && e.Token.Source != SourceCLI {
		fmt.Fprintf(&b, " (from %s)", e.Token.Source)
	}

	return b.String()
}

func (e *CoercionError) Unwrap() error { return ErrCoercion }

func (e *CoercionError) detail() *ErrorDetail { return &e.ErrorDetail }

// MissingArgumentError reports a required argument that received no tokens.
// For structured parameters it points at the most specific missing child.
type MissingArgumentError struct {
	ErrorDetail

	// Keyword is the spelling used on the command line, when the failure
	// happened while consuming values for a keyword.
	Keyword string

	// TokensSoFar are values consumed before the stream ran out.
	TokensSoFar []string
}

func (e *MissingArgumentError) Error() string {
	var b strings.Builder

	b.WriteString(ErrMissingArgument.Error())

	if name := e.argumentName(); name != "" {
		b.WriteString(": ")
		b.WriteString(name)
	} else if e.Keyword != "" {
		b.WriteString(": ")
		b.WriteString(e.Keyword)
	}

	if len(e.TokensSoFar) > 0 {
		count, _ := e.Argument.TokenCount()
		fmt.Fprintf(&b, " requires %d values (got %d)", count, len(e.TokensSoFar))
	}

	return b.String()
}

func (e *MissingArgumentError) Unwrap() error { return ErrMissingArgument }

func (e *MissingArgumentError) detail() *ErrorDetail { return &e.ErrorDetail }

// RepeatArgumentError reports the same CLI occurrence feeding a
// non-repeatable argument more than once.
type RepeatArgumentError struct {
	ErrorDetail

	Token Token
}

func (e *RepeatArgumentError) Error() string {
	name := e.argumentName()
	if name == "" {
		name = e.Token.Keyword
	}

	return fmt.Sprintf("%s: %s", ErrRepeatArgument.Error(), name)
}

func (e *RepeatArgumentError) Unwrap() error { return ErrRepeatArgument }

func (e *RepeatArgumentError) detail() *ErrorDetail { return &e.ErrorDetail }

// MixedArgumentError reports an argument that received both plain and keyed
// (dotted sub-key) tokens, which is structurally contradictory.
type MixedArgumentError struct {
	ErrorDetail
}

func (e *MixedArgumentError) Error() string {
	if name := e.argumentName(); name != "" {
		return fmt.Sprintf("%s: %s", ErrMixedArgument.Error(), name)
	}

	return ErrMixedArgument.Error()
}

func (e *MixedArgumentError) Unwrap() error { return ErrMixedArgument }

func (e *MixedArgumentError) detail() *ErrorDetail { return &e.ErrorDetail }

// UnknownOptionError reports a keyword that resolves to no argument.
type UnknownOptionError struct {
	ErrorDetail

	Token Token

	// Suggestions are near-miss option names, if any.
	Suggestions []string
}

func (e *UnknownOptionError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s", ErrUnknownOption.Error(), e.Token.Value)

	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, " (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}

	return b.String()
}

func (e *UnknownOptionError) Unwrap() error { return ErrUnknownOption }

func (e *UnknownOptionError) detail() *ErrorDetail { return &e.ErrorDetail }

// UnusedTokensError reports leftover tokens after every positional slot was
// filled.
type UnusedTokensError struct {
	ErrorDetail

	Tokens []string
}

func (e *UnusedTokensError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnusedTokens.Error(), strings.Join(e.Tokens, " "))
}

func (e *UnusedTokensError) Unwrap() error { return ErrUnusedTokens }

func (e *UnusedTokensError) detail() *ErrorDetail { return &e.ErrorDetail }

// ValidationError reports a user validator rejecting a converted value.
type ValidationError struct {
	ErrorDetail

	Msg string
}

func (e *ValidationError) Error() string {
	var b strings.Builder

	b.WriteString(ErrValidation.Error())

	if name := e.argumentName(); name != "" {
		b.WriteString(" for ")
		b.WriteString(name)
	}

	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}

	return b.String()
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func (e *ValidationError) detail() *ErrorDetail { return &e.ErrorDetail }

// ArgumentOrderError reports a positional token arriving after the same
// parameter class was already supplied by keyword.
type ArgumentOrderError struct {
	ErrorDetail

	Token string

	// PriorKeywords are the arguments already supplied by keyword.
	PriorKeywords []*Argument
}

func (e *ArgumentOrderError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %q", ErrArgumentOrder.Error(), e.Token)

	if len(e.PriorKeywords) > 0 {
		names := make([]string, len(e.PriorKeywords))
		for i, argument := range e.PriorKeywords {
			names[i] = argument.Name()
		}

		fmt.Fprintf(&b, " (already supplied: %s)", strings.Join(names, ", "))
	}

	return b.String()
}

func (e *ArgumentOrderError) Unwrap() error { return ErrArgumentOrder }

func (e *ArgumentOrderError) detail() *ErrorDetail { return &e.ErrorDetail }

// CombinedShortOptionError reports a combined short-option token in which
// more than one option wants a value.
type CombinedShortOptionError struct {
	ErrorDetail

	Token string
}

func (e *CombinedShortOptionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCombinedShort.Error(), e.Token)
}

func (e *CombinedShortOptionError) Unwrap() error { return ErrCombinedShort }

func (e *CombinedShortOptionError) detail() *ErrorDetail { return &e.ErrorDetail }

// configError builds a construction-time error. These indicate the bound
// type itself is unsupportable and are not meant to be caught at runtime.
func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// ConfigErrorf builds a construction-time error for misconfigured binding
// targets, for callers outside this package.
func ConfigErrorf(format string, args ...any) error {
	return configError(format, args...)
}
