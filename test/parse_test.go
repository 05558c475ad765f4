package argot_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/toejough/argot"
)

// --- Positional And Keyword Binding ---

type ThreeInts struct {
	A int `argot:"arg"`
	B int `argot:"arg"`
	C int `argot:"arg"`
}

func TestPositionalAndKeywordSupplyTheSameParameters(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		argv []string
	}{
		{"all positional", []string{"1", "2", "3"}},
		{"trailing keyword", []string{"1", "2", "--c", "3"}},
		{"keyword first", []string{"--c", "3", "1", "2"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var got ThreeInts

			if err := argot.Parse(&got, tc.argv); err != nil {
				t.Fatalf("parse %v: %v", tc.argv, err)
			}

			want := ThreeInts{A: 1, B: 2, C: 3}
			if got != want {
				t.Errorf("got %+v, want %+v", got, want)
			}
		})
	}
}

func TestPositionalAfterItsOwnKeywordErrors(t *testing.T) {
	t.Parallel()

	var got ThreeInts

	err := argot.Parse(&got, []string{"--a", "1", "2", "3"})
	if !errors.Is(err, argot.ErrArgumentOrder) {
		t.Fatalf("expected an argument-order error, got %v", err)
	}
}

// --- Fixed-Size Tuples ---

type TupleArgs struct {
	Point [2]int `argot:"arg"`
	Color [3]int `argot:"arg"`
}

func TestArraysConsumeTheirExactArity(t *testing.T) {
	t.Parallel()

	var got TupleArgs

	if err := argot.Parse(&got, []string{"1", "2", "7", "8", "9"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := TupleArgs{Point: [2]int{1, 2}, Color: [3]int{7, 8, 9}}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestArrayKeywordConsumesItsArity(t *testing.T) {
	t.Parallel()

	var got TupleArgs

	err := argot.Parse(&got, []string{"--point", "1", "2", "--color", "7", "8", "9"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got.Point != [2]int{1, 2} {
		t.Errorf("point = %v", got.Point)
	}
}

func TestArrayShortfallNamesTheKeyword(t *testing.T) {
	t.Parallel()

	var got TupleArgs

	err := argot.Parse(&got, []string{"--point", "1"})
	if !errors.Is(err, argot.ErrMissingArgument) {
		t.Fatalf("expected a missing-argument error, got %v", err)
	}

	var missing *argot.MissingArgumentError
	if !errors.As(err, &missing) || missing.Keyword != "--point" {
		t.Errorf("the error must carry the spelling used, got %+v", missing)
	}
}

// --- Number Coercion ---

type NumberArgs struct {
	Count int    `argot:"optional"`
	Mask  uint16 `argot:"optional"`
}

func TestIntegerLiteralForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value string
		want  int
	}{
		{"30", 30},
		{"30.0", 30},
		{"30.9", 30},
		{"0x10", 16},
		{"0o17", 15},
		{"0b101", 5},
		{"-4", -4},
	}

	for _, tc := range cases {
		var got NumberArgs

		if err := argot.Parse(&got, []string{"--count", tc.value}); err != nil {
			t.Fatalf("parse %q: %v", tc.value, err)
		}

		if got.Count != tc.want {
			t.Errorf("%q parsed to %d, want %d", tc.value, got.Count, tc.want)
		}
	}
}

func TestNonNumericValuesDoNotCoerceToInt(t *testing.T) {
	t.Parallel()

	var got NumberArgs

	err := argot.Parse(&got, []string{"--count", "thirty"})
	if !errors.Is(err, argot.ErrCoercion) {
		t.Fatalf("expected a coercion error, got %v", err)
	}
}

// --- Structured Parameters ---

type ServerConfig struct {
	Host string
	Port int
}

type AppArgs struct {
	Config ServerConfig `argot:"flag"`
}

func TestStructFieldsBindByDottedKeyword(t *testing.T) {
	t.Parallel()

	var got AppArgs

	err := argot.Parse(&got, []string{"--config.host", "localhost", "--config.port", "8080"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := AppArgs{Config: ServerConfig{Host: "localhost", Port: 8080}}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestPartialStructNamesTheSpecificMissingField(t *testing.T) {
	t.Parallel()

	var got AppArgs

	err := argot.Parse(&got, []string{"--config.host", "localhost"})
	if !errors.Is(err, argot.ErrMissingArgument) {
		t.Fatalf("expected a missing-argument error, got %v", err)
	}

	var missing *argot.MissingArgumentError
	if !errors.As(err, &missing) {
		t.Fatalf("unexpected error shape: %v", err)
	}

	if missing.Argument == nil || missing.Argument.Name() != "--config.port" {
		t.Errorf("error should name the missing field, got %v", missing.Argument)
	}
}

type Limits struct {
	Low  int
	High int
}

type LimitArgs struct {
	Limits Limits `argot:"flag,env=APP_LIMITS"`
}

func TestStructAcceptsJSONFromEnvironment(t *testing.T) {
	t.Parallel()

	lookup := func(name string) (string, bool) {
		if name == "APP_LIMITS" {
			return `{"low": 1, "high": 9}`, true
		}

		return "", false
	}

	var got LimitArgs

	if err := argot.Parse(&got, nil, argot.WithEnvLookup(lookup)); err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := LimitArgs{Limits: Limits{Low: 1, High: 9}}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

// --- Maps ---

type DictArgs struct {
	Counts map[string]int `argot:"optional,consumemultiple"`
}

func TestMapBindsDottedKeysAndPairs(t *testing.T) {
	t.Parallel()

	want := map[string]int{"alpha": 1, "beta": 2}

	var dotted DictArgs

	err := argot.Parse(&dotted, []string{"--counts.alpha", "1", "--counts.beta", "2"})
	if err != nil {
		t.Fatalf("dotted parse: %v", err)
	}

	if !reflect.DeepEqual(dotted.Counts, want) {
		t.Errorf("dotted = %v, want %v", dotted.Counts, want)
	}

	var pairs DictArgs

	if err := argot.Parse(&pairs, []string{"--counts", "alpha=1", "beta=2"}); err != nil {
		t.Fatalf("pair parse: %v", err)
	}

	if !reflect.DeepEqual(pairs.Counts, want) {
		t.Errorf("pairs = %v, want %v", pairs.Counts, want)
	}
}

// --- Catch-Alls ---

type RunArgs struct {
	Cmd   string            `argot:"arg"`
	Args  []string          `argot:"rest"`
	Extra map[string]string `argot:"extra"`
}

func TestCatchAllsAbsorbLeftovers(t *testing.T) {
	t.Parallel()

	var got RunArgs

	err := argot.Parse(&got, []string{"build", "pkg1", "pkg2", "--whatever", "x"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got.Cmd != "build" {
		t.Errorf("cmd = %q", got.Cmd)
	}

	if !reflect.DeepEqual(got.Args, []string{"pkg1", "pkg2"}) {
		t.Errorf("args = %v", got.Args)
	}

	if !reflect.DeepEqual(got.Extra, map[string]string{"whatever": "x"}) {
		t.Errorf("extra = %v", got.Extra)
	}
}

// --- JSON List Shortcut ---

type ListArgs struct {
	IDs   []int    `argot:"optional"`
	Names []string `argot:"optional"`
}

func TestJSONListExpandsForNonStringElements(t *testing.T) {
	t.Parallel()

	var got ListArgs

	if err := argot.Parse(&got, []string{"--ids", "[1, 2, 3]"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if !reflect.DeepEqual(got.IDs, []int{1, 2, 3}) {
		t.Errorf("ids = %v", got.IDs)
	}
}

func TestStringSlicesKeepJSONLookingLiterals(t *testing.T) {
	t.Parallel()

	var got ListArgs

	if err := argot.Parse(&got, []string{"--names", `["a", "b"]`}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if !reflect.DeepEqual(got.Names, []string{`["a", "b"]`}) {
		t.Errorf("a string field must keep the literal, got %v", got.Names)
	}
}

// --- Unions ---

type UnionArgs struct {
	ID any `argot:"optional"`
}

func (u *UnionArgs) Parameters() map[string]argot.Parameter {
	return map[string]argot.Parameter{
		"ID": {Types: []reflect.Type{
			reflect.TypeFor[int](),
			reflect.TypeFor[string](),
		}},
	}
}

func TestUnionTriesTypesLeftToRight(t *testing.T) {
	t.Parallel()

	var numeric UnionArgs

	if err := argot.Parse(&numeric, []string{"--id", "42"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if numeric.ID != 42 {
		t.Errorf("id = %#v, want int 42", numeric.ID)
	}

	var textual UnionArgs

	if err := argot.Parse(&textual, []string{"--id", "forty-two"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if textual.ID != "forty-two" {
		t.Errorf("id = %#v, want the string fallback", textual.ID)
	}
}

// --- Leftover Tokens ---

type SingleArg struct {
	Only string `argot:"arg"`
}

func TestLeftoverTokensErrorUnlessAllowed(t *testing.T) {
	t.Parallel()

	var strict SingleArg

	err := argot.Parse(&strict, []string{"a", "b"})
	if !errors.Is(err, argot.ErrUnusedTokens) {
		t.Fatalf("expected an unused-tokens error, got %v", err)
	}

	var lenient SingleArg

	if err := argot.Parse(&lenient, []string{"a", "b"}, argot.AllowExtraArgs()); err != nil {
		t.Fatalf("AllowExtraArgs should tolerate leftovers: %v", err)
	}

	if lenient.Only != "a" {
		t.Errorf("only = %q", lenient.Only)
	}
}

// --- End Of Options ---

func TestDoubleDashForcesValues(t *testing.T) {
	t.Parallel()

	var got SingleArg

	if err := argot.Parse(&got, []string{"--", "--only-looks-like-an-option"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got.Only != "--only-looks-like-an-option" {
		t.Errorf("only = %q", got.Only)
	}
}
