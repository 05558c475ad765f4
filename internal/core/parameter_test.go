package core

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCombineParametersLaterExplicitWins(t *testing.T) {
	t.Parallel()

	base := Parameter{
		Name:     []string{"base"},
		Help:     "base help",
		Required: Ptr(true),
		EnvVar:   []string{"BASE"},
	}

	override := Parameter{
		Help:     "override help",
		Required: Ptr(false),
	}

	combined := CombineParameters(base, override)

	if diff := cmp.Diff([]string{"base"}, combined.Name); diff != "" {
		t.Errorf("unset fields must fall through (-want +got):\n%s", diff)
	}

	if combined.Help != "override help" {
		t.Errorf("Help = %q, want the override", combined.Help)
	}

	if combined.Required == nil || *combined.Required {
		t.Error("explicit later Required=false must win")
	}

	if diff := cmp.Diff([]string{"BASE"}, combined.EnvVar); diff != "" {
		t.Errorf("EnvVar should fall through (-want +got):\n%s", diff)
	}
}

func TestCombineParametersEmptySliceIsExplicit(t *testing.T) {
	t.Parallel()

	combined := CombineParameters(
		Parameter{Negative: []string{"--off"}},
		Parameter{Negative: []string{}},
	)

	if combined.Negative == nil || len(combined.Negative) != 0 {
		t.Errorf("an empty non-nil Negative disables negation, got %v", combined.Negative)
	}
}

func TestGetNegativesBool(t *testing.T) {
	t.Parallel()

	p := Parameter{Name: []string{"--my-flag"}}

	got := p.GetNegatives(reflect.TypeFor[bool]())
	if diff := cmp.Diff([]string{"--no-my-flag"}, got); diff != "" {
		t.Errorf("bool negatives mismatch (-want +got):\n%s", diff)
	}
}

func TestGetNegativesPreservesDottedPrefix(t *testing.T) {
	t.Parallel()

	p := Parameter{Name: []string{"--config.flag"}}

	got := p.GetNegatives(reflect.TypeFor[bool]())
	if diff := cmp.Diff([]string{"--config.no-flag"}, got); diff != "" {
		t.Errorf("dotted negatives mismatch (-want +got):\n%s", diff)
	}
}

func TestGetNegativesIterable(t *testing.T) {
	t.Parallel()

	p := Parameter{Name: []string{"--items"}}

	got := p.GetNegatives(reflect.TypeFor[[]string]())
	if diff := cmp.Diff([]string{"--empty-items"}, got); diff != "" {
		t.Errorf("iterable negatives mismatch (-want +got):\n%s", diff)
	}
}

func TestGetNegativesCustomAndDisabled(t *testing.T) {
	t.Parallel()

	custom := Parameter{Name: []string{"--flag"}, Negative: []string{"off"}}

	got := custom.GetNegatives(reflect.TypeFor[bool]())
	if diff := cmp.Diff([]string{"--off"}, got); diff != "" {
		t.Errorf("custom negative mismatch (-want +got):\n%s", diff)
	}

	absolute := Parameter{Name: []string{"--flag"}, Negative: []string{"--disable"}}

	got = absolute.GetNegatives(reflect.TypeFor[bool]())
	if diff := cmp.Diff([]string{"--disable"}, got); diff != "" {
		t.Errorf("absolute negative mismatch (-want +got):\n%s", diff)
	}

	disabled := Parameter{Name: []string{"--flag"}, Negative: []string{}}

	if got := disabled.GetNegatives(reflect.TypeFor[bool]()); len(got) != 0 {
		t.Errorf("empty Negative must disable negation, got %v", got)
	}
}

func TestGetNegativesScalarHasNone(t *testing.T) {
	t.Parallel()

	p := Parameter{Name: []string{"--name"}}

	if got := p.GetNegatives(reflect.TypeFor[string]()); got != nil {
		t.Errorf("scalars have no negatives, got %v", got)
	}
}

func TestBlockSubkeyInheritance(t *testing.T) {
	t.Parallel()

	parent := Parameter{
		Name:        []string{"--config"},
		Short:       "c",
		Help:        "kept",
		Required:    Ptr(true),
		EnvVar:      []string{"CONFIG"},
		Converter:   func(reflect.Type, []Token) (any, error) { return nil, nil },
		Validators:  []ValidatorFunc{func(reflect.Type, any) error { return nil }},
		AcceptsKeys: Ptr(true),
	}

	blocked := blockSubkeyInheritance(parent)

	if blocked.Name != nil || blocked.Short != "" || blocked.EnvVar != nil {
		t.Error("names and env vars must not flow into children")
	}

	if blocked.Converter != nil || blocked.Validators != nil || blocked.AcceptsKeys != nil {
		t.Error("converters, validators and key acceptance must not flow into children")
	}

	if blocked.Help != "kept" || blocked.Required == nil {
		t.Error("other fields keep flowing")
	}
}
