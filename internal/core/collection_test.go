package core

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type credentials struct {
	User string `argot:"arg"`
	Pass string `argot:"arg,optional"`
}

type treeTarget struct {
	Input  string      `argot:"arg"`
	Creds  credentials `argot:"arg"`
	Output string      `argot:"arg"`
}

func TestCollectionBuildFlattensPreOrder(t *testing.T) {
	t.Parallel()

	collection := collectionFor(t, treeTarget{})

	var names []string
	for _, argument := range collection.Arguments() {
		names = append(names, argument.Name())
	}

	want := []string{"--input", "--creds", "--creds.user", "--creds.pass", "--output"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("pre-order mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectionBuildAssignsPositionalIndices(t *testing.T) {
	t.Parallel()

	collection := collectionFor(t, treeTarget{})

	input := argumentNamed(t, collection, "--input")
	if index, ok := input.Index(); !ok || index != 0 {
		t.Errorf("--input index = %v, %t; want 0", index, ok)
	}

	// The structured parameter takes no slot itself; its leaves thread the
	// counter depth-first.
	creds := argumentNamed(t, collection, "--creds")
	if _, ok := creds.Index(); ok {
		t.Error("keyword-accepting parents take no positional slot")
	}

	user := argumentNamed(t, collection, "--creds.user")
	if index, ok := user.Index(); !ok || index != 1 {
		t.Errorf("--creds.user index = %v, %t; want 1", index, ok)
	}

	output := argumentNamed(t, collection, "--output")
	if index, ok := output.Index(); !ok || index != 3 {
		t.Errorf("--output index = %v, %t; want 3", index, ok)
	}
}

func TestKeywordOnlyStopsIndexAssignment(t *testing.T) {
	t.Parallel()

	type target struct {
		First  string `argot:"arg"`
		Flag   string `argot:"flag"`
		Second string `argot:"arg"`
	}

	collection := collectionFor(t, target{})

	if _, ok := argumentNamed(t, collection, "--flag").Index(); ok {
		t.Error("keyword-only fields never bind positionally")
	}

	if _, ok := argumentNamed(t, collection, "--second").Index(); ok {
		t.Error("index assignment stops at the keyword-only boundary")
	}
}

func TestChildRequiredNeedsBothParentAndField(t *testing.T) {
	t.Parallel()

	collection := collectionFor(t, treeTarget{})

	if !argumentNamed(t, collection, "--creds.user").Required() {
		t.Error("a required field of a required parameter is required")
	}

	if argumentNamed(t, collection, "--creds.pass").Required() {
		t.Error("an optional field stays optional")
	}

	type optionalParent struct {
		Creds credentials `argot:"flag,optional"`
	}

	optional := collectionFor(t, optionalParent{})

	if argumentNamed(t, optional, "--creds.user").Required() {
		t.Error("children of an optional parameter cannot be required")
	}
}

func TestPositionalOnlyParentDropsKeywordOnlyChildren(t *testing.T) {
	t.Parallel()

	type inner struct {
		Seen   string `argot:"arg"`
		Hidden string `argot:"flag"`
	}

	type target struct {
		Value inner `argot:"positional,acceptskeys=true"`
	}

	collection := collectionFor(t, target{})

	for _, argument := range collection.Arguments() {
		if len(argument.Keys()) == 1 && argument.Keys()[0] == "hidden" {
			t.Error("a keyword-only child of a positional-only parent is unreachable and must be dropped")
		}
	}

	found := false

	for _, argument := range collection.Arguments() {
		if len(argument.Keys()) == 1 && argument.Keys()[0] == "seen" {
			found = true

			if argument.Field().Kind != PositionalOnly {
				t.Errorf("child kind = %v, want positional-only", argument.Field().Kind)
			}
		}
	}

	if !found {
		t.Error("the reachable child should survive")
	}
}

func TestWildcardParentDropsItsPrefix(t *testing.T) {
	t.Parallel()

	type wildcardInner struct {
		Host string
	}

	type target struct {
		Server wildcardInner `argot:"flag,name=*"`
	}

	collection := collectionFor(t, target{})

	// The child flattens into the parent namespace.
	host := argumentNamed(t, collection, "--host")
	if diff := cmp.Diff([]string{"host"}, host.Keys()); diff != "" {
		t.Errorf("wildcard child keys mismatch (-want +got):\n%s", diff)
	}

	if _, _, ok := host.Match("--server.host", nil); ok {
		t.Error("the prefixed spelling must not exist under a wildcard parent")
	}
}

type unionBranchA struct {
	Kind string
	Host string `argot:"optional"`
}

type unionBranchB struct {
	Kind string
	Port int `argot:"optional"`
}

func TestDiscriminatedUnionMergesSharedField(t *testing.T) {
	t.Parallel()

	type target struct {
		Backend any `argot:"flag"`
	}

	value := reflect.ValueOf(target{})

	collection, err := NewCollectionForType(value.Type(), value, Parameter{
		Types:         []reflect.Type{reflect.TypeFor[unionBranchA](), reflect.TypeFor[unionBranchB]()},
		Discriminator: "kind",
	})
	if err != nil {
		t.Fatalf("building collection: %v", err)
	}

	var keys []string
	for _, argument := range collection.Arguments() {
		if len(argument.Keys()) == 1 {
			keys = append(keys, argument.Keys()[0])
		}
	}

	want := []string{"kind", "host", "port"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("merged children mismatch (-want +got):\n%s", diff)
	}
}

func TestUnionWithoutDiscriminatorRejectsConflicts(t *testing.T) {
	t.Parallel()

	type conflictA struct {
		Value int `argot:"optional"`
	}

	type conflictB struct {
		Value string `argot:"optional"`
	}

	type target struct {
		Backend any `argot:"flag"`
	}

	value := reflect.ValueOf(target{})

	_, err := NewCollectionForType(value.Type(), value, Parameter{
		Types: []reflect.Type{reflect.TypeFor[conflictA](), reflect.TypeFor[conflictB]()},
	})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected a construction error, got %v", err)
	}
}

func TestConvertReportsFirstMissingChild(t *testing.T) {
	t.Parallel()

	type server struct {
		Host string
		Port int
	}

	type target struct {
		Config server `argot:"flag"`
	}

	collection := collectionFor(t, target{})
	host := argumentNamed(t, collection, "--config.host")

	if err := host.Append(Token{Keyword: "--config.host", Value: "localhost", Source: SourceCLI}); err != nil {
		t.Fatalf("append: %v", err)
	}

	err := collection.Convert()
	if !errors.Is(err, ErrMissingArgument) {
		t.Fatalf("expected a missing-argument error, got %v", err)
	}

	var missing *MissingArgumentError
	if !errors.As(err, &missing) {
		t.Fatalf("unexpected error shape: %v", err)
	}

	if missing.Argument == nil || missing.Argument.Name() != "--config.port" {
		t.Errorf("the error must name the specific missing child, got %v", missing.Argument)
	}
}

func TestConvertPointsAtParentWhenNothingSupplied(t *testing.T) {
	t.Parallel()

	type server struct {
		Host string
		Port int
	}

	type target struct {
		Config server `argot:"flag"`
	}

	collection := collectionFor(t, target{})

	err := collection.Convert()

	var missing *MissingArgumentError
	if !errors.As(err, &missing) {
		t.Fatalf("expected a missing-argument error, got %v", err)
	}

	if missing.Argument == nil || missing.Argument.Name() != "--config.host" {
		t.Errorf("with no data at all the first required child is named, got %v", missing.Argument)
	}
}

func TestConvertMarksChildrenConsumedByParent(t *testing.T) {
	t.Parallel()

	type pair struct {
		A int
		B int
	}

	type target struct {
		Value pair `argot:"flag"`
	}

	collection := collectionFor(t, target{})
	parent := argumentNamed(t, collection, "--value")

	// Whole-value positional tokens on the parent bypass the children.
	for i, v := range []string{"1", "2"} {
		if err := parent.Append(Token{Keyword: "--value", Value: v, Source: SourceCLI, Index: i}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if err := collection.Convert(); err != nil {
		t.Fatalf("convert: %v", err)
	}

	got, ok := parent.Value()
	if !ok {
		t.Fatal("parent should have converted")
	}

	if diff := cmp.Diff(pair{A: 1, B: 2}, got); diff != "" {
		t.Errorf("parent value mismatch (-want +got):\n%s", diff)
	}

	// The children were consumed wholesale; they must not convert again
	// (and must not raise missing-argument for themselves).
	for _, child := range parent.Children() {
		if _, ok := child.Value(); ok {
			t.Errorf("child %s should not hold its own value", child.Name())
		}
	}
}

func TestUpdateFromMapKeepsEarlierSources(t *testing.T) {
	t.Parallel()

	type target struct {
		Name string `argot:"optional"`
		Port int    `argot:"optional"`
	}

	collection := collectionFor(t, target{})
	name := argumentNamed(t, collection, "--name")

	if err := name.Append(Token{Keyword: "--name", Value: "cli", Source: SourceCLI}); err != nil {
		t.Fatalf("append: %v", err)
	}

	err := collection.UpdateFromMap(map[string]any{"name": "config", "port": 8080}, SourceConfig, false)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := collection.Convert(); err != nil {
		t.Fatalf("convert: %v", err)
	}

	if got, _ := name.Value(); got != "cli" {
		t.Errorf("CLI tokens must keep precedence over config, got %v", got)
	}

	if got, _ := argumentNamed(t, collection, "--port").Value(); got != 8080 {
		t.Errorf("config should fill untouched arguments, got %v", got)
	}
}

func TestUpdateFromMapRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	type target struct {
		Name string `argot:"optional"`
	}

	collection := collectionFor(t, target{})

	err := collection.UpdateFromMap(map[string]any{"bogus": 1}, SourceConfig, false)
	if !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("expected an unknown-option error, got %v", err)
	}

	if err := collection.UpdateFromMap(map[string]any{"bogus": 1}, SourceConfig, true); err != nil {
		t.Errorf("allowUnknown should ignore strays: %v", err)
	}
}

func TestClearCacheResetsIntrospection(t *testing.T) {
	t.Parallel()

	type target struct {
		Name string `argot:"optional"`
	}

	if _, err := fieldsOf(reflect.TypeFor[target]()); err != nil {
		t.Fatalf("fieldsOf: %v", err)
	}

	ClearCache()

	fields, err := fieldsOf(reflect.TypeFor[target]())
	if err != nil {
		t.Fatalf("fieldsOf after clear: %v", err)
	}

	if len(fields) != 1 || fields[0].Name != "Name" {
		t.Errorf("extraction must survive a cache clear, got %+v", fields)
	}
}
