package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/toejough/argot/internal/core"
)

type appConfig struct {
	Host string   `argot:"optional"`
	Port int      `argot:"optional"`
	Tags []string `argot:"optional"`
}

func loadInto(t *testing.T, target any, source core.ConfigSource) {
	t.Helper()

	value := reflect.ValueOf(target).Elem()

	collection, err := core.NewCollectionForType(value.Type(), value, core.Parameter{})
	if err != nil {
		t.Fatalf("building collection: %v", err)
	}

	if err := source(collection); err != nil {
		t.Fatalf("feeding config: %v", err)
	}

	if err := collection.Convert(); err != nil {
		t.Fatalf("convert: %v", err)
	}

	if err := core.BindStruct(collection, reflect.ValueOf(target)); err != nil {
		t.Fatalf("bind: %v", err)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}

	return path
}

func TestFileLoadsEachFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	files := map[string]string{
		"app.toml": "host = \"example.com\"\nport = 8080\ntags = [\"a\", \"b\"]\n",
		"app.yaml": "host: example.com\nport: 8080\ntags: [a, b]\n",
		"app.json": `{"host": "example.com", "port": 8080, "tags": ["a", "b"]}`,
	}

	want := appConfig{Host: "example.com", Port: 8080, Tags: []string{"a", "b"}}

	for name, content := range files {
		path := writeFile(t, dir, name, content)

		var got appConfig

		loadInto(t, &got, File(path, Options{}))

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestFileFeedsNestedTables(t *testing.T) {
	t.Parallel()

	type server struct {
		Host string `argot:"optional"`
		Port int    `argot:"optional"`
	}

	type target struct {
		Server server `argot:"optional"`
	}

	path := writeFile(t, t.TempDir(), "app.toml",
		"[server]\nhost = \"deep.example.com\"\nport = 9090\n")

	var got target

	loadInto(t, &got, File(path, Options{}))

	want := target{Server: server{Host: "deep.example.com", Port: 9090}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("nested table mismatch (-want +got):\n%s", diff)
	}
}

func TestFileDescendsRootKeys(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "shared.toml",
		"[tool.app]\nhost = \"sectioned\"\n\n[tool.other]\nhost = \"wrong\"\n")

	var got appConfig

	loadInto(t, &got, File(path, Options{RootKeys: []string{"tool", "app"}}))

	if got.Host != "sectioned" {
		t.Errorf("host = %q, want the program's own section", got.Host)
	}

	// A file without the section contributes nothing.
	var missing appConfig

	loadInto(t, &missing, File(path, Options{RootKeys: []string{"tool", "absent"}}))

	if missing.Host != "" {
		t.Errorf("missing section must be a no-op, got %q", missing.Host)
	}
}

func TestFileMissingIsOptionalByDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "absent.toml")

	var got appConfig

	loadInto(t, &got, File(path, Options{}))

	if got.Host != "" {
		t.Errorf("absent file must contribute nothing, got %+v", got)
	}

	collection, err := core.NewCollectionForType(
		reflect.TypeFor[appConfig](), reflect.Value{}, core.Parameter{})
	if err != nil {
		t.Fatalf("building collection: %v", err)
	}

	if err := File(path, Options{MustExist: true})(collection); err == nil {
		t.Error("MustExist should surface the missing file")
	}
}

func TestFileSearchesParentDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "app.toml", "host = \"from-root\"\n")

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	var got appConfig

	loadInto(t, &got, File(filepath.Join(nested, "app.toml"), Options{SearchParents: true}))

	if got.Host != "from-root" {
		t.Errorf("host = %q, want the ancestor's file found", got.Host)
	}
}

func TestFileRejectsUnknownExtensions(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "app.ini", "host=nope\n")

	collection, err := core.NewCollectionForType(
		reflect.TypeFor[appConfig](), reflect.Value{}, core.Parameter{})
	if err != nil {
		t.Fatalf("building collection: %v", err)
	}

	err = File(path, Options{})(collection)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected the unsupported-format error, got %v", err)
	}
}

func TestFileUnknownKeys(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "app.toml", "host = \"x\"\nbogus = 1\n")

	collection, err := core.NewCollectionForType(
		reflect.TypeFor[appConfig](), reflect.Value{}, core.Parameter{})
	if err != nil {
		t.Fatalf("building collection: %v", err)
	}

	if err := File(path, Options{})(collection); !errors.Is(err, core.ErrUnknownOption) {
		t.Errorf("strict mode must reject stray keys, got %v", err)
	}

	var got appConfig

	loadInto(t, &got, File(path, Options{AllowUnknown: true}))

	if got.Host != "x" {
		t.Errorf("known keys still apply when strays are allowed, got %+v", got)
	}
}

func TestGlobFeedsMatchesInOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "01.toml", "host = \"first\"\n")
	writeFile(t, dir, "02.toml", "host = \"second\"\nport = 7\n")

	var got appConfig

	loadInto(t, &got, Glob(filepath.Join(dir, "*.toml"), Options{}))

	// Earlier matches win per key; later files only fill gaps.
	want := appConfig{Host: "first", Port: 7}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("glob precedence mismatch (-want +got):\n%s", diff)
	}
}
