package help

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/toejough/argot/internal/core"
)

type serveArgs struct {
	Source  string        `argot:"positional"`
	Files   []string      `argot:"rest"`
	Verbose int           `argot:"flag,short=v,count,optional,desc=Increase logging detail"`
	Timeout time.Duration `argot:"optional,default=30s,env=APP_TIMEOUT"`
}

func buildCollection(t *testing.T, target any) *core.ArgumentCollection {
	t.Helper()

	value := reflect.ValueOf(target)

	collection, err := core.NewCollectionForType(value.Type(), value, core.Parameter{})
	if err != nil {
		t.Fatalf("building collection: %v", err)
	}

	return collection
}

func TestBuildPageAssemblesUsageAndGroups(t *testing.T) {
	t.Parallel()

	collection := buildCollection(t, serveArgs{})

	page := BuildPage("serve", "Serve files over HTTP.", collection)

	if page.Usage != "Usage: serve [options] <source> [<files>]..." {
		t.Errorf("usage = %q", page.Usage)
	}

	want := []Group{
		{
			Title: "Arguments",
			Entries: []Entry{
				{Names: "<source>", Placeholder: "<text>", Annotations: []string{"required"}},
				{Names: "<files>", Placeholder: "<text>..."},
			},
		},
		{
			Title: "Parameters",
			Entries: []Entry{
				{Names: "-v, --verbose", Help: "Increase logging detail", Annotations: []string{"default: 0"}},
				{
					Names:       "--timeout",
					Placeholder: "<duration>",
					Annotations: []string{"env: APP_TIMEOUT", "default: 30s"},
				},
			},
		},
	}

	if diff := cmp.Diff(want, page.Groups); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildPageShowsOnlyLeaves(t *testing.T) {
	t.Parallel()

	type server struct {
		Host string
		Port int
	}

	type target struct {
		Config server `argot:"flag"`
	}

	collection := buildCollection(t, target{})

	page := BuildPage("app", "", collection)

	var names []string
	for _, group := range page.Groups {
		for _, entry := range group.Entries {
			names = append(names, entry.Names)
		}
	}

	want := []string{"--config.host", "--config.port"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("structured parents must be represented by their fields (-want +got):\n%s", diff)
	}
}

func TestBuildPageHidesHiddenParameters(t *testing.T) {
	t.Parallel()

	type target struct {
		Shown  bool `argot:"optional"`
		Secret bool `argot:"optional,hidden"`
	}

	collection := buildCollection(t, target{})

	page := BuildPage("app", "", collection)

	for _, group := range page.Groups {
		for _, entry := range group.Entries {
			if strings.Contains(entry.Names, "secret") {
				t.Errorf("hidden parameter surfaced: %q", entry.Names)
			}
		}
	}
}

func TestPlaceholderShapes(t *testing.T) {
	t.Parallel()

	type target struct {
		Flag   bool              `argot:"optional"`
		Name   string            `argot:"optional"`
		Port   int               `argot:"optional"`
		Ratio  float64           `argot:"optional"`
		Labels map[string]string `argot:"optional"`
		Mode   string            `argot:"optional,enum=fast|slow"`
		Out    core.Path         `argot:"optional"`
	}

	collection := buildCollection(t, target{})

	wantByName := map[string]string{
		"--flag":   "",
		"--name":   "<text>",
		"--port":   "<int>",
		"--ratio":  "<float>",
		"--labels": "<key=value>...",
		"--mode":   "<fast|slow>",
		"--out":    "<path>",
	}

	page := BuildPage("app", "", collection)

	seen := 0

	for _, group := range page.Groups {
		for _, entry := range group.Entries {
			name := strings.Split(entry.Names, ",")[0]

			want, ok := wantByName[name]
			if !ok {
				continue
			}

			seen++

			if entry.Placeholder != want {
				t.Errorf("%s placeholder = %q, want %q", name, entry.Placeholder, want)
			}
		}
	}

	if seen != len(wantByName) {
		t.Errorf("only %d of %d parameters surfaced", seen, len(wantByName))
	}
}

func TestRenderAlignsColumns(t *testing.T) {
	t.Parallel()

	page := Page{
		Command:     "cp",
		Description: "Copy things.",
		Usage:       "Usage: cp [options] <src>",
		Groups: []Group{{
			Title: "Parameters",
			Entries: []Entry{
				{Names: "-f, --force", Help: "Overwrite.", Annotations: []string{"default: false"}},
				{Names: "--timeout", Placeholder: "<duration>"},
			},
		}},
	}

	var b strings.Builder

	// Zero-value styles render plain text, keeping the layout assertable.
	if err := Render(&b, page, Styles{}); err != nil {
		t.Fatalf("render: %v", err)
	}

	want := strings.Join([]string{
		"Copy things.",
		"",
		"Usage: cp [options] <src>",
		"",
		"Parameters:",
		"  -f, --force           Overwrite. [default: false]",
		"  --timeout <duration>",
		"",
	}, "\n")

	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Errorf("render mismatch (-want +got):\n%s", diff)
	}
}
