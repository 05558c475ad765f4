package core

import (
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnvVarSplit(t *testing.T) {
	t.Parallel()

	t.Run("non-iterable targets never split", func(t *testing.T) {
		t.Parallel()

		got := EnvVarSplit(reflect.TypeFor[string](), "a b c", "")
		if diff := cmp.Diff([]string{"a b c"}, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("iterables split on whitespace by default", func(t *testing.T) {
		t.Parallel()

		got := EnvVarSplit(reflect.TypeFor[[]string](), "a  b\tc", "")
		if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("explicit delimiter wins", func(t *testing.T) {
		t.Parallel()

		got := EnvVarSplit(reflect.TypeFor[[]int](), "1,2,3", ",")
		if diff := cmp.Diff([]string{"1", "2", "3"}, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("path iterables split on the path-list separator", func(t *testing.T) {
		t.Parallel()

		raw := strings.Join([]string{"/usr/bin", "/usr/local/bin"}, string(os.PathListSeparator))

		got := EnvVarSplit(reflect.TypeFor[[]Path](), raw, "")
		if diff := cmp.Diff([]string{"/usr/bin", "/usr/local/bin"}, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})
}
