// Package config feeds configuration-file values into argument
// collections, as the lowest-precedence token source.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/toejough/argot/internal/core"
)

// Exported variables.
var (
	// ErrUnsupportedFormat marks a config file extension with no loader.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// Options control how a file feeds a collection.
type Options struct {
	// RootKeys descends into a nested table before applying values, so
	// one shared file can hold sections for several programs.
	RootKeys []string

	// MustExist errors when the file is absent instead of skipping it.
	MustExist bool

	// SearchParents walks up the directory tree looking for a file of the
	// same name when the given path does not exist.
	SearchParents bool

	// AllowUnknown ignores keys that match no argument.
	AllowUnknown bool
}

// File returns a source reading one configuration file. The format
// follows the extension: .toml, .yaml, .yml, or .json.
func File(path string, opts Options) core.ConfigSource {
	return func(collection *core.ArgumentCollection) error {
		resolved, err := resolvePath(path, opts.SearchParents)
		if err != nil {
			if !opts.MustExist && errors.Is(err, fs.ErrNotExist) {
				return nil
			}

			return err
		}

		data, err := loadFile(resolved)
		if err != nil {
			return err
		}

		data = descend(data, opts.RootKeys)
		if data == nil {
			return nil
		}

		return collection.UpdateFromMap(data, core.SourceConfig, opts.AllowUnknown)
	}
}

// resolvePath finds the file, optionally walking up parent directories
// for one with the same base name.
func resolvePath(path string, searchParents bool) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if !searchParents {
		return "", fmt.Errorf("%w: %s", fs.ErrNotExist, path)
	}

	name := filepath.Base(path)

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}

	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: %s", fs.ErrNotExist, path)
		}

		dir = parent

		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
}

func loadFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var out map[string]any

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(raw, &out)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &out)
	case ".json":
		// Numbers stay textual so integer literals survive untouched.
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.UseNumber()
		err = decoder.Decode(&out)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return normalizeTree(out), nil
}

// descend follows root keys into nested tables. A missing key yields nil,
// meaning the file has no section for this program.
func descend(data map[string]any, rootKeys []string) map[string]any {
	for _, key := range rootKeys {
		next, ok := data[key].(map[string]any)
		if !ok {
			return nil
		}

		data = next
	}

	return data
}

// normalizeTree rewrites any-keyed maps to string keys so every loader
// yields the same shape.
func normalizeTree(data map[string]any) map[string]any {
	for key, value := range data {
		data[key] = normalizeValue(value)
	}

	return data
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return normalizeTree(v)
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[fmt.Sprint(key)] = normalizeValue(inner)
		}

		return out
	case []any:
		for i, inner := range v {
			v[i] = normalizeValue(inner)
		}

		return v
	default:
		return value
	}
}
