package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/toejough/argot/internal/core"
)

// Glob returns a source feeding every file matching the pattern, in
// lexical order. Patterns use doublestar syntax, so **/ recurses. Earlier
// matches win: later files cannot override arguments already fed.
func Glob(pattern string, opts Options) core.ConfigSource {
	return func(collection *core.ArgumentCollection) error {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return fmt.Errorf("config glob %q: %w", pattern, err)
		}

		for _, match := range matches {
			fileOpts := opts
			fileOpts.MustExist = true
			fileOpts.SearchParents = false

			if err := File(match, fileOpts)(collection); err != nil {
				return err
			}
		}

		return nil
	}
}
