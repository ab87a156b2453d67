// Package configutil reads json5 configuration files together with their local overrides.
package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// LocalName returns the name of the override file of `name`, "config.json5" becomes
// "config.local.json5".
func LocalName(name string) string {
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s.local%s", strings.TrimSuffix(name, ext), ext)
}

// readFile decodes `path` on top of `into`, keys missing from the file keep their value while
// keys present in it win even when they hold a zero value.
func readFile[T any](path string, into T) (T, bool, error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(contents) == 0) {
		return into, false, nil
	}
	if err != nil {
		return into, false, err
	}
	err = json5.Unmarshal(contents, &into)
	if err != nil {
		return into, false, fmt.Errorf("%s: %w", path, err)
	}
	return into, true, nil
}

// ReadInto merges the file `name` and then its local override (see LocalName) on top of `base`.
// Every key present in a file replaces the value in `base`, including explicit zeros such as
// `""`, `0` or `false`, keys absent from both files keep the value of `base`.
//
// os.ErrNotExist is returned if neither file exists, `base` is left untouched in that case.
func ReadInto[T any](name string, base *T) error {
	found := false
	for _, path := range []string{name, LocalName(name)} {
		layer, ok, err := readFile(path, *base)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		err = mergo.Merge(base, layer, mergo.WithOverride, mergo.WithOverwriteWithEmptyValue)
		if err != nil {
			return fmt.Errorf("merge %s: %w", path, err)
		}
		if found {
			slog.Info("merging config with local overrides", "local", path)
		}
		found = true
	}
	if !found {
		return os.ErrNotExist
	}
	return nil
}

// ReadConfig is ReadInto over a zero value.
func ReadConfig[T any](name string) (T, error) {
	var out T
	err := ReadInto(name, &out)
	return out, err
}

// ReadRecursively is ReadConfig but it walks up from the working directory until the root to
// find a directory that contains a file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var out T
	current, err := os.Getwd()
	if err != nil {
		return out, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return out, err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return out, os.ErrNotExist
		}
		current = parent
	}
}
