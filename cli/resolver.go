package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/Devenc042/MyZeDeDup/pkg"
)

// resolve is a [kong.ConfigurationLoader] for YAML configuration files, as
// written by the init command:
//
//	log-level: debug
//	locale: de-DE
//	max-depth: 100
//
// Keys are flag names; underscores may stand in for hyphens. Command-line
// flags override configuration values. An empty file is an empty
// configuration.
func resolve(r io.Reader) (kong.Resolver, error) {
	var values map[string]any

	err := yaml.NewDecoder(r).Decode(&values)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, pkg.ErrYAMLUnmarshal.Wrap(err)
	}

	c := make(config, len(values))
	for key, value := range values {
		c[strings.ReplaceAll(key, "_", "-")] = scalar(value)
	}

	return c, nil
}

// config implements [kong.Resolver] over decoded YAML values keyed by flag
// name.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. Unknown flags resolve to nil so kong
// falls back to their defaults.
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	return c[flag.Name], nil
}

// scalar converts decoded YAML numbers to strings, which kong parses with
// the flag's own mapper. Sequences are converted element-wise.
func scalar(v any) any {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = scalar(e)
		}

		return out
	case map[string]any:
		return fmt.Sprint(x)
	}

	return v
}
