package cmd

import (
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	"github.com/Devenc042/MyZeDeDup/lang"
	"github.com/Devenc042/MyZeDeDup/log"
)

// Engine holds the flags that configure script compilation and execution.
type Engine struct {
	Locale      string `help:"BCP 47 locale for numbers and dates in output (e.g. de-DE)." placeholder:"TAG"`
	DateLayout  string `default:"02-01-2006" help:"Go time layout used to print dates."`
	Precision   int    `default:"0"          help:"Fraction digits for floats (0 for shortest)."`
	StrictArity bool   `help:"Fail when argument count differs from declared parameters."`
	MaxSteps    int64  `default:"0"          help:"Abort a script after this many steps (0 for no limit)."`
	MaxDepth    int    `default:"200"        help:"Maximum expression nesting depth."`
	Cache       bool   `default:"true"       help:"Reuse parsed scripts with identical source." negatable:""`
}

// Build returns an engine configured by the flags.
func (c Engine) Build(logger log.Logger) (*lang.Engine, error) {
	format := lang.DefaultFormat()
	format.Precision = c.Precision

	if c.DateLayout != "" {
		format.DateLayout = c.DateLayout
	}

	if tag := strings.TrimSpace(c.Locale); tag != "" {
		t, err := language.Parse(tag)
		if err != nil {
			return nil, ErrInvalidLocale.With(slog.String("locale", tag)).Wrap(err)
		}

		format.Locale = t
	}

	return lang.New(
		lang.WithLogger(logger),
		lang.WithFormat(format),
		lang.WithStrictArity(c.StrictArity),
		lang.WithMaxSteps(c.MaxSteps),
		lang.WithMaxDepth(c.MaxDepth),
		lang.WithCache(c.Cache),
	), nil
}
