package cli

import (
	"context"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/Devenc042/MyZeDeDup/cli/cmd"
	"github.com/Devenc042/MyZeDeDup/log"
	"github.com/Devenc042/MyZeDeDup/pkg"
)

// CLI is the top-level command-line interface for zedup.
type CLI struct {
	Log    logConfig   `embed:"" group:"log"    prefix:"log-"`
	Pprof  pprofConfig `embed:"" group:"pprof"  prefix:"pprof-"`
	Engine cmd.Engine  `embed:"" group:"engine"`

	Eval    cmd.Eval    `cmd:"" default:"withargs" help:"Run a script with bindings and arguments."`
	Merge   cmd.Merge   `cmd:""                    help:"Merge record pairs with a script."`
	Check   cmd.Check   `cmd:""                    help:"Compile a script and report syntax errors."`
	Fmt     cmd.Fmt     `cmd:""                    help:"Print a script in canonical form."`
	Repl    cmd.Repl    `cmd:""                    help:"Start an interactive session."`
	Init    cmd.Init    `cmd:""                    help:"Write the configuration file from current flag values."`
	Version cmd.Version `cmd:""                    help:"Print the version."`
}

func engineGroup() kong.Group {
	return kong.Group{Key: "engine", Title: "Script engine options"}
}

// Run executes the zedup CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before parsing so that parse errors are
	// reported in the requested format.
	cli.Log.scan(args)

	groups := append([]kong.Group{cli.Log.group(), engineGroup()}, cli.Pprof.groups()...)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(groups),
		kong.DefaultEnvars(strings.ToUpper(pkg.Prefix())),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cli.Log.start(ctx)

	logger := log.Default()

	eng, err := cli.Engine.Build(logger)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithEngine(ctx, eng)
	ctx = cmd.WithLogger(ctx, logger)

	// No-op unless built with tag pprof and a mode was selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx)
}
