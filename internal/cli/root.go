// Package cli implements the relnotes command line: the cobra command tree,
// logger setup, error reporting and exit codes.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"pkt.systems/pslog"

	"github.com/ariel-frischer/relnotes/internal/config"
	"github.com/ariel-frischer/relnotes/internal/conventional"
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/git"
	"github.com/ariel-frischer/relnotes/internal/github"
	"github.com/ariel-frischer/relnotes/internal/release"
)

// Command groups for help output.
const (
	GroupChangelog = "changelog"
	GroupConfig    = "config"
)

// Env is the process environment a command runs against.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	// Getenv reads CI variables. Defaults to os.Getenv.
	Getenv func(string) string
}

func (e Env) getenv(key string) string {
	if e.Getenv == nil {
		return os.Getenv(key)
	}
	return e.Getenv(key)
}

// rootOptions holds global flags and state shared by subcommands.
type rootOptions struct {
	env        Env
	configPath string
	debug      bool

	// cfg is the configuration of the current run, once loaded.
	cfg *config.Configuration
}

// Execute runs relnotes with the process arguments and returns the exit code.
func Execute(ctx context.Context) int {
	return Run(ctx, os.Args[1:], Env{Stdout: os.Stdout, Stderr: os.Stderr, Getenv: os.Getenv})
}

// Run executes args and returns the exit code. Errors are printed to
// env.Stderr and, inside GitHub Actions, annotated on env.Stdout.
func Run(ctx context.Context, args []string, env Env) int {
	root, opts := newRootCmd(env)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	cliErr := classify(err, opts.cfg)
	clierrors.FprintError(env.Stderr, cliErr)
	if env.getenv("GITHUB_ACTIONS") == "true" {
		annotateFailure(newAction(env), cliErr)
	}
	return exitCodeFor(cliErr.Category)
}

func newRootCmd(env Env) (*cobra.Command, *rootOptions) {
	opts := &rootOptions{env: env}

	root := &cobra.Command{
		Use:   "relnotes",
		Short: "Release notes from conventional commits",
		Long: `relnotes builds a changelog from the conventional commits between two
release tags, then updates or creates the GitHub release for the newer tag
or prints the notes. With a Linear API key it also moves the issues
referenced by the released pull requests to Done.`,
		Example: `  # Preview the notes for the two latest tags
  relnotes generate

  # Publish notes for the api package into the release being created
  relnotes generate --tag-prefix api-v --scope api --publish update

  # Show the range that would be used
  relnotes range`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetContext(opts.withLogger(cmd.Context()))
			return nil
		},
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)
	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), c.UseLine(), "Run '"+c.CommandPath()+" --help' for usage")
	})

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Project config file (default .relnotes/config.yml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Log every API call and classification decision")

	root.AddGroup(
		&cobra.Group{ID: GroupChangelog, Title: "Changelog Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	for _, cmd := range []*cobra.Command{newGenerateCmd(opts), newRangeCmd(opts)} {
		cmd.GroupID = GroupChangelog
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{newConfigCmd(opts), newVersionCmd()} {
		cmd.GroupID = GroupConfig
		root.AddCommand(cmd)
	}

	return root, opts
}

// withLogger attaches a pslog logger writing to stderr to ctx.
func (o *rootOptions) withLogger(ctx context.Context) context.Context {
	level := pslog.InfoLevel
	if o.debug {
		level = pslog.DebugLevel
	}
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(o.env.Stderr),
		pslog.WithEnvOptions(pslog.Options{
			Mode:     pslog.ModeConsole,
			MinLevel: level,
			NoColor:  !isTerminal(o.env.Stderr),
		}),
	)
	if o.debug {
		bindDebugLoggers(logger)
	}
	return pslog.ContextWithLogger(ctx, logger)
}

// bindDebugLoggers routes the packages' printf-style debug hooks to logger.
func bindDebugLoggers(logger pslog.Logger) {
	debugf := func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	}
	release.SetDebugLogger(debugf)
	github.SetDebugLogger(debugf)
	git.SetDebugLogger(debugf)
	conventional.SetDebugLogger(debugf)
}

// loadConfig loads the configuration for cmd, applying its changed flags.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ProjectConfigPath: o.configPath,
		Overrides:         changedOverrides(cmd),
		Getenv:            o.env.getenv,
		WarningWriter:     o.env.Stderr,
	})
	if err != nil {
		return nil, err
	}
	o.cfg = cfg
	return cfg, nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// projectConfigPath is --config, or the default project config path.
func (o *rootOptions) projectConfigPath() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.ProjectConfigPath()
}
