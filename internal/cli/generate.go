package cli

import (
	"os"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/ariel-frischer/relnotes/internal/changelog"
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/progress"
	"github.com/ariel-frischer/relnotes/internal/publish"
)

type generateOptions struct {
	plain     bool
	dryRun    bool
	fetchTags bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the changelog for the latest release and publish it",
		Long: `Build the changelog for the configured range and publish it.

The range is the two newest tags carrying --tag-prefix (--range tags), or the
release for --release-tag and the release before it (--range release).
Commits are kept when they are feat or fix commits for --scope, or for one of
--dependent-scopes without an Internal-commit footer.

Publish modes:
  update  replace the body of the release for the newer tag
  create  create a release named after the newer tag
  print   write the Markdown to stdout

With a Linear API key, issues referenced by merged pull requests in the range
are moved to --done-state.`,
		Example: `  # Preview in the terminal
  relnotes generate

  # Update the GitHub release from a workflow triggered by a tag push
  relnotes generate --range release --publish update

  # Local checkout, raw Markdown
  relnotes generate --source git --plain > notes.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, root, opts)
		},
	}

	addConfigFlags(cmd)
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Print raw Markdown without terminal styling")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the notes without publishing or updating issues")
	cmd.Flags().BoolVar(&opts.fetchTags, "fetch-tags", false, "Fetch tags from origin first (--source git)")

	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	ctx := cmd.Context()

	cfg, err := root.loadConfig(cmd)
	if err != nil {
		return err
	}
	mode, err := publish.ParseMode(cfg.PublishMode)
	if err != nil {
		return clierrors.InvalidPublishMode(cfg.PublishMode)
	}
	if opts.dryRun {
		mode = publish.ModePrint
		cfg.PublishMode = string(mode)
		cfg.LinearAPIKey = ""
	}
	if err := cfg.ValidateForRun(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p, err := newPipeline(cfg, out, progressDisplay(root.env))
	if err != nil {
		return err
	}
	p.fetchTags = opts.fetchTags

	o, err := p.resolve(ctx)
	if err != nil {
		return err
	}

	if mode == publish.ModePrint && !opts.plain && isTerminal(out) {
		if err := changelog.FormatTerminal(o.Notes, out, changelog.FormatOptions{}); err != nil {
			return err
		}
	} else if err := p.publish(ctx, &o, mode); err != nil {
		return err
	}

	if err := p.syncIssues(ctx, &o); err != nil {
		return err
	}

	if root.env.getenv("GITHUB_OUTPUT") != "" {
		if err := setActionOutputs(newAction(root.env), actionOutputs(o)); err != nil {
			return err
		}
	}

	if o.Notes.IsEmpty() {
		pslog.Ctx(ctx).Warn("no changelog entries in range", "scope", cfg.Scope, "commits", len(o.Commits))
	}
	return nil
}

// progressDisplay shows step progress when stderr is a terminal.
func progressDisplay(env Env) *progress.Display {
	f, ok := env.Stderr.(*os.File)
	if !ok {
		return nil
	}
	return progress.NewDisplay(f, progress.DetectTerminalCapabilities(f, env.getenv))
}
