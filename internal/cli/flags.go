package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ariel-frischer/relnotes/internal/conventional"
)

// configFlag binds a command-line flag to a configuration key.
type configFlag struct {
	name   string
	key    string
	usage  string
	isInt  bool
	isList bool
}

// configFlags are the flags shared by commands that run the pipeline.
// Only flags the user changed override the loaded configuration.
var configFlags = []configFlag{
	{name: "repository", key: "repository", usage: "Repository as owner/name"},
	{name: "app-name", key: "app_name", usage: "Application name shown before the version"},
	{name: "tag-prefix", key: "tag_prefix", usage: "Only tags starting with this prefix are compared"},
	{name: "scope", key: "scope", usage: "Conventional-commit scope to report"},
	{name: "dependent-scopes", key: "dependent_scopes", usage: "Comma-separated scopes aggregated into --scope", isList: true},
	{name: "source", key: "source", usage: "Where tags and commits come from: github | git"},
	{name: "range", key: "range_mode", usage: "Range selection: tags | release"},
	{name: "release-tag", key: "release_tag", usage: "Tag of the release being published"},
	{name: "publish", key: "publish_mode", usage: "Publish mode: update | create | print"},
	{name: "deploy-url", key: "deploy_url", usage: "Adds a \"Deployed to\" line"},
	{name: "repo-path", key: "repo_path", usage: "Local repository for --source git"},
	{name: "issue-pattern", key: "issue_pattern", usage: "Regular expression for issue identifiers"},
	{name: "done-state", key: "done_state", usage: "Workflow state referenced issues move to"},
	{name: "api-url", key: "api_url", usage: "GitHub API root (GitHub Enterprise)"},
	{name: "page-size", key: "page_size", usage: "Items per page for GitHub list calls", isInt: true},
	{name: "concurrency", key: "concurrency", usage: "Maximum parallel API calls", isInt: true},
}

// addConfigFlags registers configFlags on cmd.
func addConfigFlags(cmd *cobra.Command) {
	for _, f := range configFlags {
		if f.isInt {
			cmd.Flags().Int(f.name, 0, f.usage)
		} else {
			cmd.Flags().String(f.name, "", f.usage)
		}
	}
}

// changedOverrides returns the config overrides for flags set on cmd.
func changedOverrides(cmd *cobra.Command) map[string]any {
	overrides := make(map[string]any)
	for _, f := range configFlags {
		flag := cmd.Flags().Lookup(f.name)
		if flag == nil || !flag.Changed {
			continue
		}
		overrides[f.key] = flagValue(cmd.Flags(), f)
	}
	return overrides
}

func flagValue(fs *pflag.FlagSet, f configFlag) any {
	if f.isInt {
		v, _ := fs.GetInt(f.name)
		return v
	}
	v, _ := fs.GetString(f.name)
	if f.isList {
		return conventional.ParseScopes(v)
	}
	return v
}
