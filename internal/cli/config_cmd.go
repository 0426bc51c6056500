package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/relnotes/internal/config"
)

var (
	cGreen  = color.New(color.FgGreen).SprintFunc()
	cYellow = color.New(color.FgYellow).SprintFunc()
	cDim    = color.New(color.Faint).SprintFunc()
	cBold   = color.New(color.Bold).SprintFunc()
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage relnotes configuration",
		Long: `Inspect and manage relnotes configuration.

Configuration is loaded with the following priority (highest to lowest):
  1. Command-line flags
  2. GitHub Action inputs (INPUT_*)
  3. Environment variables (RELNOTES_*)
  4. Project config (.relnotes/config.yml)
  5. User config (~/.config/relnotes/config.yml)
  6. Built-in defaults

GITHUB_TOKEN, GITHUB_REPOSITORY, GITHUB_REF_NAME and LINEAR_API_KEY fill
keys that no layer sets.`,
		Example: `  # Show the effective configuration and where each value came from
  relnotes config show

  # Write a commented project config
  relnotes config init`,
	}

	cmd.AddCommand(
		newConfigShowCmd(root),
		newConfigPathCmd(root),
		newConfigKeysCmd(),
		newConfigInitCmd(root),
		newConfigMigrateCmd(),
	)
	return cmd
}

// shownValue is one row of config show.
type shownValue struct {
	Value  string              `json:"value"`
	Source config.ConfigSource `json:"source"`
}

func newConfigShowCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  "Show every configuration key, its effective value and the layer that set it. Secrets are masked.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}

			values := make(map[string]shownValue, len(config.KnownKeys))
			for _, key := range config.SortedKeys() {
				v, err := cfg.Value(key)
				if err != nil {
					return err
				}
				values[key] = shownValue{Value: v, Source: cfg.KeySource(key)}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(values)
			}
			return printConfigTable(out, values)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func printConfigTable(out io.Writer, values map[string]shownValue) error {
	fmt.Fprintln(out, cBold("Configuration Sources"))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, key := range config.SortedKeys() {
		v := values[key]
		value := v.Value
		if value == "" {
			value = cDim("(unset)")
		}
		source := cDim(string(v.Source))
		if v.Source != config.SourceDefault {
			source = cYellow(string(v.Source))
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", key, value, source)
	}
	return tw.Flush()
}

func newConfigPathCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userPath, err := config.UserConfigPath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:    %s%s\n", userPath, existsMarker(userPath))
			projectPath := root.projectConfigPath()
			fmt.Fprintf(out, "project: %s%s\n", projectPath, existsMarker(projectPath))
			return nil
		},
	}
}

func existsMarker(path string) string {
	if _, err := os.Stat(path); err != nil {
		return " " + cDim("(not found)")
	}
	return ""
}

func newConfigKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List configuration keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, key := range config.SortedKeys() {
				schema := config.KnownKeys[key]
				kind := schema.Type.String()
				if len(schema.AllowedValues) > 0 {
					kind = strings.Join(schema.AllowedValues, "|")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", key, kind, schema.Description)
			}
			return tw.Flush()
		},
	}
}

func newConfigInitCmd(root *rootOptions) *cobra.Command {
	var user, force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented config file",
		Long: `Write a commented config file with every key and its default.

By default the project config (.relnotes/config.yml) is written. Use --user
for the user config. An existing file is left unchanged unless --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := root.projectConfigPath()
			if user {
				p, err := config.UserConfigPath()
				if err != nil {
					return err
				}
				path = p
			}

			out := cmd.OutOrStdout()
			if _, err := os.Stat(path); err == nil && !force {
				fmt.Fprintf(out, "%s %s already exists (use --force to overwrite)\n", cYellow("!"), path)
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("creating config directory: %w", err)
			}
			if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			fmt.Fprintf(out, "%s Created %s\n", cGreen("✓"), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&user, "user", false, "Write the user config instead of the project config")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigMigrateCmd() *cobra.Command {
	var user, dryRun, removeLegacy bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Convert a legacy JSON config to YAML",
		Long: `Convert .relnotes/config.json (or ~/.relnotes/config.json with --user)
to the YAML config location. An existing YAML file is never overwritten.
With --remove-legacy the JSON file is renamed to config.json.bak.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			migrate := config.MigrateProjectConfig
			if user {
				migrate = config.MigrateUserConfig
			}
			result, err := migrate(dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !result.Success {
				fmt.Fprintln(out, result.Message)
				return nil
			}
			fmt.Fprintf(out, "%s %s\n", cGreen("✓"), result.Message)
			for _, old := range slices.Sorted(maps.Keys(result.Renamed)) {
				fmt.Fprintf(out, "  %s → %s\n", old, result.Renamed[old])
			}
			for _, key := range result.Dropped {
				fmt.Fprintf(out, "  %s %s (unknown key, not migrated)\n", cYellow("!"), key)
			}
			if removeLegacy {
				if err := config.RemoveLegacyConfig(result.SourcePath, dryRun); err != nil {
					return err
				}
				if !dryRun {
					fmt.Fprintf(out, "%s Renamed %s to %s.bak\n", cGreen("✓"), result.SourcePath, result.SourcePath)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&user, "user", false, "Migrate the user config instead of the project config")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().BoolVar(&removeLegacy, "remove-legacy", false, "Rename the JSON file after migrating")
	return cmd
}
