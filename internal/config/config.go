// relnotes - Conventional-commit release notes for GitHub releases
// Author: Ariel Frischer
// Source: https://github.com/ariel-frischer/relnotes

// Package config provides layered configuration for relnotes using koanf.
// Priority, highest first: changed CLI flags > GitHub Action inputs (INPUT_*)
// > environment (RELNOTES_*) > project config (.relnotes/config.yml)
// > user config (~/.config/relnotes/config.yml) > defaults. Well-known CI
// variables (GITHUB_TOKEN, GITHUB_REPOSITORY, GITHUB_REF_NAME, LINEAR_API_KEY)
// fill keys no layer set.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
	SourceAction  ConfigSource = "action"
	SourceCI      ConfigSource = "ci"
	SourceFlag    ConfigSource = "flag"
)

// Source values for the commit source.
const (
	SourceGitHub = "github"
	SourceGit    = "git"
)

// Range modes.
const (
	RangeTags    = "tags"
	RangeRelease = "release"
)

// Configuration represents the relnotes configuration
type Configuration struct {
	// Token authenticates GitHub API calls. Falls back to GITHUB_TOKEN.
	Token string `koanf:"token"`
	// Repository is "owner/name". Falls back to GITHUB_REPOSITORY.
	Repository string `koanf:"repository" validate:"omitempty,contains=/"`
	// AppName prefixes the version in the changelog header.
	AppName string `koanf:"app_name"`
	// TagPrefix selects which tags belong to this changelog (e.g. "api-v").
	TagPrefix string `koanf:"tag_prefix"`
	// Scope is the conventional-commit scope to report. Empty keeps unscoped commits.
	Scope string `koanf:"scope"`
	// DependentScopes are aggregated into Scope. Comma-separated in env and flags.
	DependentScopes []string `koanf:"dependent_scopes"`

	// Source is where tags and commits come from: github | git
	Source string `koanf:"source" validate:"oneof=github git"`
	// RangeMode picks the range: tags (latest two tags) | release (release_tag and its predecessor)
	RangeMode string `koanf:"range_mode" validate:"oneof=tags release"`
	// ReleaseTag is the release being published. Falls back to the pushed tag in Actions.
	ReleaseTag string `koanf:"release_tag"`
	// PublishMode: update | create | print
	PublishMode string `koanf:"publish_mode" validate:"oneof=update create print"`
	// DeployURL adds a "Deployed to" line when set.
	DeployURL string `koanf:"deploy_url" validate:"omitempty,url"`

	// LinearAPIKey enables issue sync. Falls back to LINEAR_API_KEY.
	LinearAPIKey string `koanf:"linear_api_key"`
	// IssuePattern finds issue identifiers in pull request bodies.
	IssuePattern string `koanf:"issue_pattern" validate:"required"`
	// DoneState is the workflow state name issues move to.
	DoneState string `koanf:"done_state" validate:"required"`

	RepoPath    string `koanf:"repo_path"`
	PageSize    int    `koanf:"page_size" validate:"min=1,max=100"`
	Concurrency int    `koanf:"concurrency" validate:"min=1,max=32"`
	APIURL      string `koanf:"api_url" validate:"omitempty,url"`
	LinearURL   string `koanf:"linear_url" validate:"omitempty,url"`

	sources map[string]ConfigSource
}

// KeySource reports which layer set key.
func (c *Configuration) KeySource(key string) ConfigSource {
	if s, ok := c.sources[key]; ok {
		return s
	}
	return SourceDefault
}

// IssueSyncEnabled reports whether Linear issues should be updated.
func (c *Configuration) IssueSyncEnabled() bool {
	return c.LinearAPIKey != ""
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .relnotes/config.yml)
	ProjectConfigPath string
	// UserConfigPath overrides the user config path (default: ~/.config/relnotes/config.yml)
	UserConfigPath string
	// Overrides are applied last, keyed by config key. The CLI passes changed flags here.
	Overrides map[string]any
	// Getenv replaces os.Getenv for CI fallbacks (tests).
	Getenv func(string) string
	// WarningWriter receives deprecation warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses deprecation warnings
	SkipWarnings bool
}

// Load loads configuration from user, project, and environment sources.
//
// YAML config paths:
//   - User config: ~/.config/relnotes/config.yml (XDG compliant)
//   - Project config: .relnotes/config.yml
//
// Legacy JSON config paths (deprecated, triggers migration warning):
//   - User config: ~/.relnotes/config.json
//   - Project config: .relnotes/config.json
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	l := &loader{
		k:             koanf.New("."),
		sources:       make(map[string]ConfigSource),
		warningWriter: getWarningWriter(opts.WarningWriter),
		skipWarnings:  opts.SkipWarnings,
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	loadDefaults(l.k)

	if err := l.loadUserConfig(opts.UserConfigPath); err != nil {
		return nil, err
	}
	if err := l.loadProjectConfig(opts.ProjectConfigPath); err != nil {
		return nil, err
	}
	if err := l.loadEnvironmentConfig(); err != nil {
		return nil, err
	}
	if err := l.loadActionInputs(); err != nil {
		return nil, err
	}
	l.applyCIFallbacks(getenv)
	l.applyOverrides(opts.Overrides)

	return l.finalize()
}

// loader accumulates layers and records which layer set each key.
type loader struct {
	k             *koanf.Koanf
	sources       map[string]ConfigSource
	warningWriter io.Writer
	skipWarnings  bool
}

// merge loads a layer into its own koanf instance, records its keys and
// merges it over the accumulated configuration.
func (l *loader) merge(src ConfigSource, p koanf.Provider, parser koanf.Parser) error {
	layer := koanf.New(".")
	if err := layer.Load(p, parser); err != nil {
		return err
	}
	for _, key := range layer.Keys() {
		l.sources[key] = src
	}
	return l.k.Merge(layer)
}

// set assigns a single key from a layer.
func (l *loader) set(src ConfigSource, key string, value any) {
	_ = l.k.Set(key, value)
	l.sources[key] = src
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		_ = k.Set(key, value)
	}
}

// loadUserConfig loads user-level config (YAML preferred, legacy JSON supported).
func (l *loader) loadUserConfig(customPath string) error {
	userYAMLPath := customPath
	legacyUserPath := ""
	if userYAMLPath == "" {
		userYAMLPath, _ = UserConfigPath()
		legacyUserPath, _ = LegacyUserConfigPath()
	}

	userYAMLExists := fileExists(userYAMLPath)
	legacyUserExists := fileExists(legacyUserPath)

	if userYAMLExists {
		if err := l.loadYAMLConfig(userYAMLPath, SourceUser); err != nil {
			return fmt.Errorf("loading user YAML config: %w", err)
		}
		l.warnLegacyExists(legacyUserPath, userYAMLPath, legacyUserExists, "--user")
	} else if legacyUserExists {
		if err := l.loadLegacyJSONConfig(legacyUserPath, SourceUser, "--user"); err != nil {
			return fmt.Errorf("loading legacy user JSON config: %w", err)
		}
	}
	return nil
}

// loadProjectConfig loads project-level config (YAML preferred, legacy JSON supported).
// Same priority/warning logic as loadUserConfig.
func (l *loader) loadProjectConfig(customPath string) error {
	projectYAMLPath := ProjectConfigPath()
	if customPath != "" {
		projectYAMLPath = customPath
	}
	legacyProjectPath := LegacyProjectConfigPath()

	projectYAMLExists := fileExists(projectYAMLPath)
	legacyProjectExists := fileExists(legacyProjectPath)

	if projectYAMLExists {
		if err := l.loadYAMLConfig(projectYAMLPath, SourceProject); err != nil {
			return fmt.Errorf("loading project YAML config: %w", err)
		}
		l.warnLegacyExists(legacyProjectPath, projectYAMLPath, legacyProjectExists, "--project")
	} else if legacyProjectExists {
		if err := l.loadLegacyJSONConfig(legacyProjectPath, SourceProject, "--project"); err != nil {
			return fmt.Errorf("loading legacy project JSON config: %w", err)
		}
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func (l *loader) loadYAMLConfig(path string, src ConfigSource) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", src, err)
	}
	if err := l.merge(src, file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", src, path, err)
	}
	return nil
}

// loadLegacyJSONConfig loads legacy JSON and warns about migration
func (l *loader) loadLegacyJSONConfig(path string, src ConfigSource, migrateFlag string) error {
	if err := l.merge(src, file.Provider(path), json.Parser()); err != nil {
		return fmt.Errorf("failed to load legacy %s config %s: %w", src, path, err)
	}
	if !l.skipWarnings {
		fmt.Fprintf(l.warningWriter, "Warning: Using deprecated JSON config at %s\n", path)
		fmt.Fprintf(l.warningWriter, "  Run 'relnotes config migrate %s' to migrate to YAML format.\n\n", migrateFlag)
	}
	return nil
}

// warnLegacyExists warns if legacy JSON exists alongside new YAML
func (l *loader) warnLegacyExists(legacyPath, yamlPath string, legacyExists bool, migrateFlag string) {
	if legacyExists && !l.skipWarnings {
		fmt.Fprintf(l.warningWriter, "Warning: Legacy JSON config found at %s (ignored, using %s)\n", legacyPath, yamlPath)
		fmt.Fprintf(l.warningWriter, "  Run 'relnotes config migrate %s' to remove the legacy file.\n\n", migrateFlag)
	}
}

// loadEnvironmentConfig loads RELNOTES_* overrides
func (l *loader) loadEnvironmentConfig() error {
	if err := l.merge(SourceEnv, env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// loadActionInputs loads GitHub Action inputs. Actions exposes an input
// "app-name" as INPUT_APP-NAME and exports declared inputs even when they are
// empty; unknown and blank inputs are ignored so lower layers keep their value.
func (l *loader) loadActionInputs() error {
	p := env.ProviderWithValue(ActionInputPrefix, ".", func(name, value string) (string, any) {
		if strings.TrimSpace(value) == "" {
			return "", nil
		}
		return actionInputTransform(name), value
	})
	if err := l.merge(SourceAction, p, nil); err != nil {
		return fmt.Errorf("failed to load action inputs: %w", err)
	}
	return nil
}

// applyCIFallbacks fills unset keys from well-known CI variables.
func (l *loader) applyCIFallbacks(getenv func(string) string) {
	fallback := func(key string, names ...string) {
		if l.k.String(key) != "" {
			return
		}
		for _, name := range names {
			if v := strings.TrimSpace(getenv(name)); v != "" {
				l.set(SourceCI, key, v)
				return
			}
		}
	}

	fallback("token", "GITHUB_TOKEN", "GH_TOKEN")
	fallback("repository", "GITHUB_REPOSITORY")
	fallback("linear_api_key", "LINEAR_API_KEY")

	if l.k.String("release_tag") == "" {
		if tag := PushedTag(getenv); tag != "" {
			l.set(SourceCI, "release_tag", tag)
		}
	}
}

// PushedTag returns the tag a CI run was triggered for, or "".
func PushedTag(getenv func(string) string) string {
	if ref := getenv("GITHUB_REF"); strings.HasPrefix(ref, "refs/tags/") {
		return strings.TrimPrefix(ref, "refs/tags/")
	}
	if getenv("GITHUB_REF_TYPE") == "tag" {
		return getenv("GITHUB_REF_NAME")
	}
	return ""
}

// applyOverrides applies explicitly set values, usually changed CLI flags.
func (l *loader) applyOverrides(overrides map[string]any) {
	for key, value := range overrides {
		l.set(SourceFlag, key, value)
	}
}

// finalize unmarshals, normalizes and validates the merged configuration
func (l *loader) finalize() (*Configuration, error) {
	var cfg Configuration
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.sources = l.sources

	cfg.DependentScopes = normalizeList(cfg.DependentScopes)
	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))
	cfg.RangeMode = strings.ToLower(strings.TrimSpace(cfg.RangeMode))
	cfg.PublishMode = strings.ToLower(strings.TrimSpace(cfg.PublishMode))
	cfg.RepoPath = expandHomePath(cfg.RepoPath)

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// normalizeList splits comma-joined entries, trims them and drops blanks.
func normalizeList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// EnvPrefix is the prefix of relnotes environment variables.
const EnvPrefix = "RELNOTES_"

// ActionInputPrefix is the prefix GitHub Actions gives action inputs.
const ActionInputPrefix = "INPUT_"

// envTransform converts environment variable names to config keys,
// returning "" for names that are not configuration keys.
// Example: RELNOTES_TAG_PREFIX -> tag_prefix
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if _, ok := KnownKeys[key]; !ok {
		return ""
	}
	return key
}

// actionInputTransform converts INPUT_* names to config keys, returning ""
// for inputs that are not configuration keys.
// Example: INPUT_APP-NAME -> app_name, INPUT_GITHUB-TOKEN -> token
func actionInputTransform(s string) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, ActionInputPrefix)), "-", "_")
	if alias, ok := inputAliases[key]; ok {
		key = alias
	}
	if _, ok := KnownKeys[key]; !ok {
		return ""
	}
	return key
}

// inputAliases maps conventional action input names to config keys.
var inputAliases = map[string]string{
	"github_token": "token",
	"repo":         "repository",
	"app":          "app_name",
	"linear_key":   "linear_api_key",
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
