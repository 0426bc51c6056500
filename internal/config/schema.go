package config

import (
	"slices"
	"strconv"
	"strings"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeString ConfigValueType = iota
	TypeInt
	TypeEnum
	TypeList
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeEnum:
		return "enum"
	case TypeList:
		return "list"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type.
type ConfigKeySchema struct {
	Path          string          // Key name (e.g., "tag_prefix")
	Type          ConfigValueType // Expected value type
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
	Secret        bool            // Masked when displayed
}

// KnownKeys is the registry of all known configuration keys with their schemas.
var KnownKeys = map[string]ConfigKeySchema{
	"token": {
		Path:        "token",
		Type:        TypeString,
		Description: "GitHub token (falls back to GITHUB_TOKEN)",
		Secret:      true,
	},
	"repository": {
		Path:        "repository",
		Type:        TypeString,
		Description: "Repository as owner/name (falls back to GITHUB_REPOSITORY)",
	},
	"app_name": {
		Path:        "app_name",
		Type:        TypeString,
		Description: "Application name shown before the version",
	},
	"tag_prefix": {
		Path:        "tag_prefix",
		Type:        TypeString,
		Description: "Prefix selecting the tags of this changelog",
	},
	"scope": {
		Path:        "scope",
		Type:        TypeString,
		Description: "Conventional-commit scope to report",
	},
	"dependent_scopes": {
		Path:        "dependent_scopes",
		Type:        TypeList,
		Description: "Scopes aggregated into scope (comma-separated)",
	},
	"source": {
		Path:          "source",
		Type:          TypeEnum,
		AllowedValues: []string{SourceGitHub, SourceGit},
		Description:   "Where tags and commits are read from",
	},
	"range_mode": {
		Path:          "range_mode",
		Type:          TypeEnum,
		AllowedValues: []string{RangeTags, RangeRelease},
		Description:   "How the commit range is chosen",
	},
	"release_tag": {
		Path:        "release_tag",
		Type:        TypeString,
		Description: "Tag of the release being published (falls back to the pushed tag)",
	},
	"publish_mode": {
		Path:          "publish_mode",
		Type:          TypeEnum,
		AllowedValues: []string{"update", "create", "print"},
		Description:   "Where the changelog goes",
	},
	"deploy_url": {
		Path:        "deploy_url",
		Type:        TypeString,
		Description: "URL for the \"Deployed to\" line",
	},
	"linear_api_key": {
		Path:        "linear_api_key",
		Type:        TypeString,
		Description: "Linear API key; enables issue sync (falls back to LINEAR_API_KEY)",
		Secret:      true,
	},
	"issue_pattern": {
		Path:        "issue_pattern",
		Type:        TypeString,
		Description: "Regular expression for issue identifiers in pull request bodies",
	},
	"done_state": {
		Path:        "done_state",
		Type:        TypeString,
		Description: "Workflow state referenced issues move to",
	},
	"repo_path": {
		Path:        "repo_path",
		Type:        TypeString,
		Description: "Local repository path for source git",
	},
	"page_size": {
		Path:        "page_size",
		Type:        TypeInt,
		Description: "Items per page for GitHub list calls (1-100)",
	},
	"concurrency": {
		Path:        "concurrency",
		Type:        TypeInt,
		Description: "Maximum parallel API calls (1-32)",
	},
	"api_url": {
		Path:        "api_url",
		Type:        TypeString,
		Description: "GitHub API root (GitHub Enterprise)",
	},
	"linear_url": {
		Path:        "linear_url",
		Type:        TypeString,
		Description: "Linear GraphQL endpoint",
	},
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// SortedKeys returns the known keys in alphabetical order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for k := range KnownKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Value returns the display form of key in c. Secrets are masked.
func (c *Configuration) Value(key string) (string, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return "", err
	}

	var v string
	switch key {
	case "token":
		v = c.Token
	case "repository":
		v = c.Repository
	case "app_name":
		v = c.AppName
	case "tag_prefix":
		v = c.TagPrefix
	case "scope":
		v = c.Scope
	case "dependent_scopes":
		v = strings.Join(c.DependentScopes, ",")
	case "source":
		v = c.Source
	case "range_mode":
		v = c.RangeMode
	case "release_tag":
		v = c.ReleaseTag
	case "publish_mode":
		v = c.PublishMode
	case "deploy_url":
		v = c.DeployURL
	case "linear_api_key":
		v = c.LinearAPIKey
	case "issue_pattern":
		v = c.IssuePattern
	case "done_state":
		v = c.DoneState
	case "repo_path":
		v = c.RepoPath
	case "page_size":
		v = strconv.Itoa(c.PageSize)
	case "concurrency":
		v = strconv.Itoa(c.Concurrency)
	case "api_url":
		v = c.APIURL
	case "linear_url":
		v = c.LinearURL
	}

	if schema.Secret && v != "" {
		return maskSecret(v), nil
	}
	return v, nil
}

// maskSecret keeps the last four characters of long secrets.
func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
