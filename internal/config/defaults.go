package config

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# relnotes configuration
# See 'relnotes config -h' for commands, 'relnotes config keys' for all options

# Changelog content
app_name: ""                          # Prefix for the version in the header
tag_prefix: ""                        # Only tags starting with this belong to the changelog (e.g. api-v)
scope: ""                             # Conventional-commit scope to report ("" = unscoped commits)
dependent_scopes: []                  # Scopes aggregated into scope unless marked Internal-commit
deploy_url: ""                        # Adds a "Deployed to" line when set

# Range and source
source: github                        # Where tags and commits come from: github | git
range_mode: tags                      # tags (latest two tags) | release (release_tag and its predecessor)
release_tag: ""                       # Release being published (default: pushed tag in Actions)
repo_path: .                          # Local repository for source: git

# Publishing
publish_mode: print                   # update | create | print
repository: ""                        # owner/name (default: GITHUB_REPOSITORY)
# token: ""                           # GitHub token (prefer GITHUB_TOKEN or RELNOTES_TOKEN)
page_size: 100                        # Items per page for GitHub list calls (1-100)
concurrency: 4                        # Parallel API calls (1-32)
api_url: ""                           # GitHub API root for Enterprise (empty = api.github.com)

# Linear issue sync (enabled when an API key is set)
# linear_api_key: ""                  # Prefer LINEAR_API_KEY
issue_pattern: '\b([A-Z][A-Z0-9]+-[0-9]+)\b'  # Issue identifiers in merged pull request bodies
done_state: Done                      # Workflow state issues move to
linear_url: ""                        # GraphQL endpoint override
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"app_name":         "",
		"tag_prefix":       "",
		"scope":            "",
		"dependent_scopes": []string{},
		"deploy_url":       "",
		// source: github reads tags and commits through the API; git reads a local checkout.
		"source":      SourceGitHub,
		"range_mode":  RangeTags,
		"release_tag": "",
		"repo_path":   ".",
		// publish_mode: print is the only mode that needs no credentials.
		"publish_mode": "print",
		"repository":   "",
		"token":        "",
		"page_size":    100, // GitHub's maximum per_page
		"concurrency":  4,
		"api_url":      "",
		// linear_api_key: empty disables issue sync.
		"linear_api_key": "",
		"issue_pattern":  `\b([A-Z][A-Z0-9]+-[0-9]+)\b`,
		"done_state":     "Done",
		"linear_url":     "",
	}
}
