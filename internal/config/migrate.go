package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// MigrationResult describes one JSON to YAML conversion.
type MigrationResult struct {
	SourcePath string
	TargetPath string
	Success    bool
	DryRun     bool
	Message    string
	// Renamed maps legacy camelCase keys to the key they were written as.
	Renamed map[string]string
	// Dropped lists keys the schema does not know. They are not written.
	Dropped []string
}

const migratedHeader = "# relnotes configuration\n# Migrated from JSON format\n\n"

// MigrateJSONToYAML converts the legacy JSON config at jsonPath into a YAML
// file at yamlPath. Older configs used camelCase names (tagPrefix,
// linearApiKey) and a JSON array for dependentScopes; both are rewritten to
// the current keys. An existing YAML file is left untouched.
func MigrateJSONToYAML(jsonPath, yamlPath string, dryRun bool) (*MigrationResult, error) {
	result := &MigrationResult{
		SourcePath: jsonPath,
		TargetPath: yamlPath,
		DryRun:     dryRun,
		Renamed:    map[string]string{},
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			result.Message = fmt.Sprintf("No JSON config found at %s", jsonPath)
			return result, nil
		}
		return nil, fmt.Errorf("reading legacy config: %w", err)
	}

	var legacy map[string]any
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("parsing legacy config %s: %w", jsonPath, err)
	}

	if fileExists(yamlPath) {
		result.Message = fmt.Sprintf("YAML config already exists at %s (skipped)", yamlPath)
		return result, nil
	}

	values, err := normalizeLegacy(legacy, result)
	if err != nil {
		return nil, err
	}

	if dryRun {
		result.Success = true
		result.Message = fmt.Sprintf("Would migrate %s → %s (%d keys)", jsonPath, yamlPath, len(values))
		return result, nil
	}

	out, err := encodeOrdered(values)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(yamlPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(yamlPath, append([]byte(migratedHeader), out...), 0o644); err != nil {
		return nil, fmt.Errorf("writing YAML config: %w", err)
	}

	result.Success = true
	result.Message = fmt.Sprintf("Migrated %s → %s (%d keys)", jsonPath, yamlPath, len(values))
	return result, nil
}

// normalizeLegacy maps legacy keys onto the schema and converts values to
// the form the YAML loader expects.
func normalizeLegacy(legacy map[string]any, result *MigrationResult) (map[string]any, error) {
	values := make(map[string]any, len(legacy))
	for name, raw := range legacy {
		key := name
		if _, known := KnownKeys[key]; !known {
			key = toSnakeCase(name)
		}
		schema, known := KnownKeys[key]
		if !known {
			result.Dropped = append(result.Dropped, name)
			continue
		}
		if key != name {
			result.Renamed[name] = key
		}

		v, err := legacyValue(schema, raw)
		if err != nil {
			return nil, fmt.Errorf("migrating %s: %w", name, err)
		}
		values[key] = v
	}
	slices.Sort(result.Dropped)
	return values, nil
}

func legacyValue(schema ConfigKeySchema, raw any) (any, error) {
	switch schema.Type {
	case TypeList:
		switch v := raw.(type) {
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, strings.TrimSpace(fmt.Sprint(item)))
			}
			return strings.Join(parts, ","), nil
		case string:
			return v, nil
		}
	case TypeInt:
		// encoding/json decodes every number as float64
		if f, ok := raw.(float64); ok && f == float64(int(f)) {
			return int(f), nil
		}
	default:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("expected %s, got %T", schema.Type, raw)
}

// encodeOrdered writes values in schema order so migrated files diff cleanly.
func encodeOrdered(values map[string]any) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range SortedKeys() {
		v, ok := values[key]
		if !ok {
			continue
		}
		var val yaml.Node
		if err := val.Encode(v); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", key, err)
		}
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, &val)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding YAML config: %w", err)
	}
	return out, nil
}

// MigrateUserConfig migrates ~/.relnotes/config.json to the user YAML path.
func MigrateUserConfig(dryRun bool) (*MigrationResult, error) {
	jsonPath, err := LegacyUserConfigPath()
	if err != nil {
		return nil, fmt.Errorf("locating legacy user config: %w", err)
	}
	yamlPath, err := UserConfigPath()
	if err != nil {
		return nil, fmt.Errorf("locating user config: %w", err)
	}
	return MigrateJSONToYAML(jsonPath, yamlPath, dryRun)
}

// MigrateProjectConfig migrates .relnotes/config.json to .relnotes/config.yml.
func MigrateProjectConfig(dryRun bool) (*MigrationResult, error) {
	return MigrateJSONToYAML(LegacyProjectConfigPath(), ProjectConfigPath(), dryRun)
}

// RemoveLegacyConfig renames a migrated JSON config to <path>.bak.
func RemoveLegacyConfig(jsonPath string, dryRun bool) error {
	if dryRun || !fileExists(jsonPath) {
		return nil
	}
	if err := os.Rename(jsonPath, jsonPath+".bak"); err != nil {
		return fmt.Errorf("renaming legacy config: %w", err)
	}
	return nil
}
