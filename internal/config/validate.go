package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ValidationError is a configuration problem located by file and either a
// line/column or a config key.
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	Field    string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// ValidateYAMLSyntax checks a YAML config file before koanf loads it.
// Beyond syntax it checks that the document is a mapping of known keys and
// that each value has the shape its key expects, reporting the line and
// column of the offending node. A missing or empty file is valid.
func ValidateYAMLSyntax(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		msg := err.Error()
		if os.IsPermission(err) {
			msg = "permission denied"
		}
		return &ValidationError{FilePath: filePath, Message: msg}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		line, column := extractLineColumn(err.Error())
		return &ValidationError{
			FilePath: filePath,
			Line:     line,
			Column:   column,
			Message:  cleanYAMLError(err.Error()),
		}
	}
	if len(doc.Content) == 0 {
		return nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nodeError(filePath, root, "", "top level must be a mapping of config keys")
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		schema, err := GetKeySchema(key.Value)
		if err != nil {
			return nodeError(filePath, key, key.Value, "unknown key (run 'relnotes config keys' for the list)")
		}
		if msg := checkNodeShape(schema, value); msg != "" {
			return nodeError(filePath, value, key.Value, msg)
		}
	}
	return nil
}

// checkNodeShape returns a message when value cannot hold a schema value.
func checkNodeShape(schema ConfigKeySchema, value *yaml.Node) string {
	switch {
	case schema.Type == TypeList && (value.Kind == yaml.SequenceNode || value.Kind == yaml.ScalarNode):
		return ""
	case value.Kind != yaml.ScalarNode:
		return fmt.Sprintf("expected a single %s value", schema.Type)
	case schema.Type == TypeInt && value.Tag != "!!int":
		return fmt.Sprintf("expected an integer, got %q", value.Value)
	}
	return ""
}

func nodeError(filePath string, n *yaml.Node, field, msg string) *ValidationError {
	return &ValidationError{
		FilePath: filePath,
		Line:     n.Line,
		Column:   n.Column,
		Field:    field,
		Message:  msg,
	}
}

// ValidateConfigValues validates configuration values against expected types and constraints.
// Returns nil if valid, or a ValidationError with field information if invalid.
func ValidateConfigValues(cfg *Configuration, filePath string) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fieldErr := range validationErrors {
				return &ValidationError{
					FilePath: filePath,
					Field:    fieldKey(fieldErr.Field()),
					Message:  formatValidationError(fieldErr),
				}
			}
		}
		return &ValidationError{
			FilePath: filePath,
			Message:  err.Error(),
		}
	}

	if _, err := regexp.Compile(cfg.IssuePattern); err != nil {
		return &ValidationError{
			FilePath: filePath,
			Field:    "issue_pattern",
			Message:  "is not a valid regular expression: " + err.Error(),
		}
	}

	return nil
}

// NeedsGitHub reports whether cfg talks to the GitHub API at all.
func (c *Configuration) NeedsGitHub() bool {
	return c.Source == SourceGitHub ||
		c.PublishMode != "print" ||
		c.RangeMode == RangeRelease ||
		c.IssueSyncEnabled()
}

// ValidateForRun checks the cross-field requirements of a changelog run.
// Load does not enforce them so that inspection commands work with an
// incomplete configuration.
func (c *Configuration) ValidateForRun() error {
	if c.NeedsGitHub() {
		if c.Repository == "" {
			return &ValidationError{
				FilePath: "config",
				Field:    "repository",
				Message:  "is required (set RELNOTES_REPOSITORY or run inside GitHub Actions)",
			}
		}
		if c.Token == "" {
			return &ValidationError{
				FilePath: "config",
				Field:    "token",
				Message:  "is required to call the GitHub API (set GITHUB_TOKEN or RELNOTES_TOKEN)",
			}
		}
	}
	if c.RangeMode == RangeRelease && c.ReleaseTag == "" {
		return &ValidationError{
			FilePath: "config",
			Field:    "release_tag",
			Message:  "is required when range_mode is release",
		}
	}
	return nil
}

// extractLineColumn reads the position from a yaml.v3 syntax error such as
// "yaml: line 5: could not find expected ':'". It returns 0, 0 when absent.
func extractLineColumn(errMsg string) (line, column int) {
	var l, c int
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d: column %d:", &l, &c); n == 2 {
		return l, c
	}
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d:", &l); n == 1 {
		return l, 1
	}
	return 0, 0
}

// cleanYAMLError strips the "yaml: line X:" prefix.
func cleanYAMLError(errMsg string) string {
	if !strings.HasPrefix(errMsg, "yaml:") {
		return errMsg
	}
	if idx := strings.LastIndex(errMsg, ": "); idx > 0 {
		return errMsg[idx+2:]
	}
	return errMsg
}

// formatValidationError formats a validation error for a specific field.
func formatValidationError(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fieldErr.Param(), " ", ", "))
	case "url":
		return "must be a URL"
	case "contains":
		return fmt.Sprintf("must contain %q", fieldErr.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fieldErr.Tag())
	}
}

// fieldKey maps a struct field name to its config key.
func fieldKey(field string) string {
	if f, ok := reflect.TypeOf(Configuration{}).FieldByName(field); ok {
		if tag := f.Tag.Get("koanf"); tag != "" {
			return tag
		}
	}
	return toSnakeCase(field)
}

// toSnakeCase converts a CamelCase field name to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
