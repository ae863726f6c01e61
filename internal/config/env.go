package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvNotionAPIKey    = "NOTION_API_KEY"
	EnvDeploymentsDBID = "DEPLOYMENTS_DB_ID"
	EnvTasksDBID       = "TASKS_DB_ID"
	EnvServicesDBID    = "SERVICES_DB_ID"
	EnvGitHubToken     = "GITHUB_TOKEN"
)

// ParseDotEnv parses KEY=VALUE lines. Blank lines and # comments are
// skipped, an optional "export " prefix is accepted and double-quoted
// values are unquoted.
func ParseDotEnv(content string) (map[string]string, error) {
	env := make(map[string]string)
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: missing '='", i+1)
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if key == "" {
			return nil, fmt.Errorf("line %d: empty key", i+1)
		}

		switch {
		case strings.HasPrefix(val, "\""):
			unquoted, err := strconv.Unquote(val)
			if err != nil {
				return nil, fmt.Errorf("line %d: failed to unquote %s: %w", i+1, key, err)
			}
			val = unquoted
		case strings.HasPrefix(val, "'"):
			if len(val) < 2 || !strings.HasSuffix(val, "'") {
				return nil, fmt.Errorf("line %d: unbalanced single quotes in %s", i+1, key)
			}
			val = val[1 : len(val)-1]
		default:
			if idx := strings.Index(val, " #"); idx >= 0 {
				val = strings.TrimSpace(val[:idx])
			}
		}
		env[key] = val
	}
	return env, nil
}

// LoadDotEnv reads a .env file and exports its values into the process
// environment. Variables that are already set keep their value. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	env, err := ParseDotEnv(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for k, v := range env {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}

// SetDotEnvValue sets key in the .env file at path, preserving other lines.
func SetDotEnvValue(path, key, value string) error {
	var lines []string
	if data, err := os.ReadFile(path); err == nil {
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	entry := key + "=" + strconv.Quote(value)
	replaced := false
	for i, line := range lines {
		k, _, ok := strings.Cut(strings.TrimPrefix(strings.TrimSpace(line), "export "), "=")
		if ok && strings.TrimSpace(k) == key {
			lines[i] = entry
			replaced = true
		}
	}
	if !replaced {
		lines = append(lines, entry)
	}
	return writeFileAtomic(path, []byte(strings.Join(lines, "\n")+"\n"), 0600)
}
