package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// sectionComments are written above each top-level section of a generated
// config file.
var sectionComments = map[string]string{
	"logging": "Logging\n  level: DEBUG, INFO, WARN, ERROR\n  format: text or json\n  output: stdout, stderr or a file path",
	"codec": "Payload codec limits\n  max_attributes: media element attributes per item (<= 255)\n" +
		"  max_text_length: element attribute and setting text bytes (<= 65535)\n" +
		"  utf8_policy: strict rejects invalid UTF-8, permissive passes bytes through\n" +
		"  allow_trailing_bytes: accept unread bytes after the last item",
	"capture": "Capture store for inspected payloads\n  type: memory or badger (only the matching section is used)\n" +
		"  prune: delete captures older than max_age while ingesting (any store type)",
	"inspector": "Ingest path\n  rate_limit: payloads per second (0 = unlimited)\n  capture_mode: all, failures or none",
	"archive":   "S3 archive for captures (AWS, MinIO, Localstack)\n  credentials fall back to the default AWS chain when not set",
	"metrics":   "Prometheus endpoint (/metrics)",
}

// InitConfig writes a default configuration file to the default location.
//
// Parameters:
//   - force: Overwrite an existing file
//
// Returns:
//   - string: Path of the written file
//   - error: If the file exists and force is false, or on write failure
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a default configuration file to path, creating
// parent directories as needed.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content, err := generateYAMLWithComments(GetDefaultConfig())
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// generateYAMLWithComments renders cfg as YAML with a header and a comment
// above each top-level section.
func generateYAMLWithComments(cfg *Config) (string, error) {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	// doc is a mapping node: keys and values alternate
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i]
		if comment, ok := sectionComments[key.Value]; ok {
			key.HeadComment = comment
		}
	}

	var buf bytes.Buffer
	buf.WriteString("# avrcpbrowse Configuration File\n")
	buf.WriteString("#\n")
	buf.WriteString("# Every key can be overridden with an AVRCPBROWSE_* environment variable,\n")
	buf.WriteString("# e.g. AVRCPBROWSE_LOGGING_LEVEL=DEBUG.\n\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	return buf.String(), nil
}
