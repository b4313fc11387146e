package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for complex rules
// that cannot be expressed in tags.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	switch cfg.Inspector.CaptureMode {
	case "all", "failures", "none":
	default:
		return fmt.Errorf("inspector.capture_mode: must be one of all, failures, none (got %q)", cfg.Inspector.CaptureMode)
	}

	if cfg.Inspector.MaxPayloadBytes < 0 {
		return fmt.Errorf("inspector.max_payload_bytes: must be >= 0")
	}

	// The badger store needs a directory unless it runs in memory
	if cfg.Capture.Type == "badger" {
		path, _ := cfg.Capture.Badger["db_path"].(string)
		inMemory, _ := cfg.Capture.Badger["in_memory"].(bool)
		if path == "" && !inMemory {
			return fmt.Errorf("capture.badger: db_path is required unless in_memory is true")
		}
	}

	if cfg.Capture.Prune.MaxAge <= 0 {
		return fmt.Errorf("capture.prune.max_age: must be > 0")
	}

	// Archive needs a bucket and region to be usable
	if cfg.Archive.Enabled {
		for _, key := range []string{"bucket", "region"} {
			if s, _ := cfg.Archive.S3[key].(string); s == "" {
				return fmt.Errorf("archive.s3.%s: required when archive is enabled", key)
			}
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		// Return the first validation error with context
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
