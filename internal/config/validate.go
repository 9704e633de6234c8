package config

import (
	"errors"
	"strings"

	"github.com/thoreinstein/postmatter/internal/paths"
)

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidExtension indicates an extension without a leading dot.
	ErrInvalidExtension = errors.New("extension must start with '.'")

	// ErrInvalidFormat indicates an unsupported default_format.
	ErrInvalidFormat = errors.New("default_format must be yaml or toml")

	// ErrNegativeLimit indicates a length limit below zero.
	ErrNegativeLimit = errors.New("limit must be >= 0")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	}

	if err := paths.ValidatePath(cfg.ContentDir); err != nil {
		errs = append(errs, &FieldError{Field: "content_dir", Value: cfg.ContentDir, Err: ErrInvalidPath})
	}

	if cfg.DefaultLayout != "" {
		if err := paths.ValidatePath(cfg.DefaultLayout); err != nil {
			errs = append(errs, &FieldError{Field: "default_layout", Value: cfg.DefaultLayout, Err: ErrInvalidPath})
		}
	}

	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, &FieldError{Field: "extensions", Value: ext, Err: ErrInvalidExtension})
		}
	}
	for _, ext := range cfg.LayoutExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, &FieldError{Field: "layout_extensions", Value: ext, Err: ErrInvalidExtension})
		}
	}

	switch cfg.DefaultFormat {
	case FormatYAML, FormatTOML, "":
	default:
		errs = append(errs, &FieldError{Field: "default_format", Value: cfg.DefaultFormat, Err: ErrInvalidFormat})
	}

	if cfg.MaxTitleLength < 0 {
		errs = append(errs, &FieldError{Field: "max_title_length", Err: ErrNegativeLimit})
	}
	if cfg.MaxDescriptionLength < 0 {
		errs = append(errs, &FieldError{Field: "max_description_length", Err: ErrNegativeLimit})
	}

	return errs
}

// FieldError represents an error for a specific configuration field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return e.Field + ": " + e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
