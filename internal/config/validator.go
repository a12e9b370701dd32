package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/docsentry/docsentry/internal/types"
)

// Validator validates configuration values.
type Validator interface {
	Validate(cfg *Config) error
}

// validatorImpl implements Validator using go-playground/validator.
type validatorImpl struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator instance.
func NewValidator() Validator {
	return &validatorImpl{validate: validator.New()}
}

// Validate checks struct tags first, then the cross-field rules the tags
// cannot express.
func (v *validatorImpl) Validate(cfg *Config) error {
	if cfg == nil {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "configuration is nil")
	}

	if err := v.validate.Struct(cfg); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return types.WrapError(types.CONFIG_VALIDATION_FAILED, "validation error", err)
		}

		var messages []string
		for _, e := range validationErrs {
			messages = append(messages, formatValidationError(e))
		}
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(messages, "\n  - ")))
	}

	if cfg.Docs.Provider == "mcp" && cfg.Docs.Endpoint == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			"docs.endpoint is required when docs.provider is \"mcp\"")
	}

	if cfg.Core.PhraseTemplate != "" && !strings.Contains(cfg.Core.PhraseTemplate, "{subject}") {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			"core.phrase_template must contain the {subject} placeholder")
	}

	return nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Namespace())
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Namespace(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", e.Namespace(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Namespace(), e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", e.Namespace(), e.Tag())
	}
}
