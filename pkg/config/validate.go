package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// structValidator checks the tag-level constraints on the configuration
// structs. Field names in errors come from the yaml tags so messages
// match what operators actually write.
var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	// Tag-level constraints
	if err := structValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, FieldError{
				Field:   fieldPath(fe.Namespace()),
				Message: fieldMessage(fe),
			})
		}
	}

	// The engine section is validated by the engine package so the
	// YAML shape and the runtime checks cannot drift.
	if err := cfg.Engine.ToEngine().Validate(); err != nil {
		errs = append(errs, FieldError{
			Field:   "engine",
			Message: err.Error(),
		})
	}

	errs = append(errs, validateCrossSection(cfg)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateCrossSection checks constraints that span configuration
// sections.
func validateCrossSection(cfg *Config) []FieldError {
	var errs []FieldError

	// A handler cut off before the engine finishes would drop the
	// fail-closed response on the floor.
	if cfg.Server.RequestTimeout > 0 && cfg.Server.RequestTimeout < cfg.Engine.EvaluationTimeout {
		errs = append(errs, FieldError{
			Field:   "server.request_timeout",
			Message: "must be at least engine.evaluation_timeout",
		})
	}

	// Pruning attempts the frequency or cooldown rules still count
	// against would silently loosen both rules.
	if days := cfg.Sources.History.Retention.Days; days > 0 {
		retention := time.Duration(days) * 24 * time.Hour
		if retention < cfg.Engine.FrequencyWindow {
			errs = append(errs, FieldError{
				Field:   "sources.history.retention.days",
				Message: "retention must cover engine.frequency_window",
			})
		}
		if retention < cfg.Engine.CooldownWindow {
			errs = append(errs, FieldError{
				Field:   "sources.history.retention.days",
				Message: "retention must cover engine.cooldown_window",
			})
		}
	}

	return errs
}

// fieldPath strips the root struct name from a validator namespace,
// leaving the dotted yaml path.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// fieldMessage renders a validator error as a short operator-facing
// message.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
