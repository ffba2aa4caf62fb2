package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	gxyaml "github.com/expectation-labs/gxctl/internal/yaml"
)

// SettingError reports a settings value that failed validation.
type SettingError struct {
	Source  string
	Field   string
	Message string
}

func (e *SettingError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Source, e.Message)
	}
	return fmt.Sprintf("%s: %s %s", e.Source, e.Field, e.Message)
}

var settingsValidator = newSettingsValidator()

// newSettingsValidator reports fields by their koanf key so messages match
// what users write in config.yml.
func newSettingsValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkSyntax fails on a user config that is not well-formed YAML. An empty
// file is fine.
func checkSyntax(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if verr := gxyaml.ValidateBytes(data, path); verr != nil {
		return verr
	}
	return nil
}

// validateSettings checks the merged settings; source names where they came
// from in the error.
func validateSettings(cfg *Configuration, source string) error {
	if err := settingsValidator.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return &SettingError{Source: source, Message: err.Error()}
		}
		fe := fieldErrs[0]
		return &SettingError{Source: source, Field: settingKey(fe), Message: describe(fe)}
	}

	if cfg.Datasource.ProbeTimeout <= 0 {
		return &SettingError{Source: source, Field: "datasource.probe_timeout", Message: "must be a positive duration (e.g. 10s)"}
	}
	return nil
}

// settingKey turns "Configuration.profiler.max_columns" into "profiler.max_columns".
func settingKey(fe validator.FieldError) string {
	_, key, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return key
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "excludesall":
		return "must not contain path separators"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
