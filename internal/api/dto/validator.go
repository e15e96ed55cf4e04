package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	apperrors "github.com/campuslane/learning-service/pkg/util"
)

const validationFailedMessage = "Validation failed"

// Validator checks request payloads and renders failures with English messages keyed by JSON field.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewValidator builds a validator with English translations and JSON tag names.
func NewValidator() (*Validator, error) {
	validate := validator.New()
	english := en.New()
	translator, found := ut.New(english, english).GetTranslator("en")
	if !found {
		return nil, errors.New("validator: english translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, fmt.Errorf("validator: register translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	v := &Validator{validate: validate, translator: translator}
	if err := v.registerTranslation("required", "{0} is required", true); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate returns a VALIDATION_FAILED DomainError listing each invalid field.
func (v *Validator) Validate(payload any) error {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(validationFailedMessage, nil)
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := details[fe.Field()]; !seen {
			details[fe.Field()] = fe.Translate(v.translator)
		}
	}
	return apperrors.NewValidationError(validationFailedMessage, map[string]any{"errors": details})
}

func (v *Validator) registerTranslation(tag, text string, override bool) error {
	err := v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, err := t.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return s
		},
	)
	if err != nil {
		return fmt.Errorf("validator: register %q translation: %w", tag, err)
	}
	return nil
}
