package validation

import (
	"fmt"
	"net/mail"
	"strings"

	errors "github.com/frahmantamala/backoffice/internal"
)

const (
	PasswordMinLength     = 8
	CategoryNameMinLength = 3
	NameMaxLength         = 255
)

type ValidatorFunc func(interface{}) *errors.ValidationError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) fail(key, message string, params ...any) *errors.ValidationError {
	return &errors.ValidationError{
		Field:      fv.FieldName,
		MessageKey: key,
		Params:     params,
		Message:    message,
		Code:       string(errors.ErrCodeValidationFailed),
	}
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		missing := false
		switch v := value.(type) {
		case string:
			missing = strings.TrimSpace(v) == ""
		case int64:
			missing = v == 0
		case *string:
			missing = v == nil || strings.TrimSpace(*v) == ""
		case nil:
			missing = true
		}
		if missing {
			return fv.fail(errors.MsgFieldMustBeFilled, fmt.Sprintf("%s is required", fv.FieldName), fv.FieldName)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		if v, ok := stringValue(value); ok && len([]rune(v)) < min {
			return fv.fail(errors.MsgFieldMinLength, fmt.Sprintf("%s must be at least %d characters", fv.FieldName, min), fv.FieldName, min)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		if v, ok := stringValue(value); ok && len([]rune(v)) > max {
			return fv.fail(errors.MsgFieldMaxLength, fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max), fv.FieldName, max)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		v, ok := stringValue(value)
		if !ok {
			return nil
		}
		addr, err := mail.ParseAddress(v)
		if err != nil || addr.Address != strings.TrimSpace(v) {
			return fv.fail(errors.MsgEmailFormatError, "email must be a valid email address")
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator ValidatorFunc) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

// Validate runs every field and reports the first failure of each one.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			if err := validator(field.Value); err != nil {
				validationErrors = append(validationErrors, *err)
				break
			}
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError(errors.MsgValidationError, errors.ErrCodeValidationFailed, "Validation failed").
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}

func ValidateCredentials(email, password string) *errors.AppError {
	validator := NewValidator()
	validator.Field("email", email).Required().Email()
	validator.Field("password", password).Required()
	return validator.Validate()
}

func ValidatePassword(password string) *errors.AppError {
	validator := NewValidator()
	validator.Field("password", password).
		Required().
		Custom(func(value interface{}) *errors.ValidationError {
			if len(value.(string)) < PasswordMinLength {
				return &errors.ValidationError{
					Field:      "password",
					MessageKey: errors.MsgPasswordLengthError,
					Params:     []any{PasswordMinLength - 1},
					Message:    fmt.Sprintf("password must be at least %d characters", PasswordMinLength),
					Code:       string(errors.ErrCodePasswordTooShort),
				}
			}
			return nil
		})
	return validator.Validate()
}

func ValidateCategoryName(name string) *errors.AppError {
	validator := NewValidator()
	validator.Field("name", name).
		Required().
		MinLength(CategoryNameMinLength).
		MaxLength(NameMaxLength)
	return validator.Validate()
}
