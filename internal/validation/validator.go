package validation

import (
	"errors"
	"reflect"
	"strings"

	"essay-hub/internal/domain"
	"essay-hub/internal/util"

	"github.com/go-playground/validator/v10"
)

// Validator turns validator/v10 struct tags into domain.ValidationErrors.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their json (or form/query) names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("ulid", func(fl validator.FieldLevel) bool {
		return util.IsULID(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Struct returns nil when s passes every rule.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewInvalidInputError(err.Error())
	}

	out := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, toValidationError(fe))
	}
	return out
}

// ID validates a path identifier.
func (v *Validator) ID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError(field)}
	}
	if !util.IsULID(value) {
		return domain.ValidationErrors{domain.NewInvalidFormatError(field, value)}
	}
	return nil
}

func toValidationError(fe validator.FieldError) domain.ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return domain.NewMissingFieldError(field)
	case "min":
		return domain.ValidationError{Field: field, Code: domain.CodeOutOfRange, Message: "must be at least " + fe.Param() + " long"}
	case "max":
		return domain.ValidationError{Field: field, Code: domain.CodeOutOfRange, Message: "must be at most " + fe.Param() + " long"}
	case "oneof":
		return domain.ValidationError{Field: field, Code: domain.CodeInvalidFormat, Message: "must be one of: " + fe.Param()}
	default:
		return domain.NewInvalidFormatError(field, fe.Value())
	}
}
