package middleware

import (
	"essay-hub/internal/domain"
	"essay-hub/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware(v *validation.Validator) *ValidationMiddleware {
	if v == nil {
		v = validation.NewValidator()
	}
	return &ValidationMiddleware{validator: v}
}

// ValidateIDParams rejects requests whose named path parameters are not ULIDs.
func (vm *ValidationMiddleware) ValidateIDParams(params ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var errs domain.ValidationErrors
		for _, p := range params {
			if err := vm.validator.ID(p, c.Params(p)); err != nil {
				if verrs, ok := err.(domain.ValidationErrors); ok {
					errs = append(errs, verrs...)
				}
			}
		}
		if len(errs) > 0 {
			return errs // This will be handled by ErrorHandler middleware
		}
		return c.Next()
	}
}

// ParseBody decodes the request body into dst and validates it.
func ParseBody(c *fiber.Ctx, v *validation.Validator, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	return v.Struct(dst)
}

// ParseQuery decodes query parameters into dst and validates it.
func ParseQuery(c *fiber.Ctx, v *validation.Validator, dst interface{}) error {
	if err := c.QueryParser(dst); err != nil {
		return domain.NewInvalidInputError("Invalid query parameters")
	}
	return v.Struct(dst)
}
