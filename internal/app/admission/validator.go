package admission

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"rwchat/internal/app/user"
	"rwchat/internal/pkg/errs"
)

var validate = validator.New()

// LoginRequest carries login credentials. Role is accepted for compatibility with
// clients that send the signup shape; the stored role always wins.
type LoginRequest struct {
	Email    string    `json:"email" validate:"required"`
	Password string    `json:"password" validate:"required"`
	Role     user.Role `json:"role,omitempty" validate:"-"`
}

// SignupRequest carries the fields of a new account.
type SignupRequest struct {
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required,min=6,max=72"`
	Role     user.Role `json:"role" validate:"required,oneof=Writer Reader"`
}

// validateRequest runs the struct rules and maps the first failing field to an error code.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	fe := fieldErrs[0]
	if fe.Tag() == "required" {
		return errs.NewError(errs.ErrInvalidParams)
	}

	switch fe.Field() {
	case "Email":
		return errs.NewError(errs.ErrInvalidEmail)
	case "Password":
		return errs.NewError(errs.ErrInvalidPassword)
	case "Role":
		return errs.NewError(errs.ErrInvalidRole)
	default:
		return errs.NewError(errs.ErrInvalidParams)
	}
}
