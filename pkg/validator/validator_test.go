package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUpForm struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	UserType        string `json:"user_type" validate:"required,oneof=doctor patient"`
	Specialty       string `json:"specialty" validate:"required_if=UserType doctor"`
	DateOfBirth     string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

func TestFormatValidationErrorsUsesJSONNames(t *testing.T) {
	v := NewValidator()
	err := v.Validate(signUpForm{
		Email:           "not-an-email",
		Password:        "abc",
		ConfirmPassword: "abd",
		UserType:        "doctor",
		DateOfBirth:     "15/01/1990",
	})
	require.Error(t, err)

	errs := v.FormatValidationErrors(err)
	assert.Equal(t, "email must be a valid email address", errs["email"])
	assert.Equal(t, "password must be at least 6 characters", errs["password"])
	assert.Equal(t, "confirm_password must match Password", errs["confirm_password"])
	assert.Equal(t, "specialty is required", errs["specialty"])
	assert.Equal(t, "date_of_birth must be a date in YYYY-MM-DD format", errs["date_of_birth"])
}

func TestOneOfMessage(t *testing.T) {
	v := NewValidator()
	err := v.Validate(signUpForm{
		Email:           "a@b.co",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		UserType:        "nurse",
	})
	require.Error(t, err)
	assert.Equal(t, "user_type must be one of: doctor, patient", v.Summary(err))
}

func TestValidFormPasses(t *testing.T) {
	v := NewValidator()
	err := v.Validate(signUpForm{
		Email:           "a@b.co",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		UserType:        "patient",
		DateOfBirth:     "1990-01-15",
	})
	assert.NoError(t, err)
	assert.Empty(t, v.Summary(err))
}
