package auth

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=32"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func ValidateLogin(req LoginRequest) error {
	return validate.Struct(req)
}

func ValidateRegister(req RegisterRequest) error {
	return validate.Struct(req)
}
