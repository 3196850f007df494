package dto

import "strings"

type RegisterRequest struct {
	FullName string `json:"fullName" validate:"max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
	Role     string `json:"role,omitempty"`
}

// Validate trims the email before checking it. Role is left to the
// service so an unknown role surfaces as invalid_role.
func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	return validateStruct(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Only presence is checked; a malformed email is just another failed login.
func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateStruct(r)
}

// TokenRequest is the body of refresh and logout. An empty token is not a
// validation error: refresh answers it with token_missing, logout ignores it.
type TokenRequest struct {
	Token string `json:"token"`
}

type CreateUserRequest struct {
	FullName string `json:"fullName" validate:"max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

func (r *CreateUserRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	return validateStruct(r)
}
