package dto

import (
	"time"

	"github.com/pashto-learning-app/backend/internal/domain"
)

// UserView is the public user projection. It never carries the password
// hash, the refresh token or the verification flag.
type UserView struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewUserView(u domain.PublicUser) UserView {
	return UserView{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func NewUserViews(us []domain.PublicUser) []UserView {
	out := make([]UserView, 0, len(us))
	for _, u := range us {
		out = append(out, NewUserView(u))
	}
	return out
}

type RegisterResponse struct {
	Message string   `json:"message"`
	User    UserView `json:"user"`
}

type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
