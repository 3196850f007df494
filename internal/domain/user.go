package domain

import "time"

// User is the persisted account record.
// RefreshToken holds the only live refresh token; "" means no active session.
type User struct {
	ID            string
	FullName      string
	Email         string
	PasswordHash  string
	Role          string
	RefreshToken  string
	EmailVerified bool
	CreatedAt     time.Time
}

// PublicUser is the only shape of a user that leaves the service.
type PublicUser struct {
	ID        string
	FullName  string
	Email     string
	Role      string
	CreatedAt time.Time
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
