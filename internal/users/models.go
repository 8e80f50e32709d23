package users

import "time"

// User is a system account. PasswordHash never leaves this package in JSON.
type User struct {
	ID        string `json:"id" db:"id"`
	Email     string `json:"email" db:"email"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`

	// Role is one of the rbac role constants.
	Role     string `json:"role" db:"role"`
	IsActive bool   `json:"is_active" db:"is_active"`

	PasswordHash string `json:"-" db:"password_hash"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Token is the login response: the JWT pair plus the authenticated user.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	User         User   `json:"user"`
}
