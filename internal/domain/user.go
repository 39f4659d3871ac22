package domain

import "errors"

var (
	// ErrUserAlreadyExists is returned when trying to create a user with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the username/password combination is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordTooLong is returned when a password exceeds what the hash function accepts.
	ErrPasswordTooLong = errors.New("password too long")
)

// User represents a registered account.
type User struct {
	ID           int64  // Unique identifier
	Username     string // Login username
	PasswordHash []byte // bcrypt hash
	CreatedAt    int64  // Unix timestamp of account creation
}

// CredentialsRequest is the body of the register and login endpoints.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
