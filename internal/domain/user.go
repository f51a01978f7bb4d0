package domain

import (
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// Common user validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrNameTooShort        = errors.New("name must be at least 2 characters long")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// User represents a registered user of the application.
//
// Only the bcrypt hash of the password is ever held here; the plaintext
// lives exclusively in the registration request and is gone once hashed.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Never expose the password hash in JSON
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a User with the given email, name and already-hashed
// password. It generates a new UUID and sets the timestamps.
// Returns an error if validation fails.
func NewUser(email, name, hashedPassword string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: hashedPassword,
		Name:           name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks that the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}

	if len(u.Name) < 2 {
		return ErrNameTooShort
	}

	if u.HashedPassword == "" {
		return ErrEmptyHashedPassword
	}

	return nil
}
