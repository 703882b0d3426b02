package auth

import "errors"

var (
	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidEmail          = errors.New("Invalid Email")
	ErrIncorrectPassword     = errors.New("Incorrect Password")
	ErrEmailTaken            = errors.New("Email already registered")
	ErrWeakPassword          = errors.New("Invalid password format")
	ErrNotAuthenticated      = errors.New("Not authenticated")
)
