package domain

import "errors"

var (
	// ErrUserNotFound indicates a registry lookup miss.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountNotFound indicates an account lookup miss.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned when registering an already taken username.
	ErrAccountExists = errors.New("account already exists")
)
