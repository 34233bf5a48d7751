package domain

import "time"

// Account is a credential holder for the authorization gate. Accounts
// are separate from registry users: an account may call the API, a
// user is merely a stored record.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
