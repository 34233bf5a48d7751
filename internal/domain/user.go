package domain

import "time"

// User is a record held by the in-memory registry.
//
// FirstName and LastName are optional and stay nil when the creating
// request omitted them. Ids start at 1, grow by one per created record
// and are never reused.
type User struct {
	ID        int64
	Username  string
	Email     string
	FirstName *string
	LastName  *string
	CreatedAt time.Time
}
