package domain

import "errors"

var ErrNotFound = errors.New("user not found")

// User is the slice of the externally-owned account this core consumes:
// enough to address an invoice and a reset email, nothing more.
type User struct {
	ID       string
	Username string
	Email    string
}
