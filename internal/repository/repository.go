// Package repository contains the sqlx persistence layer. Enrollment
// invariants are re-verified here under a row lock because the repositories
// are the authoritative boundary shared by every client instance.
package repository

import "errors"

// ErrNoRowsAffected signals that a mutation matched no rows.
var ErrNoRowsAffected = errors.New("no rows affected")
