package models

import "github.com/avolkovs/tabshare/internal/timex"

// User is one registered account. PasswordHash is internal to the server and
// must never be serialized into API responses. CreatedAt is a timex.Timestamp
// so collections written by the previous backend, which stored zoneless
// ISO-8601 values, still decode.
type User struct {
	ID           string          `json:"user_id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"password_hash"`
	CreatedAt    timex.Timestamp `json:"created_at"`
}

// UserChanges describes a partial profile update. Nil fields are left
// untouched. Password carries plaintext; the service hashes it before the
// change reaches the repository.
type UserChanges struct {
	Username *string
	Email    *string
	Password *string
}
