package models

import "time"

// User is a full directory record without the password hash.
type User struct {
	Username  string
	FirstName string
	LastName  string
	Phone     string
	JoinAt    time.Time
	// LastLoginAt is nil for rows whose last_login_at is NULL.
	LastLoginAt *time.Time
}

// RegisteredUser is what registration hands back. Password holds the stored
// hash, never the plaintext.
type RegisteredUser struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// UserSummary is the per-user row returned when listing the directory.
type UserSummary struct {
	Username  string
	FirstName string
	LastName  string
}

// UserProfile is the sender or recipient nested into a message.
type UserProfile struct {
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

// NewUser carries registration input after hashing.
type NewUser struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
}
