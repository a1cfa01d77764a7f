package types

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public strips credentials before a user leaves the daemon.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// AuthSession is what sign-in and sign-up return, and what the client
// persists between runs.
type AuthSession struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}
