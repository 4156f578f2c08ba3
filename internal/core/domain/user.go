package domain

import "time"

type User struct {
	ID        string
	Username  string
	Email     string
	Password  string // bcrypt hash, never the plaintext
	IsAdmin   bool
	CreatedAt time.Time
}

// Role returns the role encoded into tokens issued for this user.
func (u *User) Role() Role {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}
