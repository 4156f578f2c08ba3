package domain

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Identity is the caller identity decoded from a token, threaded through
// request handling. It is derived per request and never persisted.
type Identity struct {
	Subject string // user email
	Role    Role
}
