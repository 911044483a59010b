package domain

type ContextKey string

const UserContextKey ContextKey = "user"

// User is the identity carried through request context. It is built from
// JWT claims by the auth middleware; registration and profile management
// live in a separate service.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
}

// IsAdmin reports whether the user holds the staff role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}
