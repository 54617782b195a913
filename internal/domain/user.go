package domain

const RoleSuperAdmin = "SUPER_ADMIN"

type User struct {
	ID    string `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"name"`
	Hash  string `db:"password_hash" json:"-"`
	Role  string `db:"role" json:"role"`
}

func (u *User) UserID() string { return u.ID }

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleSuperAdmin }

// LoginResult is the {token, user} pair returned by /auth/login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
