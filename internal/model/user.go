package model

// User is the profile cached alongside the session token.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session is the credential plus profile held by the session store.
type Session struct {
	Token string
	User  User
}

// Active reports whether the session carries a token.
func (s Session) Active() bool {
	return s.Token != ""
}

// Role references a backend role by ID when registering a user.
type Role struct {
	ID int64 `json:"id"`
}

// Registration is the payload for creating a backend user account.
type Registration struct {
	Username             string `json:"username"`
	Password             string `json:"password"`
	RolesList            []Role `json:"rolesList"`
	Enabled              bool   `json:"enabled"`
	AccountNotExpired    bool   `json:"accountNotExpired"`
	AccountNotLocked     bool   `json:"accountNotLocked"`
	CredentialNotExpired bool   `json:"credentialNotExpired"`
}

// NewRegistration returns an enabled, unlocked account request with the given roles.
func NewRegistration(username, password string, roleIDs ...int64) Registration {
	roles := make([]Role, 0, len(roleIDs))
	for _, id := range roleIDs {
		roles = append(roles, Role{ID: id})
	}
	return Registration{
		Username:             username,
		Password:             password,
		Enabled:              true,
		AccountNotExpired:    true,
		AccountNotLocked:     true,
		CredentialNotExpired: true,
		RolesList:            roles,
	}
}
