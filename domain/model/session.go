package model

// Session is the authenticated-user/token pair. It is either fully
// populated or fully absent, never partially hydrated.
type Session struct {
	Token string
	User  User
}

// Valid reports whether the session is fully populated.
func (s Session) Valid() bool {
	return s.Token != "" && s.User.ID != 0
}
