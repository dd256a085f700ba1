package model

// User is the server-assigned identity record. Immutable from the
// client's perspective except through an explicit profile update.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
}
