// internal/model/user.go
package model

// User is the profile provisioned when the identity provider creates an account.
type User struct {
	ID    string  `db:"id" json:"id"`
	Email string  `db:"email" json:"email"`
	Name  *string `db:"name" json:"name,omitempty"`
}
