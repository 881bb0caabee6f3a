// Package customer defines the customer domain model.
package customer

import "time"

// Customer is a registered tenant of the sales ledger. The password hash
// never leaves the service boundary.
type Customer struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	BirthDate    time.Time `json:"birth_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is the public projection used to enrich statistics results. It is
// never used to authorize.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile returns the public projection of the customer.
func (c Customer) Profile() Profile {
	return Profile{ID: c.ID, Name: c.Name, Email: c.Email}
}
