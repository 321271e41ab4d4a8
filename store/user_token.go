package store

import "time"

// UserToken is the persisted Google OAuth credential for one user. Email is
// the primary key; there is exactly one live token set per user.
type UserToken struct {
	Email        string
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time

	// Standard fields
	CreatedTs int64
	UpdatedTs int64
}
