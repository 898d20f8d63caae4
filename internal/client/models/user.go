// Package models defines the wire and domain types exchanged with the shop
// API. Monetary amounts use decimal.Decimal so totals never pick up float
// rounding; the API sends them as decimal strings ("150.00").
package models

import "time"

// User is the authenticated account profile.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	FullName       string    `json:"full_name,omitempty"`
	PhoneNumber    string    `json:"phone_number,omitempty"`
	IsSeller       bool      `json:"is_seller"`
	ProfilePicture *string   `json:"profile_picture,omitempty"`
	DateJoined     time.Time `json:"date_joined,omitzero"`
	IsActive       bool      `json:"is_active"`
}

// DisplayName prefers the full name and falls back to the email.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.FirstName != "" || u.LastName != "" {
		if u.LastName == "" {
			return u.FirstName
		}
		if u.FirstName == "" {
			return u.LastName
		}
		return u.FirstName + " " + u.LastName
	}
	return u.Email
}

// Registration is the payload for creating an account.
type Registration struct {
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password2"`
}

// ProfileUpdate carries the profile fields to change. Nil fields are left
// out of the PATCH body.
type ProfileUpdate struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// TokenPair is the response of the token issuance endpoint.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    *User  `json:"user,omitempty"`
}
