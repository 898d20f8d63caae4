package models

import "strings"

// Address is a saved shipping/billing address.
type Address struct {
	ID               int64  `json:"id,omitempty"`
	StreetAddress    string `json:"street_address"`
	ApartmentAddress string `json:"apartment_address,omitempty"`
	City             string `json:"city"`
	State            string `json:"state"`
	PostalCode       string `json:"postal_code"`
	Country          string `json:"country,omitempty"`
	IsDefault        bool   `json:"is_default"`
}

func (a Address) String() string {
	parts := []string{a.StreetAddress}
	if a.ApartmentAddress != "" {
		parts = append(parts, a.ApartmentAddress)
	}
	parts = append(parts, a.City, a.State, a.PostalCode)
	if a.Country != "" {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, ", ")
}

// DefaultAddress returns the address flagged as default, if any.
func DefaultAddress(list []Address) (Address, bool) {
	for _, a := range list {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}
