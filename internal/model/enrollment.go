package model

import (
	"time"
	"unicode"
)

// Enrollment is one candidate's signup record, persisted in enrolled_users.
type Enrollment struct {
	ID           string    `db:"id"            json:"id"` // upstream submission id
	Name         string    `db:"name"          json:"name"`
	Email        string    `db:"email"         json:"email"`
	Telephone    string    `db:"telephone"     json:"telephone,omitempty"`
	Location     string    `db:"location"      json:"location,omitempty"`
	Newsletter   bool      `db:"newsletter"    json:"newsletter"`
	NiveauEtudes string    `db:"niveau_etudes" json:"niveau_etudes,omitempty"`
	Ecole        string    `db:"ecole"         json:"ecole,omitempty"`
	EnrolledAt   time.Time `db:"enrolled_at"   json:"enrolled_at"`
}

// Initial returns the upper-cased first letter of the name (listing avatar).
func (e Enrollment) Initial() string {
	for _, r := range e.Name {
		return string(unicode.ToUpper(r))
	}
	return "?"
}
