package model

import "strings"

// ConfirmationTemplate is the fixed body of the enrollment confirmation SMS.
const ConfirmationTemplate = "Hi {name}, your enrollment has been confirmed! Welcome to our program."

type SMS struct {
	ID    string `json:"id"` // ULID, assigned before dispatch
	Phone string `json:"phone"`
	Text  string `json:"text"`
}

// ConfirmationText renders ConfirmationTemplate for the given name.
func ConfirmationText(name string) string {
	return strings.ReplaceAll(ConfirmationTemplate, "{name}", name)
}
