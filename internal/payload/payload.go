// Package payload turns a raw Framer form submission into a typed Submission.
//
// Framer sends whatever field labels the form author chose, so every logical
// field is looked up through a prioritized list of aliases.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Logical field names, as reported in ValidationError.Missing.
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldTelephone    = "telephone"
	FieldLocation     = "location"
	FieldNewsletter   = "newsletter"
	FieldNiveauEtudes = "niveau_etudes"
	FieldEcole        = "ecole"
)

var aliases = map[string][]string{
	FieldName:         {"name", "Name"},
	FieldEmail:        {"email", "Email"},
	FieldTelephone:    {"telephone", "Téléphone", "Telephone", "phone"},
	FieldLocation:     {"location", "Location"},
	FieldNewsletter:   {"newsletter", "Newsletter"},
	FieldNiveauEtudes: {"niveau_etudes", "Niveau d'études"},
	FieldEcole:        {"ecole", "École"},
}

// ErrMalformed is returned when the body is not a JSON object.
var ErrMalformed = errors.New("malformed payload")

// ValidationError lists the required logical fields that were absent.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Submission is a validated webhook payload.
type Submission struct {
	Name         string
	Email        string
	Telephone    string
	Location     string
	Newsletter   bool
	NiveauEtudes string
	Ecole        string

	// Fields holds the keys present in the incoming payload, for logging.
	Fields []string
}

// Parse decodes body and validates the required fields. Telephone is
// required only when requireTelephone is set.
func Parse(body []byte, requireTelephone bool) (Submission, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return Submission{}, ErrMalformed
	}

	sub := Submission{
		Name:         lookup(raw, FieldName),
		Email:        lookup(raw, FieldEmail),
		Telephone:    lookup(raw, FieldTelephone),
		Location:     lookup(raw, FieldLocation),
		Newsletter:   parseBool(lookup(raw, FieldNewsletter)),
		NiveauEtudes: lookup(raw, FieldNiveauEtudes),
		Ecole:        lookup(raw, FieldEcole),
	}
	for k := range raw {
		sub.Fields = append(sub.Fields, k)
	}

	if err := sub.Validate(requireTelephone); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// Validate returns a *ValidationError when a required field is empty.
func (s Submission) Validate(requireTelephone bool) error {
	var missing []string
	if s.Name == "" {
		missing = append(missing, FieldName)
	}
	if s.Email == "" {
		missing = append(missing, FieldEmail)
	}
	if requireTelephone && s.Telephone == "" {
		missing = append(missing, FieldTelephone)
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// lookup returns the first non-empty alias value for field.
func lookup(raw map[string]any, field string) string {
	for _, key := range aliases[field] {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if s := stringify(v); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// parseBool accepts HTML checkbox values ("on") as well as JSON booleans.
func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true
	default:
		return false
	}
}
