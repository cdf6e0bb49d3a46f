package model

// Envelope is the payload published to Kafka for the downstream SMS gateway.
type Envelope struct {
	ID           string `json:"id"`            // SMS ULID
	EnrollmentID string `json:"enrollment_id"` // submission id
	SMS          SMS    `json:"sms"`
}
