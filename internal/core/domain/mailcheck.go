package domain

import "time"

// PendingAccount is the candidate account staged until the e-mail address
// is confirmed.
type PendingAccount struct {
	Name       string   `json:"name" bson:"name"`
	Email      string   `json:"mail" bson:"mail"`
	Classes    []string `json:"classes" bson:"classes"`
	Grade      string   `json:"grade" bson:"grade"`
	Newsletter bool     `json:"newsletter" bson:"newsletter"`
	Salt       []byte   `json:"salt" bson:"salt"`
	Hash       []byte   `json:"hash" bson:"hash"`
}

// MailCheck is a pending registration behind a single-use code.
type MailCheck struct {
	ID         string
	Code       string
	Account    PendingAccount
	ValidUntil time.Time
	ConsumedAt *time.Time
}

func (m *MailCheck) Expired(now time.Time) bool {
	return !now.Before(m.ValidUntil)
}

func (m *MailCheck) Consumed() bool {
	return m.ConsumedAt != nil
}
