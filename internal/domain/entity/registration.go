package entity

import "time"

// PendingRegistration is an email waiting for confirmation.
// It lives in a TTL cache keyed by Token, never in the database.
type PendingRegistration struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"created_at"`
}

// BlacklistedEmail is an address that asked not to be contacted again
type BlacklistedEmail struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName sets the GORM table name
func (BlacklistedEmail) TableName() string {
	return "blacklisted_emails"
}

// BlacklistedIP is a client address refused by the registration flow
type BlacklistedIP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IP        string    `gorm:"size:45;not null;uniqueIndex" json:"ip"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName sets the GORM table name
func (BlacklistedIP) TableName() string {
	return "blacklisted_ips"
}
