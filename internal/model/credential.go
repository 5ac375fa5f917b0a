package model

import (
	"time"
)

// Credential is a single-use download token bound to a subject.
// used_at doubles as the used flag: NULL means the token has never
// been redeemed. Rows are kept after use for the audit trail.
type Credential struct {
	ID        string     `db:"id"`
	Token     string     `db:"token"`
	Subject   string     `db:"subject"`
	IssuedAt  time.Time  `db:"issued_at"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
}

func (c *Credential) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

func (c *Credential) IsUsed() bool {
	return c.UsedAt != nil
}

func (c *Credential) IsValid() bool {
	return !c.IsExpired() && !c.IsUsed()
}
