package model

import (
	"time"
)

// Audit actions for the credential lifecycle. Every issuance and every
// consumption attempt leaves exactly one record.
const (
	AuditTokenIssued         = "token_issued"
	AuditTokenConsumed       = "token_consumed"
	AuditConsumeDeniedUsed   = "token_consume_denied_used"
	AuditConsumeDeniedExp    = "token_consume_denied_expired"
	AuditConsumeDeniedUnkn   = "token_consume_denied_unknown"
	AuditDeckExported        = "deck_exported"
	AuditExecSummaryRendered = "execsum_rendered"
)

// AuditRecord is an append-only trace entry. TokenPrefix carries at most
// the first few characters of a token, never the full secret.
type AuditRecord struct {
	ID          string    `db:"id" json:"id"`
	Action      string    `db:"action" json:"action"`
	TokenPrefix string    `db:"token_prefix" json:"tokenPrefix,omitempty"`
	Subject     string    `db:"subject" json:"subject,omitempty"`
	Detail      string    `db:"detail" json:"detail,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
