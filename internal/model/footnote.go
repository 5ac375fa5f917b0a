package model

import (
	"time"
)

// Footnote is a data-lineage record for a figure in the deck: where it
// came from, how often it refreshes and what transform was applied.
type Footnote struct {
	ID          string    `db:"id" json:"id"`
	Label       string    `db:"label" json:"label"`
	Source      string    `db:"source" json:"source"`
	Refresh     string    `db:"refresh" json:"refresh"`
	Transform   string    `db:"transform" json:"transform"`
	RetrievedAt time.Time `db:"retrieved_at" json:"retrievedAt"`
}
