package models

import "time"

// SeenCreator is the dedup ledger for live searches run with
// exclude_seen. Rows are append-only; the only other mutation is a
// bulk reset.
// Table: seen_creators
// Unique by external_id
type SeenCreator struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID string    `gorm:"size:255;not null;uniqueIndex:uk_seen_creators_external_id" json:"external_id"`
	Platform   string    `gorm:"size:50;not null;index:idx_seen_creators_platform" json:"platform"`
	CreatedAt  time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (SeenCreator) TableName() string { return "seen_creators" }

// SeenCreatorFilter represents filter criteria for seen-ledger queries
type SeenCreatorFilter struct {
	ID         *uint
	ExternalID *string
	Platform   *string
}
