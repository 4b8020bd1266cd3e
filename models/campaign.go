package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CampaignFilters is the JSON blob of search filters a campaign was
// curated from. Kept free-form so the frontend can round-trip whatever
// filter set produced the shortlist.
type CampaignFilters map[string]any

// Value implements the driver.Valuer interface for CampaignFilters
func (f CampaignFilters) Value() (driver.Value, error) {
	if f == nil {
		return json.Marshal(CampaignFilters{})
	}
	return json.Marshal(f)
}

// Scan implements the sql.Scanner interface for CampaignFilters
func (f *CampaignFilters) Scan(value any) error {
	if value == nil {
		*f = CampaignFilters{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CampaignFilters", value)
	}

	return json.Unmarshal(bytes, f)
}

// Campaign is a named shortlist of creators being curated for an
// outreach campaign
type Campaign struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Filters   CampaignFilters `gorm:"type:jsonb" json:"filters_json"`
	CreatedAt time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`

	Creators []CampaignCreator `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE" json:"creators,omitempty"`
}

func (Campaign) TableName() string { return "campaigns" }

// CampaignCreator links a creator into a campaign with free-text notes
// Unique by (campaign_id, creator_id)
type CampaignCreator struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CampaignID uint      `gorm:"not null;uniqueIndex:uk_campaign_creators_pair;index:idx_campaign_creators_campaign_id" json:"campaign_id"`
	CreatorID  uint      `gorm:"not null;uniqueIndex:uk_campaign_creators_pair" json:"creator_id"`
	Notes      string    `gorm:"type:text;default:''" json:"notes"`
	AddedAt    time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"added_at"`

	Campaign *Campaign `gorm:"foreignKey:CampaignID" json:"-"`
	Creator  *Creator  `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}

func (CampaignCreator) TableName() string { return "campaign_creators" }

// CampaignFilter represents filter criteria for campaign queries
type CampaignFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Name          *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// CampaignCreatorFilter represents filter criteria for campaign-creator links
type CampaignCreatorFilter struct {
	ID         *uint
	CampaignID *uint
	CreatorID  *uint
}
