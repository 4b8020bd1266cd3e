// Package models contains domain entities and business models for the creator discovery system
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DemographicConfidence levels attached to inferred age/gender data
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// CreatorTier is the coarse popularity classification of a creator
type CreatorTier string

const (
	TierEstablished CreatorTier = "established"
	TierEmerging    CreatorTier = "emerging"
)

// String returns the string representation of the tier
func (t CreatorTier) String() string {
	return string(t)
}

// Valid checks if the tier is valid
func (t CreatorTier) Valid() bool {
	switch t {
	case TierEstablished, TierEmerging:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CreatorTier
func (t *CreatorTier) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = CreatorTier(v)
	case []byte:
		*t = CreatorTier(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CreatorTier", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CreatorTier
func (t CreatorTier) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid CreatorTier: %s", t)
	}
	return string(t), nil
}

// AudienceBucket is one weighted slice of a creator's audience
// (an age band like "35-44" or a gender code)
type AudienceBucket struct {
	Code   string  `json:"code"`
	Weight float64 `json:"weight"`
}

// AudienceDemographics is the audience report supplied by discovery APIs
type AudienceDemographics struct {
	Genders []AudienceBucket `json:"genders,omitempty"`
	Ages    []AudienceBucket `json:"ages,omitempty"`
}

// Value implements the driver.Valuer interface for AudienceDemographics
func (a AudienceDemographics) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface for AudienceDemographics
func (a *AudienceDemographics) Scan(value any) error {
	if value == nil {
		*a = AudienceDemographics{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into AudienceDemographics", value)
	}

	return json.Unmarshal(bytes, a)
}

// CrossPlatformProfile is a matched profile for the same creator on
// another platform. Response-only annotation; never persisted.
type CrossPlatformProfile struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// Creator is the canonical creator record produced by normalization.
// One row per external_id; re-ingestion updates the row in place.
type Creator struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_creators_uuid" json:"uuid"`

	ExternalID string `gorm:"size:255;not null;uniqueIndex:uk_creators_external_id" json:"external_id"`
	Name       string `gorm:"size:255;not null" json:"name"`
	Platform   string `gorm:"size:50;not null;index:idx_creators_platform" json:"platform"`
	Handle     string `gorm:"size:255;not null" json:"handle"`
	ProfileURL string `gorm:"size:1024" json:"profile_url"`
	AvatarURL  string `gorm:"size:1024" json:"avatar_url"`

	FollowerCount  int     `gorm:"default:0;index:idx_creators_follower_count" json:"follower_count"`
	FollowingCount int     `gorm:"default:0" json:"following_count"`
	EngagementRate float64 `gorm:"default:0" json:"engagement_rate"`
	AvgLikes       int     `gorm:"default:0" json:"avg_likes"`
	AvgComments    int     `gorm:"default:0" json:"avg_comments"`
	AvgViews       int     `gorm:"default:0" json:"avg_views"`
	PostCount      int     `gorm:"default:0" json:"post_count"`

	Bio       string         `gorm:"type:text" json:"bio"`
	NicheTags pq.StringArray `gorm:"type:text[]" json:"niche_tags"`

	EstimatedAgeRange     *string `gorm:"size:20" json:"estimated_age_range,omitempty"`
	Gender                *string `gorm:"size:20;index:idx_creators_gender" json:"gender,omitempty"`
	DemographicConfidence string  `gorm:"size:10;default:low" json:"demographic_confidence"`
	Country               *string `gorm:"size:2" json:"country,omitempty"`

	Tier CreatorTier `gorm:"size:20;default:emerging" json:"tier"`

	EngagementScore float64 `gorm:"default:0" json:"engagement_score"`
	QualityScore    float64 `gorm:"default:0" json:"quality_score"`
	RelevanceScore  float64 `gorm:"default:0" json:"relevance_score"`
	OverallScore    float64 `gorm:"default:0;index:idx_creators_overall_score" json:"overall_score"`

	AudienceDemographics AudienceDemographics `gorm:"type:jsonb" json:"audience_demographics"`

	// Transient cross-platform lookup annotation; excluded from every
	// write and merge.
	CrossPlatformProfiles []CrossPlatformProfile `gorm:"-" json:"cross_platform_profiles,omitempty"`

	LastUpdated time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"last_updated"`
}

func (Creator) TableName() string {
	return "creators"
}

// CreatorFilter represents filter criteria for creator queries
type CreatorFilter struct {
	ID         *uint
	UUID       *uuid.UUID
	ExternalID *string
	Platform   *string
	Gender     *string
	Country    *string
	Tier       *CreatorTier

	MinFollowers  *int
	MaxFollowers  *int
	MinEngagement *float64
	MinOverall    *float64
}
