package dto

import "github.com/amirphl/ugc-creator-finder/models"

// CampaignDTO is the campaign representation returned by the API
type CampaignDTO struct {
	ID           uint           `json:"id"`
	UUID         string         `json:"uuid"`
	Name         string         `json:"name"`
	Filters      map[string]any `json:"filters,omitempty"`
	CreatorCount int            `json:"creator_count"`
	CreatedAt    string         `json:"created_at"`
}

// CampaignCreatorDTO is one creator entry inside a campaign
type CampaignCreatorDTO struct {
	Creator models.Creator `json:"creator"`
	Notes   string         `json:"notes,omitempty"`
	AddedAt string         `json:"added_at"`
}

// CreateCampaignRequest creates a new campaign
type CreateCampaignRequest struct {
	Name    string         `json:"name" validate:"required,min=1,max=255"`
	Filters map[string]any `json:"filters" validate:"omitempty"`
}

// UpdateCampaignRequest renames a campaign or replaces its saved filters
type UpdateCampaignRequest struct {
	Name    *string        `json:"name" validate:"omitempty,min=1,max=255"`
	Filters map[string]any `json:"filters" validate:"omitempty"`
}

// AddCampaignCreatorRequest attaches a stored creator to a campaign
type AddCampaignCreatorRequest struct {
	CreatorID uint   `json:"creator_id" validate:"required,gt=0"`
	Notes     string `json:"notes" validate:"omitempty,max=2000"`
}

// ListCampaignsResponse is the campaign listing
type ListCampaignsResponse struct {
	Campaigns []CampaignDTO `json:"campaigns"`
	Total     int64         `json:"total"`
}

// CampaignDetailResponse is one campaign with its creators
type CampaignDetailResponse struct {
	Campaign CampaignDTO          `json:"campaign"`
	Creators []CampaignCreatorDTO `json:"creators"`
}

// CampaignExport is a rendered export file ready to stream to the client
type CampaignExport struct {
	FileName    string
	ContentType string
	Content     []byte
}
