package dto

import "github.com/amirphl/ugc-creator-finder/models"

// SearchCreatorsRequest carries the creator search parameters
type SearchCreatorsRequest struct {
	Platform      string  `json:"platform" validate:"omitempty,oneof=instagram youtube tiktok twitter facebook pinterest backstage all"`
	Niche         string  `json:"niche" validate:"omitempty,max=100"`
	MinFollowers  int     `json:"min_followers" validate:"gte=0"`
	MaxFollowers  int     `json:"max_followers" validate:"gte=0"`
	MinEngagement float64 `json:"min_engagement" validate:"gte=0"`
	Gender        string  `json:"gender" validate:"omitempty,max=20"`
	AgeMin        int     `json:"age_min" validate:"gte=0,lte=120"`
	AgeMax        int     `json:"age_max" validate:"gte=0,lte=120"`
	Country       string  `json:"country" validate:"omitempty,len=2"`
	StrictDemo    bool    `json:"strict_demo"`
	SortBy        string  `json:"sort_by" validate:"omitempty,max=50"`
	Page          int     `json:"page" validate:"gte=0"`
	PageSize      int     `json:"page_size" validate:"gte=1,lte=500"`
	ExcludeSeen   bool    `json:"exclude_seen"`
	DeepSearch    bool    `json:"deep_search"`
}

// SearchCreatorsResponse is the search result set plus counts
type SearchCreatorsResponse struct {
	Creators []models.Creator `json:"creators"`
	Total    int              `json:"total"`
	DBTotal  int64            `json:"db_total"`
	Page     int              `json:"page"`
}

// DatabaseListingRequest filters the persisted creator listing
type DatabaseListingRequest struct {
	Gender   string `json:"gender" validate:"omitempty,max=20"`
	AgeMin   int    `json:"age_min" validate:"gte=0,lte=120"`
	AgeMax   int    `json:"age_max" validate:"gte=0"`
	SortBy   string `json:"sort_by" validate:"omitempty,max=50"`
	Page     int    `json:"page" validate:"gte=0"`
	PageSize int    `json:"page_size" validate:"gte=1,lte=500"`
}

// DatabaseListingResponse is the full stored-creator listing page
type DatabaseListingResponse struct {
	Creators []models.Creator `json:"creators"`
	Total    int              `json:"total"`
	DBTotal  int64            `json:"db_total"`
	Page     int              `json:"page"`
}

// ResetSeenResponse reports how many seen-ledger entries were cleared
type ResetSeenResponse struct {
	Message string `json:"message"`
	Cleared int64  `json:"cleared"`
}
