// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/amirphl/ugc-creator-finder/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CreatorRepository defines operations for normalized creator records
type CreatorRepository interface {
	Repository[models.Creator, models.CreatorFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Creator, error)
	ByExternalID(ctx context.Context, externalID string) (*models.Creator, error)
	// UpsertByExternalID inserts the creator or refreshes every mutable
	// column of the existing row keyed by external_id. The stored row's
	// id and uuid survive the refresh.
	UpsertByExternalID(ctx context.Context, creator *models.Creator) error
}

// SeenCreatorRepository defines operations for the seen-creator ledger
type SeenCreatorRepository interface {
	Repository[models.SeenCreator, models.SeenCreatorFilter]
	Contains(ctx context.Context, externalID string) (bool, error)
	// Add records an external ID as seen. Re-adding an already seen ID
	// is a no-op rather than an error.
	Add(ctx context.Context, externalID, platform string) error
	ClearAll(ctx context.Context) (int64, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Campaign, error)
	Delete(ctx context.Context, id uint) error
}

// CampaignCreatorRepository defines operations for campaign-creator links
type CampaignCreatorRepository interface {
	Repository[models.CampaignCreator, models.CampaignCreatorFilter]
	ByCampaignAndCreator(ctx context.Context, campaignID, creatorID uint) (*models.CampaignCreator, error)
	ListByCampaign(ctx context.Context, campaignID uint) ([]*models.CampaignCreator, error)
	Delete(ctx context.Context, id uint) error
	DeleteByCampaign(ctx context.Context, campaignID uint) error
}

// AdminRepository defines operations for admins
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, adminID uint) error
}
