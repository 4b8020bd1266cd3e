package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/ugc-creator-finder/models"
	"gorm.io/gorm"
)

// CampaignCreatorRepositoryImpl implements CampaignCreatorRepository interface
type CampaignCreatorRepositoryImpl struct {
	*BaseRepository[models.CampaignCreator, models.CampaignCreatorFilter]
}

// NewCampaignCreatorRepository creates a new campaign-creator repository
func NewCampaignCreatorRepository(db *gorm.DB) CampaignCreatorRepository {
	return &CampaignCreatorRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CampaignCreator, models.CampaignCreatorFilter](db),
	}
}

// ByCampaignAndCreator retrieves the link between a campaign and a creator
func (r *CampaignCreatorRepositoryImpl) ByCampaignAndCreator(ctx context.Context, campaignID, creatorID uint) (*models.CampaignCreator, error) {
	filter := models.CampaignCreatorFilter{CampaignID: &campaignID, CreatorID: &creatorID}
	links, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(links) == 0 {
		return nil, nil
	}

	return links[0], nil
}

// ListByCampaign retrieves all creator links for a campaign with the
// creator rows preloaded, oldest addition first
func (r *CampaignCreatorRepositoryImpl) ListByCampaign(ctx context.Context, campaignID uint) ([]*models.CampaignCreator, error) {
	db := r.getDB(ctx)

	var links []*models.CampaignCreator
	err := db.Model(&models.CampaignCreator{}).
		Where("campaign_id = ?", campaignID).
		Preload("Creator").
		Order("added_at ASC, id ASC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list creators for campaign %d: %w", campaignID, err)
	}

	return links, nil
}

// Delete removes a single campaign-creator link
func (r *CampaignCreatorRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Delete(&models.CampaignCreator{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete campaign creator link %d: %w", id, err)
	}

	return nil
}

// DeleteByCampaign removes every creator link of a campaign
func (r *CampaignCreatorRepositoryImpl) DeleteByCampaign(ctx context.Context, campaignID uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Where("campaign_id = ?", campaignID).Delete(&models.CampaignCreator{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete creator links for campaign %d: %w", campaignID, err)
	}

	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *CampaignCreatorRepositoryImpl) applyFilter(query *gorm.DB, filter models.CampaignCreatorFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.CampaignID != nil {
		query = query.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.CreatorID != nil {
		query = query.Where("creator_id = ?", *filter.CreatorID)
	}
	return query
}

// ByFilter retrieves campaign-creator links based on filter criteria
func (r *CampaignCreatorRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignCreatorFilter, orderBy string, limit, offset int) ([]*models.CampaignCreator, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CampaignCreator{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var links []*models.CampaignCreator
	if err := query.Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// Count returns the number of links matching the filter
func (r *CampaignCreatorRepositoryImpl) Count(ctx context.Context, filter models.CampaignCreatorFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CampaignCreator{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any link matching the filter exists
func (r *CampaignCreatorRepositoryImpl) Exists(ctx context.Context, filter models.CampaignCreatorFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
