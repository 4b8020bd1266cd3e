package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/ugc-creator-finder/models"
	"github.com/amirphl/ugc-creator-finder/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreatorRepositoryImpl implements CreatorRepository interface
type CreatorRepositoryImpl struct {
	*BaseRepository[models.Creator, models.CreatorFilter]
}

// NewCreatorRepository creates a new creator repository
func NewCreatorRepository(db *gorm.DB) CreatorRepository {
	return &CreatorRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Creator, models.CreatorFilter](db),
	}
}

// ByUUID retrieves a creator by UUID
func (r *CreatorRepositoryImpl) ByUUID(ctx context.Context, rawUUID string) (*models.Creator, error) {
	parsedUUID, err := uuid.Parse(rawUUID)
	if err != nil {
		return nil, fmt.Errorf("invalid creator UUID %q: %w", rawUUID, err)
	}

	filter := models.CreatorFilter{UUID: &parsedUUID}
	creators, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(creators) == 0 {
		return nil, nil
	}

	return creators[0], nil
}

// ByExternalID retrieves a creator by its platform-scoped external ID
func (r *CreatorRepositoryImpl) ByExternalID(ctx context.Context, externalID string) (*models.Creator, error) {
	filter := models.CreatorFilter{ExternalID: &externalID}
	creators, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(creators) == 0 {
		return nil, nil
	}

	return creators[0], nil
}

// upsertColumns are the columns refreshed when an external ID is
// re-ingested. id and uuid are never touched so stored identity is
// stable, and post_count is excluded so sparse sources cannot zero a
// previously scraped count.
var upsertColumns = []string{
	"name", "platform", "handle", "profile_url", "avatar_url",
	"follower_count", "following_count", "engagement_rate",
	"avg_likes", "avg_comments", "avg_views",
	"bio", "niche_tags",
	"estimated_age_range", "gender", "demographic_confidence", "country",
	"tier",
	"engagement_score", "quality_score", "relevance_score", "overall_score",
	"audience_demographics",
	"last_updated",
}

// UpsertByExternalID inserts the creator or refreshes the existing row
// keyed by external_id
func (r *CreatorRepositoryImpl) UpsertByExternalID(ctx context.Context, creator *models.Creator) error {
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

	if creator.UUID == uuid.Nil {
		creator.UUID = uuid.New()
	}
	creator.LastUpdated = utils.UTCNow()

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(creator).Error
	if err != nil {
		return fmt.Errorf("failed to upsert creator %s: %w", creator.ExternalID, err)
	}

	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *CreatorRepositoryImpl) applyFilter(query *gorm.DB, filter models.CreatorFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.ExternalID != nil {
		query = query.Where("external_id = ?", *filter.ExternalID)
	}
	if filter.Platform != nil {
		query = query.Where("platform = ?", *filter.Platform)
	}
	if filter.Gender != nil {
		query = query.Where("gender = ?", *filter.Gender)
	}
	if filter.Country != nil {
		query = query.Where("country = ?", *filter.Country)
	}
	if filter.Tier != nil {
		query = query.Where("tier = ?", *filter.Tier)
	}
	if filter.MinFollowers != nil {
		query = query.Where("follower_count >= ?", *filter.MinFollowers)
	}
	if filter.MaxFollowers != nil {
		query = query.Where("follower_count <= ?", *filter.MaxFollowers)
	}
	if filter.MinEngagement != nil {
		query = query.Where("engagement_rate >= ?", *filter.MinEngagement)
	}
	if filter.MinOverall != nil {
		query = query.Where("overall_score >= ?", *filter.MinOverall)
	}
	return query
}

// ByFilter retrieves creators based on filter criteria
func (r *CreatorRepositoryImpl) ByFilter(ctx context.Context, filter models.CreatorFilter, orderBy string, limit, offset int) ([]*models.Creator, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Creator{})

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

	var creators []*models.Creator
	if err := query.Find(&creators).Error; err != nil {
		return nil, err
	}
	return creators, nil
}

// Count returns the number of creators matching the filter
func (r *CreatorRepositoryImpl) Count(ctx context.Context, filter models.CreatorFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Creator{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any creator matching the filter exists
func (r *CreatorRepositoryImpl) Exists(ctx context.Context, filter models.CreatorFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
