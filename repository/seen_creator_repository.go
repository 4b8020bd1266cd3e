package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/ugc-creator-finder/models"
	"github.com/amirphl/ugc-creator-finder/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeenCreatorRepositoryImpl implements SeenCreatorRepository interface
type SeenCreatorRepositoryImpl struct {
	*BaseRepository[models.SeenCreator, models.SeenCreatorFilter]
}

// NewSeenCreatorRepository creates a new seen-creator repository
func NewSeenCreatorRepository(db *gorm.DB) SeenCreatorRepository {
	return &SeenCreatorRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SeenCreator, models.SeenCreatorFilter](db),
	}
}

// Contains reports whether an external ID is already in the ledger
func (r *SeenCreatorRepositoryImpl) Contains(ctx context.Context, externalID string) (bool, error) {
	return r.Exists(ctx, models.SeenCreatorFilter{ExternalID: &externalID})
}

// Add records an external ID as seen, ignoring duplicates
func (r *SeenCreatorRepositoryImpl) Add(ctx context.Context, externalID, platform string) error {
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

	row := &models.SeenCreator{
		ExternalID: externalID,
		Platform:   platform,
		CreatedAt:  utils.UTCNow(),
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to mark creator %s as seen: %w", externalID, err)
	}

	return nil
}

// ClearAll empties the ledger and returns the number of rows removed
func (r *SeenCreatorRepositoryImpl) ClearAll(ctx context.Context) (int64, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
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

	result := db.Where("1 = 1").Delete(&models.SeenCreator{})
	if result.Error != nil {
		err = fmt.Errorf("failed to clear seen creators: %w", result.Error)
		return 0, err
	}

	return result.RowsAffected, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *SeenCreatorRepositoryImpl) applyFilter(query *gorm.DB, filter models.SeenCreatorFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.ExternalID != nil {
		query = query.Where("external_id = ?", *filter.ExternalID)
	}
	if filter.Platform != nil {
		query = query.Where("platform = ?", *filter.Platform)
	}
	return query
}

// ByFilter retrieves ledger rows based on filter criteria
func (r *SeenCreatorRepositoryImpl) ByFilter(ctx context.Context, filter models.SeenCreatorFilter, orderBy string, limit, offset int) ([]*models.SeenCreator, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.SeenCreator{})

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

	var rows []*models.SeenCreator
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of ledger rows matching the filter
func (r *SeenCreatorRepositoryImpl) Count(ctx context.Context, filter models.SeenCreatorFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.SeenCreator{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any ledger row matching the filter exists
func (r *SeenCreatorRepositoryImpl) Exists(ctx context.Context, filter models.SeenCreatorFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
