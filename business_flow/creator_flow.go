package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/amirphl/ugc-creator-finder/app/dto"
	"github.com/amirphl/ugc-creator-finder/config"
	"github.com/amirphl/ugc-creator-finder/models"
	"github.com/amirphl/ugc-creator-finder/repository"
	"github.com/amirphl/ugc-creator-finder/utils"
)

// databaseSortColumns whitelists the listing's ORDER BY targets
var databaseSortColumns = map[string]string{
	"overall_score":    "overall_score",
	"engagement_score": "engagement_score",
	"quality_score":    "quality_score",
	"relevance_score":  "relevance_score",
	"engagement_rate":  "engagement_rate",
	"follower_count":   "follower_count",
	"last_updated":     "last_updated",
}

// CreatorFlow represents stored-creator read operations
type CreatorFlow interface {
	GetDatabase(ctx context.Context, req *dto.DatabaseListingRequest, metadata *ClientMetadata) (*dto.DatabaseListingResponse, error)
	GetCreator(ctx context.Context, id uint, metadata *ClientMetadata) (*models.Creator, error)
	ResetSeen(ctx context.Context, metadata *ClientMetadata) (*dto.ResetSeenResponse, error)
}

// CreatorFlowImpl implements CreatorFlow over the creator store and the
// seen ledger, with a short-lived cache in front of the listing
type CreatorFlowImpl struct {
	creatorRepo repository.CreatorRepository
	seenRepo    repository.SeenCreatorRepository
	redisClient *redis.Client
	cacheConfig config.CacheConfig
}

// NewCreatorFlow creates a new creator flow instance
func NewCreatorFlow(
	creatorRepo repository.CreatorRepository,
	seenRepo repository.SeenCreatorRepository,
	redisClient *redis.Client,
	cacheConfig config.CacheConfig,
) CreatorFlow {
	return &CreatorFlowImpl{
		creatorRepo: creatorRepo,
		seenRepo:    seenRepo,
		redisClient: redisClient,
		cacheConfig: cacheConfig,
	}
}

// GetDatabase pages through stored creators. Only the gender filter
// touches the query; age bounds are accepted for interface parity but
// estimated ranges are too coarse to filter persisted rows on.
func (f *CreatorFlowImpl) GetDatabase(ctx context.Context, req *dto.DatabaseListingRequest, metadata *ClientMetadata) (*dto.DatabaseListingResponse, error) {
	if req == nil {
		return nil, NewBusinessError("DATABASE_VALIDATION_FAILED", "Listing request is nil", nil)
	}
	if req.Page < 0 {
		return nil, NewBusinessError("DATABASE_VALIDATION_FAILED", "Invalid page", ErrInvalidPage)
	}
	if req.PageSize < 1 || req.PageSize > 500 {
		return nil, NewBusinessError("DATABASE_VALIDATION_FAILED", "Invalid page size", ErrInvalidPageSize)
	}

	cacheKey := f.listingCacheKey(req)
	if cached := f.readCachedListing(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	filter := models.CreatorFilter{}
	if req.Gender != "" {
		filter.Gender = utils.ToPtr(req.Gender)
	}

	column, ok := databaseSortColumns[req.SortBy]
	if !ok {
		column = "overall_score"
	}
	orderBy := column + " DESC"

	rows, err := f.creatorRepo.ByFilter(ctx, filter, orderBy, req.PageSize, req.Page*req.PageSize)
	if err != nil {
		return nil, NewBusinessError("DATABASE_LISTING_FAILED", "Failed to list stored creators", err)
	}

	total, err := f.creatorRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("DATABASE_LISTING_FAILED", "Failed to count stored creators", err)
	}

	creators := make([]models.Creator, 0, len(rows))
	for _, row := range rows {
		creators = append(creators, *row)
	}

	resp := &dto.DatabaseListingResponse{
		Creators: creators,
		Total:    len(creators),
		DBTotal:  total,
		Page:     req.Page,
	}
	f.writeCachedListing(ctx, cacheKey, resp)
	return resp, nil
}

// GetCreator loads one stored creator by primary key
func (f *CreatorFlowImpl) GetCreator(ctx context.Context, id uint, metadata *ClientMetadata) (*models.Creator, error) {
	creator, err := f.creatorRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("CREATOR_LOOKUP_FAILED", "Failed to load creator", err)
	}
	if creator == nil {
		return nil, NewBusinessErrorf("CREATOR_NOT_FOUND", "Creator %d not found", ErrCreatorNotFound, id)
	}
	return creator, nil
}

// ResetSeen empties the seen ledger so every future exclude_seen search
// starts fresh
func (f *CreatorFlowImpl) ResetSeen(ctx context.Context, metadata *ClientMetadata) (*dto.ResetSeenResponse, error) {
	cleared, err := f.seenRepo.ClearAll(ctx)
	if err != nil {
		return nil, NewBusinessError("SEEN_RESET_FAILED", "Failed to clear seen ledger", err)
	}

	log.Printf("creator: cleared %d seen-ledger entries", cleared)
	return &dto.ResetSeenResponse{
		Message: "Seen creators cleared",
		Cleared: cleared,
	}, nil
}

func (f *CreatorFlowImpl) listingCacheKey(req *dto.DatabaseListingRequest) string {
	suffix := fmt.Sprintf("%s:%s:%s:%d:%d", utils.DatabaseListingCacheKey, req.Gender, req.SortBy, req.Page, req.PageSize)
	return redisKey(f.cacheConfig, suffix)
}

func (f *CreatorFlowImpl) readCachedListing(ctx context.Context, key string) *dto.DatabaseListingResponse {
	if f.redisClient == nil || !f.cacheConfig.Enabled {
		return nil
	}

	raw, err := f.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("creator: listing cache read failed: %v", err)
		}
		return nil
	}

	var resp dto.DatabaseListingResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		log.Printf("creator: listing cache decode failed: %v", err)
		return nil
	}
	return &resp
}

func (f *CreatorFlowImpl) writeCachedListing(ctx context.Context, key string, resp *dto.DatabaseListingResponse) {
	if f.redisClient == nil || !f.cacheConfig.Enabled {
		return
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		log.Printf("creator: listing cache encode failed: %v", err)
		return
	}
	if err := f.redisClient.Set(ctx, key, raw, f.cacheConfig.DefaultTTL).Err(); err != nil {
		log.Printf("creator: listing cache write failed: %v", err)
	}
}
