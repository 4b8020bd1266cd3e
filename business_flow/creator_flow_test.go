package businessflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"github.com/amirphl/ugc-creator-finder/app/dto"
	"github.com/amirphl/ugc-creator-finder/config"
	"github.com/amirphl/ugc-creator-finder/models"
	"github.com/amirphl/ugc-creator-finder/utils"
)

func newCreatorFlowFixture() (*fakeCreatorRepo, *fakeSeenRepo, CreatorFlow) {
	creatorRepo := newFakeCreatorRepo()
	seenRepo := newFakeSeenRepo()
	flow := NewCreatorFlow(creatorRepo, seenRepo, nil, config.CacheConfig{})
	return creatorRepo, seenRepo, flow
}

func listingRequest() *dto.DatabaseListingRequest {
	return &dto.DatabaseListingRequest{PageSize: 100}
}

func TestGetDatabaseDefaults(t *testing.T) {
	creatorRepo, _, flow := newCreatorFlowFixture()
	creatorRepo.rows = []*models.Creator{
		{ExternalID: "ig-1", Platform: "instagram", OverallScore: 82.5},
		{ExternalID: "ig-2", Platform: "instagram", OverallScore: 61.0},
	}

	resp, err := flow.GetDatabase(context.Background(), listingRequest(), nil)
	require.NoError(t, err)

	assert.Len(t, resp.Creators, 2)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 0, resp.Page)
	assert.Equal(t, "overall_score DESC", creatorRepo.lastOrder)
	assert.Equal(t, 100, creatorRepo.lastLimit)
	assert.Equal(t, 0, creatorRepo.lastOffset)
	assert.Nil(t, creatorRepo.lastFilter.Gender)
}

func TestGetDatabaseGenderFilterAndPaging(t *testing.T) {
	creatorRepo, _, flow := newCreatorFlowFixture()

	req := listingRequest()
	req.Gender = "female"
	req.Page = 2
	req.PageSize = 25
	req.SortBy = "follower_count"

	_, err := flow.GetDatabase(context.Background(), req, nil)
	require.NoError(t, err)

	require.NotNil(t, creatorRepo.lastFilter.Gender)
	assert.Equal(t, "female", *creatorRepo.lastFilter.Gender)
	assert.Equal(t, "follower_count DESC", creatorRepo.lastOrder)
	assert.Equal(t, 25, creatorRepo.lastLimit)
	assert.Equal(t, 50, creatorRepo.lastOffset)
}

func TestGetDatabaseRejectsUnknownSortColumn(t *testing.T) {
	creatorRepo, _, flow := newCreatorFlowFixture()

	req := listingRequest()
	req.SortBy = "id; DROP TABLE creators"
	_, err := flow.GetDatabase(context.Background(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, "overall_score DESC", creatorRepo.lastOrder)
}

func TestGetDatabaseSortColumnsExistOnModel(t *testing.T) {
	parsed, err := schema.Parse(&models.Creator{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	columns := make(map[string]bool)
	for _, field := range parsed.Fields {
		if field.DBName != "" {
			columns[field.DBName] = true
		}
	}

	for key, column := range databaseSortColumns {
		assert.True(t, columns[column], "sort key %q maps to missing column %q", key, column)
	}
}

func TestGetDatabaseSortByLastUpdated(t *testing.T) {
	creatorRepo, _, flow := newCreatorFlowFixture()

	req := listingRequest()
	req.SortBy = "last_updated"
	_, err := flow.GetDatabase(context.Background(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, "last_updated DESC", creatorRepo.lastOrder)

	// created_at is not a creator column; it must fall back, not leak
	// into ORDER BY
	req = listingRequest()
	req.SortBy = "created_at"
	_, err = flow.GetDatabase(context.Background(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, "overall_score DESC", creatorRepo.lastOrder)
}

func TestGetDatabaseInvalidPagination(t *testing.T) {
	_, _, flow := newCreatorFlowFixture()

	req := listingRequest()
	req.Page = -1
	_, err := flow.GetDatabase(context.Background(), req, nil)
	assert.True(t, errors.Is(err, ErrInvalidPage))

	req = listingRequest()
	req.PageSize = 1000
	_, err = flow.GetDatabase(context.Background(), req, nil)
	assert.True(t, errors.Is(err, ErrInvalidPageSize))
}

func TestGetCreator(t *testing.T) {
	creatorRepo, _, flow := newCreatorFlowFixture()
	creatorRepo.byIDRows[7] = &models.Creator{
		ExternalID: "ig-7",
		Platform:   "instagram",
		Handle:     "wellnessmom",
		Gender:     utils.ToPtr("female"),
	}

	creator, err := flow.GetCreator(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Equal(t, "wellnessmom", creator.Handle)

	_, err = flow.GetCreator(context.Background(), 99, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCreatorNotFound))

	var bizErr *BusinessError
	require.True(t, errors.As(err, &bizErr))
	assert.Equal(t, "CREATOR_NOT_FOUND", bizErr.Code)
}

func TestResetSeen(t *testing.T) {
	_, seenRepo, flow := newCreatorFlowFixture()
	require.NoError(t, seenRepo.Add(context.Background(), "tw-1", "twitter"))
	require.NoError(t, seenRepo.Add(context.Background(), "tw-2", "twitter"))

	resp, err := flow.ResetSeen(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Cleared)
	assert.Equal(t, "Seen creators cleared", resp.Message)

	seen, err := seenRepo.Contains(context.Background(), "tw-1")
	require.NoError(t, err)
	assert.False(t, seen)

	// a second reset finds nothing left
	resp, err = flow.ResetSeen(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Cleared)
}
