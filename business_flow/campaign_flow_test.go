package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/amirphl/ugc-creator-finder/app/dto"
	"github.com/amirphl/ugc-creator-finder/models"
	"github.com/amirphl/ugc-creator-finder/utils"
)

// fakeCampaignRepo is an in-memory campaign store keyed by id
type fakeCampaignRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Campaign
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{nextID: 1, rows: map[uint]*models.Campaign{}}
}

func (f *fakeCampaignRepo) ByID(ctx context.Context, id uint) (*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id], nil
}

func (f *fakeCampaignRepo) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Campaign, 0, len(f.rows))
	for _, c := range f.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeCampaignRepo) Save(ctx context.Context, c *models.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == 0 {
		c.ID = f.nextID
		f.nextID++
	}
	f.rows[c.ID] = c
	return nil
}

func (f *fakeCampaignRepo) SaveBatch(ctx context.Context, cs []*models.Campaign) error { return nil }

func (f *fakeCampaignRepo) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

func (f *fakeCampaignRepo) Exists(ctx context.Context, filter models.CampaignFilter) (bool, error) {
	return false, nil
}

func (f *fakeCampaignRepo) ByUUID(ctx context.Context, u string) (*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.rows {
		if c.UUID.String() == u {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCampaignRepo) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

// fakeLinkRepo is an in-memory campaign-creator link store
type fakeLinkRepo struct {
	mu       sync.Mutex
	nextID   uint
	rows     map[uint]*models.CampaignCreator
	creators map[uint]*models.Creator
}

func newFakeLinkRepo(creators map[uint]*models.Creator) *fakeLinkRepo {
	return &fakeLinkRepo{nextID: 1, rows: map[uint]*models.CampaignCreator{}, creators: creators}
}

func (f *fakeLinkRepo) ByID(ctx context.Context, id uint) (*models.CampaignCreator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id], nil
}

func (f *fakeLinkRepo) ByFilter(ctx context.Context, filter models.CampaignCreatorFilter, orderBy string, limit, offset int) ([]*models.CampaignCreator, error) {
	return nil, nil
}

func (f *fakeLinkRepo) Save(ctx context.Context, link *models.CampaignCreator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if link.ID == 0 {
		link.ID = f.nextID
		f.nextID++
	}
	f.rows[link.ID] = link
	return nil
}

func (f *fakeLinkRepo) SaveBatch(ctx context.Context, links []*models.CampaignCreator) error {
	return nil
}

func (f *fakeLinkRepo) Count(ctx context.Context, filter models.CampaignCreatorFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, link := range f.rows {
		if filter.CampaignID == nil || link.CampaignID == *filter.CampaignID {
			n++
		}
	}
	return n, nil
}

func (f *fakeLinkRepo) Exists(ctx context.Context, filter models.CampaignCreatorFilter) (bool, error) {
	return false, nil
}

func (f *fakeLinkRepo) ByCampaignAndCreator(ctx context.Context, campaignID, creatorID uint) (*models.CampaignCreator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, link := range f.rows {
		if link.CampaignID == campaignID && link.CreatorID == creatorID {
			return link, nil
		}
	}
	return nil, nil
}

func (f *fakeLinkRepo) ListByCampaign(ctx context.Context, campaignID uint) ([]*models.CampaignCreator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.CampaignCreator{}
	for _, link := range f.rows {
		if link.CampaignID != campaignID {
			continue
		}
		clone := *link
		clone.Creator = f.creators[link.CreatorID]
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

func (f *fakeLinkRepo) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

func (f *fakeLinkRepo) DeleteByCampaign(ctx context.Context, campaignID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, link := range f.rows {
		if link.CampaignID == campaignID {
			delete(f.rows, id)
		}
	}
	return nil
}

type campaignFixture struct {
	campaignRepo *fakeCampaignRepo
	linkRepo     *fakeLinkRepo
	creatorRepo  *fakeCreatorRepo
	flow         CampaignFlow
}

func newCampaignFixture() *campaignFixture {
	creatorRepo := newFakeCreatorRepo()
	creatorRepo.byIDRows[1] = &models.Creator{
		ID:                1,
		UUID:              uuid.New(),
		ExternalID:        "ig-1",
		Name:              "Sarah Mitchell",
		Platform:          "instagram",
		Handle:            "wellnessmom",
		ProfileURL:        "https://instagram.com/wellnessmom",
		FollowerCount:     45000,
		EngagementRate:    4.2,
		OverallScore:      59.2,
		EngagementScore:   100,
		QualityScore:      60,
		RelevanceScore:    4,
		Bio:               "Mom of 3 sharing wellness tips",
		EstimatedAgeRange: utils.ToPtr("45-49"),
		Gender:            utils.ToPtr("female"),
	}
	creatorRepo.byIDRows[2] = &models.Creator{
		ID:         2,
		UUID:       uuid.New(),
		ExternalID: "tt-2",
		Name:       "Dana Brooks",
		Platform:   "tiktok",
		Handle:     "danacooks",
	}

	fx := &campaignFixture{
		campaignRepo: newFakeCampaignRepo(),
		linkRepo:     newFakeLinkRepo(creatorRepo.byIDRows),
		creatorRepo:  creatorRepo,
	}
	fx.flow = NewCampaignFlow(fx.campaignRepo, fx.linkRepo, fx.creatorRepo)
	return fx
}

func (fx *campaignFixture) createCampaign(t *testing.T, name string) *dto.CampaignDTO {
	t.Helper()
	campaign, err := fx.flow.CreateCampaign(context.Background(), &dto.CreateCampaignRequest{
		Name:    name,
		Filters: map[string]any{"niche": "wellness", "min_followers": float64(1000)},
	}, nil)
	require.NoError(t, err)
	return campaign
}

func TestCreateCampaign(t *testing.T) {
	fx := newCampaignFixture()

	campaign := fx.createCampaign(t, "Fall Wellness Push")
	assert.Equal(t, "Fall Wellness Push", campaign.Name)
	assert.NotEmpty(t, campaign.UUID)
	assert.Equal(t, 0, campaign.CreatorCount)
	assert.Equal(t, "wellness", campaign.Filters["niche"])

	_, err := fx.flow.CreateCampaign(context.Background(), &dto.CreateCampaignRequest{Name: "   "}, nil)
	assert.True(t, errors.Is(err, ErrCampaignNameRequired))
}

func TestListCampaignsWithCounts(t *testing.T) {
	fx := newCampaignFixture()
	first := fx.createCampaign(t, "First")
	fx.createCampaign(t, "Second")

	_, err := fx.flow.AddCreator(context.Background(), first.UUID, &dto.AddCampaignCreatorRequest{CreatorID: 1}, nil)
	require.NoError(t, err)

	resp, err := fx.flow.ListCampaigns(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, resp.Campaigns, 2)
	assert.Equal(t, int64(2), resp.Total)

	counts := map[string]int{}
	for _, c := range resp.Campaigns {
		counts[c.Name] = c.CreatorCount
	}
	assert.Equal(t, 1, counts["First"])
	assert.Equal(t, 0, counts["Second"])
}

func TestGetCampaignWithCreators(t *testing.T) {
	fx := newCampaignFixture()
	campaign := fx.createCampaign(t, "Shortlist")

	_, err := fx.flow.AddCreator(context.Background(), campaign.UUID, &dto.AddCampaignCreatorRequest{CreatorID: 1, Notes: "great fit"}, nil)
	require.NoError(t, err)

	detail, err := fx.flow.GetCampaign(context.Background(), campaign.UUID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Shortlist", detail.Campaign.Name)
	assert.Equal(t, 1, detail.Campaign.CreatorCount)
	require.Len(t, detail.Creators, 1)
	assert.Equal(t, "wellnessmom", detail.Creators[0].Creator.Handle)
	assert.Equal(t, "great fit", detail.Creators[0].Notes)

	_, err = fx.flow.GetCampaign(context.Background(), uuid.NewString(), nil)
	assert.True(t, errors.Is(err, ErrCampaignNotFound))

	_, err = fx.flow.GetCampaign(context.Background(), "", nil)
	assert.True(t, errors.Is(err, ErrCampaignUUIDRequired))
}

func TestUpdateCampaign(t *testing.T) {
	fx := newCampaignFixture()
	campaign := fx.createCampaign(t, "Old Name")

	updated, err := fx.flow.UpdateCampaign(context.Background(), campaign.UUID, &dto.UpdateCampaignRequest{
		Name: utils.ToPtr("New Name"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	// untouched filters survive a rename
	assert.Equal(t, "wellness", updated.Filters["niche"])

	_, err = fx.flow.UpdateCampaign(context.Background(), campaign.UUID, &dto.UpdateCampaignRequest{
		Name: utils.ToPtr("  "),
	}, nil)
	assert.True(t, errors.Is(err, ErrCampaignNameRequired))
}

func TestDeleteCampaignCascades(t *testing.T) {
	fx := newCampaignFixture()
	campaign := fx.createCampaign(t, "Doomed")

	_, err := fx.flow.AddCreator(context.Background(), campaign.UUID, &dto.AddCampaignCreatorRequest{CreatorID: 1}, nil)
	require.NoError(t, err)

	require.NoError(t, fx.flow.DeleteCampaign(context.Background(), campaign.UUID, nil))

	_, err = fx.flow.GetCampaign(context.Background(), campaign.UUID, nil)
	assert.True(t, errors.Is(err, ErrCampaignNotFound))
	assert.Empty(t, fx.linkRepo.rows)
}

func TestAddCreatorValidation(t *testing.T) {
	fx := newCampaignFixture()
	campaign := fx.createCampaign(t, "Shortlist")

	entry, err := fx.flow.AddCreator(context.Background(), campaign.UUID, &dto.AddCampaignCreatorRequest{CreatorID: 1, Notes: "note"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sarah Mitchell", entry.Creator.Name)

	_, err = fx.flow.AddCreator(context.Background(), campaign.UUID, &dto.AddCampaignCreatorRequest{CreatorID: 1}, nil)
	assert.True(t, errors.Is(err, ErrCreatorAlreadyInList))

	_, err = fx.flow.AddCreator(context.Background(), campaign.UUID, &dto.AddCampaignCreatorRequest{CreatorID: 42}, nil)
	assert.True(t, errors.Is(err, ErrCreatorNotFound))

	_, err = fx.flow.AddCreator(context.Background(), uuid.NewString(), &dto.AddCampaignCreatorRequest{CreatorID: 1}, nil)
	assert.True(t, errors.Is(err, ErrCampaignNotFound))
}

func TestRemoveCreator(t *testing.T) {
	fx := newCampaignFixture()
	campaign := fx.createCampaign(t, "Shortlist")

	_, err := fx.flow.AddCreator(context.Background(), campaign.UUID, &dto.AddCampaignCreatorRequest{CreatorID: 1}, nil)
	require.NoError(t, err)

	require.NoError(t, fx.flow.RemoveCreator(context.Background(), campaign.UUID, 1, nil))

	err = fx.flow.RemoveCreator(context.Background(), campaign.UUID, 1, nil)
	assert.True(t, errors.Is(err, ErrCreatorNotInCampaign))
}

func TestExportCampaignCSV(t *testing.T) {
	fx := newCampaignFixture()
	campaign := fx.createCampaign(t, "Fall Wellness Push")

	_, err := fx.flow.AddCreator(context.Background(), campaign.UUID, &dto.AddCampaignCreatorRequest{CreatorID: 1, Notes: "lead"}, nil)
	require.NoError(t, err)

	export, err := fx.flow.ExportCampaign(context.Background(), campaign.UUID, "csv", nil)
	require.NoError(t, err)
	assert.Equal(t, "campaign_Fall_Wellness_Push.csv", export.FileName)
	assert.Equal(t, "text/csv", export.ContentType)

	records, err := csv.NewReader(bytes.NewReader(export.Content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportColumns, records[0])
	assert.Equal(t, "Sarah Mitchell", records[1][0])
	assert.Equal(t, "instagram", records[1][1])
	assert.Equal(t, "45000", records[1][4])
	assert.Equal(t, "4.20", records[1][5])
	assert.Equal(t, "45-49", records[1][10])
	assert.Equal(t, "female", records[1][11])
	assert.Equal(t, "lead", records[1][13])
}

func TestExportCampaignXLSX(t *testing.T) {
	fx := newCampaignFixture()
	campaign := fx.createCampaign(t, "Shortlist")

	_, err := fx.flow.AddCreator(context.Background(), campaign.UUID, &dto.AddCampaignCreatorRequest{CreatorID: 2}, nil)
	require.NoError(t, err)

	export, err := fx.flow.ExportCampaign(context.Background(), campaign.UUID, "xlsx", nil)
	require.NoError(t, err)
	assert.Equal(t, "campaign_Shortlist.xlsx", export.FileName)

	book, err := excelize.OpenReader(bytes.NewReader(export.Content))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Shortlist")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, "Dana Brooks", rows[1][0])
	assert.Equal(t, "tiktok", rows[1][1])
}

func TestExportCampaignUnsupportedFormat(t *testing.T) {
	fx := newCampaignFixture()
	campaign := fx.createCampaign(t, "Shortlist")

	_, err := fx.flow.ExportCampaign(context.Background(), campaign.UUID, "pdf", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedExportFormat))
}
