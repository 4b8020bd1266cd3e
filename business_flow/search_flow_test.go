package businessflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/ugc-creator-finder/app/dto"
	"github.com/amirphl/ugc-creator-finder/app/services"
	"github.com/amirphl/ugc-creator-finder/models"
)

// fakeSource returns canned raw creators, optionally failing
type fakeSource struct {
	name       string
	configured bool
	raws       []services.RawCreator
	err        error
	calls      int
	mu         sync.Mutex
}

func (f *fakeSource) Name() string     { return f.name }
func (f *fakeSource) Configured() bool { return f.configured }

func (f *fakeSource) Search(ctx context.Context, q services.SourceQuery) ([]services.RawCreator, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.raws, nil
}

// fakeCreatorRepo records upserts keyed by external_id and captures the
// last listing query
type fakeCreatorRepo struct {
	mu       sync.Mutex
	upserts  map[string]int
	written  map[string]models.Creator
	stored   int64
	countErr error

	rows       []*models.Creator
	byIDRows   map[uint]*models.Creator
	lastFilter models.CreatorFilter
	lastOrder  string
	lastLimit  int
	lastOffset int
}

func newFakeCreatorRepo() *fakeCreatorRepo {
	return &fakeCreatorRepo{
		upserts:  map[string]int{},
		written:  map[string]models.Creator{},
		byIDRows: map[uint]*models.Creator{},
	}
}

func (f *fakeCreatorRepo) ByID(ctx context.Context, id uint) (*models.Creator, error) {
	return f.byIDRows[id], nil
}

func (f *fakeCreatorRepo) ByFilter(ctx context.Context, filter models.CreatorFilter, orderBy string, limit, offset int) ([]*models.Creator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	f.lastOrder = orderBy
	f.lastLimit = limit
	f.lastOffset = offset
	return f.rows, nil
}

func (f *fakeCreatorRepo) Save(ctx context.Context, c *models.Creator) error { return nil }

func (f *fakeCreatorRepo) SaveBatch(ctx context.Context, cs []*models.Creator) error { return nil }

func (f *fakeCreatorRepo) Count(ctx context.Context, filter models.CreatorFilter) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored + int64(len(f.upserts)), nil
}

func (f *fakeCreatorRepo) Exists(ctx context.Context, filter models.CreatorFilter) (bool, error) {
	return false, nil
}

func (f *fakeCreatorRepo) ByUUID(ctx context.Context, uuid string) (*models.Creator, error) {
	return nil, nil
}

func (f *fakeCreatorRepo) ByExternalID(ctx context.Context, externalID string) (*models.Creator, error) {
	return nil, nil
}

func (f *fakeCreatorRepo) UpsertByExternalID(ctx context.Context, c *models.Creator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts[c.ExternalID]++
	f.written[c.ExternalID] = *c
	return nil
}

// fakeSeenRepo is an in-memory seen ledger
type fakeSeenRepo struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeSeenRepo(ids ...string) *fakeSeenRepo {
	seen := map[string]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	return &fakeSeenRepo{seen: seen}
}

func (f *fakeSeenRepo) ByID(ctx context.Context, id uint) (*models.SeenCreator, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSeenRepo) ByFilter(ctx context.Context, filter models.SeenCreatorFilter, orderBy string, limit, offset int) ([]*models.SeenCreator, error) {
	return nil, nil
}

func (f *fakeSeenRepo) Save(ctx context.Context, s *models.SeenCreator) error { return nil }

func (f *fakeSeenRepo) SaveBatch(ctx context.Context, ss []*models.SeenCreator) error { return nil }

func (f *fakeSeenRepo) Count(ctx context.Context, filter models.SeenCreatorFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.seen)), nil
}

func (f *fakeSeenRepo) Exists(ctx context.Context, filter models.SeenCreatorFilter) (bool, error) {
	return false, nil
}

func (f *fakeSeenRepo) Contains(ctx context.Context, externalID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[externalID], nil
}

func (f *fakeSeenRepo) Add(ctx context.Context, externalID, platform string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[externalID] = true
	return nil
}

func (f *fakeSeenRepo) ClearAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.seen))
	f.seen = map[string]bool{}
	return n, nil
}

func rawCreator(externalID, username string, followers int, rate float64, bio string) services.RawCreator {
	return services.RawCreator{
		ExternalID: externalID,
		Profile: services.RawProfile{
			Fullname:       username,
			Username:       username,
			Bio:            bio,
			Followers:      followers,
			EngagementRate: rate,
			PostCount:      120,
		},
	}
}

type searchFixture struct {
	modash      *fakeSource
	phyllo      *fakeSource
	twitter     *fakeSource
	tiktok      *fakeSource
	backstage   *fakeSource
	creatorRepo *fakeCreatorRepo
	seenRepo    *fakeSeenRepo
	flow        SearchFlow
}

func newSearchFixture() *searchFixture {
	fx := &searchFixture{
		modash:      &fakeSource{name: "modash", configured: true},
		phyllo:      &fakeSource{name: "phyllo", configured: true},
		twitter:     &fakeSource{name: "twitter", configured: false},
		tiktok:      &fakeSource{name: "tiktok", configured: false},
		backstage:   &fakeSource{name: "backstage", configured: true},
		creatorRepo: newFakeCreatorRepo(),
		seenRepo:    newFakeSeenRepo(),
	}
	fx.flow = NewSearchFlow(
		fx.modash, fx.phyllo, fx.twitter, fx.tiktok, fx.backstage,
		services.NewEnrichmentService(),
		services.NewDefaultScoringService(),
		fx.creatorRepo, fx.seenRepo, nil,
	)
	return fx
}

func searchRequest(platform string) *dto.SearchCreatorsRequest {
	return &dto.SearchCreatorsRequest{
		Platform: platform,
		Niche:    "wellness",
		PageSize: 20,
	}
}

func TestSearchCreatorsSinglePlatform(t *testing.T) {
	fx := newSearchFixture()
	fx.modash.raws = []services.RawCreator{
		rawCreator("ig-1", "wellnessmom", 45000, 4.2, "Mom of 3 sharing wellness tips"),
		rawCreator("ig-2", "fitover40", 12000, 1.8, "Fitness coach for women over 40"),
	}

	resp, err := fx.flow.SearchCreators(context.Background(), searchRequest("instagram"), NewClientMetadata("127.0.0.1", "test"))
	require.NoError(t, err)
	require.Len(t, resp.Creators, 2)

	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, int64(2), resp.DBTotal)
	assert.Equal(t, "instagram", resp.Creators[0].Platform)
	// rate 4.2 on instagram maxes the engagement score, so it sorts first
	assert.Equal(t, "ig-1", resp.Creators[0].ExternalID)
	assert.Equal(t, 1, fx.creatorRepo.upserts["ig-1"])
	assert.Equal(t, 1, fx.creatorRepo.upserts["ig-2"])
}

func TestSearchCreatorsUnsupportedPlatform(t *testing.T) {
	fx := newSearchFixture()

	_, err := fx.flow.SearchCreators(context.Background(), searchRequest("myspace"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedPlatform))

	var bizErr *BusinessError
	require.True(t, errors.As(err, &bizErr))
	assert.Equal(t, "UNSUPPORTED_PLATFORM", bizErr.Code)
}

func TestSearchCreatorsInvalidPagination(t *testing.T) {
	fx := newSearchFixture()

	req := searchRequest("instagram")
	req.Page = -1
	_, err := fx.flow.SearchCreators(context.Background(), req, nil)
	assert.True(t, errors.Is(err, ErrInvalidPage))

	req = searchRequest("instagram")
	req.PageSize = 0
	_, err = fx.flow.SearchCreators(context.Background(), req, nil)
	assert.True(t, errors.Is(err, ErrInvalidPageSize))
}

func TestSearchCreatorsAllPlatformsDeterministicOrder(t *testing.T) {
	fx := newSearchFixture()
	// twitter and tiktok are unconfigured, so the discovery API serves
	// every non-backstage platform in this scenario
	fx.modash.raws = []services.RawCreator{
		rawCreator("shared-1", "crossplatform", 30000, 2.0, "Lifestyle content daily"),
	}
	fx.backstage.raws = []services.RawCreator{
		{
			ExternalID: "bs-1",
			Profile:    services.RawProfile{Username: "stageartist", Followers: 8000, EngagementRate: 2.0, Bio: "Actress and mom"},
			Backstage:  &services.BackstageDetails{AgeRange: "45-49", Gender: "female", Country: "US"},
		},
	}

	req := searchRequest("all")
	req.SortBy = "follower_count"
	resp, err := fx.flow.SearchCreators(context.Background(), req, nil)
	require.NoError(t, err)

	// one record per dispatched platform, sorted by followers descending
	require.Len(t, resp.Creators, 4)
	platforms := []string{}
	for _, c := range resp.Creators {
		platforms = append(platforms, c.Platform)
	}
	assert.Equal(t, []string{"twitter", "tiktok", "instagram", "backstage"}, platforms)
	// every platform shares one external_id here, so it upserts once
	assert.Equal(t, 1, fx.creatorRepo.upserts["shared-1"])
	assert.Equal(t, 1, fx.creatorRepo.upserts["bs-1"])
}

func TestSearchCreatorsPlatformFailureIsolation(t *testing.T) {
	fx := newSearchFixture()
	fx.modash.err = errors.New("upstream 502")
	fx.backstage.raws = []services.RawCreator{
		{
			ExternalID: "bs-1",
			Profile:    services.RawProfile{Username: "stageartist", Followers: 8000, EngagementRate: 2.0, Bio: "Voice actress"},
			Backstage:  &services.BackstageDetails{AgeRange: "50-54", Gender: "female", Country: "US"},
		},
	}

	resp, err := fx.flow.SearchCreators(context.Background(), searchRequest("all"), nil)
	require.NoError(t, err)
	require.Len(t, resp.Creators, 1)
	assert.Equal(t, "backstage", resp.Creators[0].Platform)
}

func TestSearchCreatorsExcludeSeen(t *testing.T) {
	fx := newSearchFixture()
	fx.seenRepo = newFakeSeenRepo("ig-old")
	fx.flow = NewSearchFlow(
		fx.modash, fx.phyllo, fx.twitter, fx.tiktok, fx.backstage,
		services.NewEnrichmentService(), services.NewDefaultScoringService(),
		fx.creatorRepo, fx.seenRepo, nil,
	)
	fx.modash.raws = []services.RawCreator{
		rawCreator("ig-old", "alreadyseen", 20000, 2.0, "Travel blogger"),
		rawCreator("ig-new", "freshface", 15000, 2.0, "Home decor ideas"),
	}

	req := searchRequest("instagram")
	req.ExcludeSeen = true
	resp, err := fx.flow.SearchCreators(context.Background(), req, nil)
	require.NoError(t, err)

	require.Len(t, resp.Creators, 1)
	assert.Equal(t, "ig-new", resp.Creators[0].ExternalID)

	// the survivor is now in the ledger, so a rerun returns nothing
	resp, err = fx.flow.SearchCreators(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Creators)
}

func TestSearchCreatorsGenderFilterLenient(t *testing.T) {
	fx := newSearchFixture()
	fx.modash.raws = []services.RawCreator{
		rawCreator("ig-1", "mysteryuser", 20000, 2.0, "Photos and videos"),
		rawCreator("ig-2", "wellnessmom", 18000, 2.0, "Mom of two, she/her"),
	}

	req := searchRequest("instagram")
	req.Gender = "female"
	resp, err := fx.flow.SearchCreators(context.Background(), req, nil)
	require.NoError(t, err)

	// discovery data is not live, so an unknown gender passes
	assert.Len(t, resp.Creators, 2)
}

func TestSearchCreatorsGenderFilterStrictDemo(t *testing.T) {
	fx := newSearchFixture()
	fx.modash.raws = []services.RawCreator{
		rawCreator("ig-1", "mysteryuser", 20000, 2.0, "Photos and videos"),
		rawCreator("ig-2", "wellnessmom", 18000, 2.0, "Mom of two, she/her"),
	}

	req := searchRequest("instagram")
	req.Gender = "female"
	req.StrictDemo = true
	resp, err := fx.flow.SearchCreators(context.Background(), req, nil)
	require.NoError(t, err)

	require.Len(t, resp.Creators, 1)
	assert.Equal(t, "ig-2", resp.Creators[0].ExternalID)
}

func TestSearchCreatorsAgeOverlapFilter(t *testing.T) {
	fx := newSearchFixture()
	fx.modash.raws = []services.RawCreator{
		rawCreator("ig-in-band", "midlifemaven", 20000, 2.0, "Born 1978, loving life"),
		rawCreator("ig-unknown", "agelesswonder", 18000, 2.0, "Coffee and sunshine"),
	}

	req := searchRequest("instagram")
	req.AgeMin = 40
	req.AgeMax = 60
	resp, err := fx.flow.SearchCreators(context.Background(), req, nil)
	require.NoError(t, err)

	// the 45-49 estimate overlaps, the unknown one passes leniently
	assert.Len(t, resp.Creators, 2)

	req.StrictDemo = true
	resp, err = fx.flow.SearchCreators(context.Background(), req, nil)
	require.NoError(t, err)
	require.Len(t, resp.Creators, 1)
	assert.Equal(t, "ig-in-band", resp.Creators[0].ExternalID)
}

func TestSearchCreatorsCountryFilter(t *testing.T) {
	fx := newSearchFixture()
	fx.backstage.raws = []services.RawCreator{
		{
			ExternalID: "bs-us",
			Profile:    services.RawProfile{Username: "austinmom", Followers: 9000, EngagementRate: 2.0, Bio: "Austin based"},
			Backstage:  &services.BackstageDetails{AgeRange: "45-49", Gender: "female", Country: "US"},
		},
		{
			ExternalID: "bs-uk",
			Profile:    services.RawProfile{Username: "londonlass", Followers: 9500, EngagementRate: 2.0, Bio: "London based"},
			Backstage:  &services.BackstageDetails{AgeRange: "45-49", Gender: "female", Country: "GB"},
		},
	}

	req := searchRequest("backstage")
	req.Country = "US"
	resp, err := fx.flow.SearchCreators(context.Background(), req, nil)
	require.NoError(t, err)

	require.Len(t, resp.Creators, 1)
	assert.Equal(t, "bs-us", resp.Creators[0].ExternalID)
}

func TestSearchCreatorsSortBy(t *testing.T) {
	fx := newSearchFixture()
	fx.modash.raws = []services.RawCreator{
		rawCreator("ig-small", "smallbuthot", 5000, 4.0, "Content"),
		rawCreator("ig-big", "bigandcold", 90000, 0.5, "Content"),
	}

	req := searchRequest("instagram")
	req.SortBy = "follower_count"
	resp, err := fx.flow.SearchCreators(context.Background(), req, nil)
	require.NoError(t, err)
	require.Len(t, resp.Creators, 2)
	assert.Equal(t, "ig-big", resp.Creators[0].ExternalID)

	req.SortBy = "engagement_rate"
	resp, err = fx.flow.SearchCreators(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, "ig-small", resp.Creators[0].ExternalID)

	// unknown fields fall back to the overall score
	req.SortBy = "shoe_size"
	resp, err = fx.flow.SearchCreators(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, resp.Creators[0].OverallScore, sortValue(resp.Creators[0], "shoe_size"))
}

func TestParseAgeRange(t *testing.T) {
	tests := []struct {
		name  string
		input string
		lo    int
		hi    int
		ok    bool
	}{
		{"standard band", "45-49", 45, 49, true},
		{"open ended", "45+", 45, 999, true},
		{"bare number", "52", 52, 61, true},
		{"spaced", " 40 - 60 ", 40, 60, true},
		{"garbage", "unknown", 0, 0, false},
		{"empty", "", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, ok := parseAgeRange(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.lo, lo)
				assert.Equal(t, tt.hi, hi)
			}
		})
	}
}

func TestSearchCreatorsReconcileDedupe(t *testing.T) {
	fx := newSearchFixture()
	fx.modash.raws = []services.RawCreator{
		rawCreator("ig-dup", "duplicated", 20000, 2.0, "Content"),
		rawCreator("ig-dup", "duplicated", 31000, 2.0, "Content"),
	}

	// identical engagement rates keep the stable sort from reordering
	// the two records, so collect order reaches reconcile intact
	req := searchRequest("instagram")
	req.SortBy = "engagement_rate"

	resp, err := fx.flow.SearchCreators(context.Background(), req, nil)
	require.NoError(t, err)

	assert.Len(t, resp.Creators, 2)
	assert.Equal(t, 1, fx.creatorRepo.upserts["ig-dup"])
	// the first occurrence of an external_id is the one persisted
	assert.Equal(t, 20000, fx.creatorRepo.written["ig-dup"].FollowerCount)
}
