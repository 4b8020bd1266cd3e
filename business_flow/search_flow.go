package businessflow

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/ugc-creator-finder/app/dto"
	"github.com/amirphl/ugc-creator-finder/app/normalizer"
	"github.com/amirphl/ugc-creator-finder/app/services"
	"github.com/amirphl/ugc-creator-finder/models"
	"github.com/amirphl/ugc-creator-finder/repository"
)

// allPlatforms is the fixed dispatch order for platform=all searches.
// Results are always concatenated in this order, never completion order.
var allPlatforms = []string{"twitter", "tiktok", "instagram", "backstage"}

// crossPlatformLookupTimeout bounds the whole cross-platform annotation
// batch; creators still pending at the deadline go out unannotated
const crossPlatformLookupTimeout = 15 * time.Second

// SearchFlow represents the creator search use case
type SearchFlow interface {
	SearchCreators(ctx context.Context, req *dto.SearchCreatorsRequest, metadata *ClientMetadata) (*dto.SearchCreatorsResponse, error)
}

// SearchFlowImpl implements the search pipeline: dispatch, collect,
// dedup against the seen ledger, filter, sort, reconcile with the store
type SearchFlowImpl struct {
	modash    services.SourceClient
	phyllo    services.SourceClient
	twitter   services.SourceClient
	tiktok    services.SourceClient
	backstage services.SourceClient

	modashNorm    normalizer.Normalizer
	phylloNorm    normalizer.Normalizer
	twitterNorm   normalizer.Normalizer
	tiktokNorm    normalizer.Normalizer
	backstageNorm normalizer.Normalizer

	creatorRepo repository.CreatorRepository
	seenRepo    repository.SeenCreatorRepository
	finder      *services.ProfileFinder
}

// NewSearchFlow creates a new search flow instance
func NewSearchFlow(
	modash services.SourceClient,
	phyllo services.SourceClient,
	twitter services.SourceClient,
	tiktok services.SourceClient,
	backstage services.SourceClient,
	enrichment *services.EnrichmentService,
	scoring *services.ScoringService,
	creatorRepo repository.CreatorRepository,
	seenRepo repository.SeenCreatorRepository,
	finder *services.ProfileFinder,
) SearchFlow {
	return &SearchFlowImpl{
		modash:        modash,
		phyllo:        phyllo,
		twitter:       twitter,
		tiktok:        tiktok,
		backstage:     backstage,
		modashNorm:    normalizer.NewModashNormalizer(enrichment, scoring),
		phylloNorm:    normalizer.NewPhylloNormalizer(enrichment, scoring),
		twitterNorm:   normalizer.NewTwitterNormalizer(enrichment, scoring),
		tiktokNorm:    normalizer.NewTikTokNormalizer(enrichment, scoring),
		backstageNorm: normalizer.NewBackstageNormalizer(enrichment, scoring),
		creatorRepo:   creatorRepo,
		seenRepo:      seenRepo,
		finder:        finder,
	}
}

// platformResult buffers one platform's normalized records until every
// fetch has joined
type platformResult struct {
	creators []models.Creator
	live     bool
}

func (s *SearchFlowImpl) SearchCreators(ctx context.Context, req *dto.SearchCreatorsRequest, metadata *ClientMetadata) (*dto.SearchCreatorsResponse, error) {
	if req == nil {
		return nil, NewBusinessError("SEARCH_VALIDATION_FAILED", "Search request is nil", nil)
	}
	if req.Page < 0 {
		return nil, NewBusinessError("SEARCH_VALIDATION_FAILED", "Invalid page", ErrInvalidPage)
	}
	if req.PageSize < 1 || req.PageSize > 500 {
		return nil, NewBusinessError("SEARCH_VALIDATION_FAILED", "Invalid page size", ErrInvalidPageSize)
	}

	platform := strings.ToLower(req.Platform)
	platforms := []string{platform}
	searchAll := platform == "all"
	if searchAll {
		platforms = allPlatforms
	} else if !supportedPlatform(platform) {
		return nil, NewBusinessErrorf("UNSUPPORTED_PLATFORM", "Unsupported platform: %s", ErrUnsupportedPlatform, platform)
	}

	query := services.SourceQuery{
		Niche:         req.Niche,
		Gender:        req.Gender,
		MinFollowers:  req.MinFollowers,
		MaxFollowers:  req.MaxFollowers,
		MinEngagement: req.MinEngagement,
		AgeMin:        req.AgeMin,
		AgeMax:        req.AgeMax,
		Country:       req.Country,
		Page:          req.Page,
		PageSize:      req.PageSize,
		DeepSearch:    req.DeepSearch,
	}
	target := normalizer.Target{Niche: req.Niche, AgeMin: req.AgeMin, AgeMax: req.AgeMax}

	// DISPATCH: concurrent fan-out with per-platform failure isolation.
	// A failed platform contributes zero records.
	results := make([]platformResult, len(platforms))
	var wg sync.WaitGroup
	for i, p := range platforms {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			creators, live, err := s.fetchPlatform(ctx, p, query, target)
			if err != nil {
				log.Printf("search: platform %s failed: %v", p, err)
				return
			}
			results[i] = platformResult{creators: creators, live: live}
		}(i, p)
	}
	wg.Wait()

	// COLLECT in declared platform order
	var collected []models.Creator
	anyLive := false
	for _, r := range results {
		collected = append(collected, r.creators...)
		anyLive = anyLive || r.live
	}

	// Cross-platform annotation for live Twitter hits in an all-platform
	// search, bounded as one batch
	if searchAll && s.finder != nil {
		s.annotateCrossPlatform(ctx, collected)
	}

	// DEDUP against the seen ledger
	if req.ExcludeSeen {
		collected = s.dropSeen(ctx, collected)
	}

	// FILTER: gender, then age overlap, then country
	strict := anyLive || req.StrictDemo
	filtered := filterCreators(collected, req, strict)

	// SORT: stable, descending, unknown fields fall back to overall score
	sortCreators(filtered, req.SortBy)

	// RECONCILE: upsert by external_id, first occurrence wins
	s.reconcile(ctx, filtered)

	dbTotal, err := s.creatorRepo.Count(ctx, models.CreatorFilter{})
	if err != nil {
		return nil, NewBusinessError("SEARCH_COUNT_FAILED", "Failed to count stored creators", err)
	}

	return &dto.SearchCreatorsResponse{
		Creators: filtered,
		Total:    len(filtered),
		DBTotal:  dbTotal,
		Page:     req.Page,
	}, nil
}

func supportedPlatform(platform string) bool {
	switch platform {
	case "twitter", "tiktok", "instagram", "youtube", "facebook", "pinterest", "backstage":
		return true
	default:
		return false
	}
}

// fetchPlatform runs one platform's fetch-and-normalize pipeline.
// The live flag marks results from a real scraper or API rather than
// mock discovery data; demographic filtering is stricter for those.
func (s *SearchFlowImpl) fetchPlatform(ctx context.Context, platform string, query services.SourceQuery, target normalizer.Target) ([]models.Creator, bool, error) {
	switch platform {
	case "twitter":
		if s.twitter.Configured() {
			query.Platform = "twitter"
			raws, err := s.twitter.Search(ctx, query)
			if err != nil {
				return nil, false, err
			}
			return s.normalizeAll(s.twitterNorm, raws, "twitter", target), true, nil
		}
		// No API credentials: serve discovery-API instagram data labeled
		// as twitter so the search still returns candidates
		query.Platform = "instagram"
		raws, err := s.modash.Search(ctx, query)
		if err != nil {
			return nil, false, err
		}
		return s.normalizeAll(s.modashNorm, raws, "twitter", target), false, nil

	case "tiktok":
		if s.tiktok.Configured() {
			query.Platform = "tiktok"
			raws, err := s.tiktok.Search(ctx, query)
			if err != nil {
				log.Printf("search: tiktok scrape failed, falling back: %v", err)
			} else if len(raws) > 0 {
				return s.normalizeAll(s.tiktokNorm, raws, "tiktok", target), true, nil
			}
		}
		query.Platform = "tiktok"
		raws, err := s.modash.Search(ctx, query)
		if err != nil {
			return nil, false, err
		}
		return s.normalizeAll(s.modashNorm, raws, "tiktok", target), false, nil

	case "instagram", "youtube":
		query.Platform = platform
		raws, err := s.modash.Search(ctx, query)
		if err != nil {
			return nil, false, err
		}
		return s.normalizeAll(s.modashNorm, raws, platform, target), false, nil

	case "facebook", "pinterest":
		query.Platform = platform
		raws, err := s.phyllo.Search(ctx, query)
		if err != nil {
			return nil, false, err
		}
		return s.normalizeAll(s.phylloNorm, raws, platform, target), false, nil

	case "backstage":
		query.Platform = "backstage"
		raws, err := s.backstage.Search(ctx, query)
		if err != nil {
			return nil, false, err
		}
		return s.normalizeAll(s.backstageNorm, raws, "backstage", target), true, nil

	default:
		return nil, false, ErrUnsupportedPlatform
	}
}

func (s *SearchFlowImpl) normalizeAll(n normalizer.Normalizer, raws []services.RawCreator, platform string, target normalizer.Target) []models.Creator {
	creators := make([]models.Creator, 0, len(raws))
	for _, raw := range raws {
		creators = append(creators, n.Normalize(raw, platform, target))
	}
	return creators
}

// annotateCrossPlatform attaches matched profiles on other platforms to
// live Twitter hits. Lookup failures never fail the search.
func (s *SearchFlowImpl) annotateCrossPlatform(ctx context.Context, creators []models.Creator) {
	lookupCtx, cancel := context.WithTimeout(ctx, crossPlatformLookupTimeout)
	defer cancel()

	for i := range creators {
		if creators[i].Platform != "twitter" || creators[i].Handle == "" {
			continue
		}
		if lookupCtx.Err() != nil {
			return
		}
		if profiles := s.finder.Find(lookupCtx, creators[i].Handle, "twitter"); len(profiles) > 0 {
			creators[i].CrossPlatformProfiles = profiles
		}
	}
}

// dropSeen removes records already in the seen ledger and records the
// survivors. Ledger errors fail open: the record stays in the results.
func (s *SearchFlowImpl) dropSeen(ctx context.Context, creators []models.Creator) []models.Creator {
	kept := make([]models.Creator, 0, len(creators))
	for _, c := range creators {
		seen, err := s.seenRepo.Contains(ctx, c.ExternalID)
		if err != nil {
			log.Printf("search: seen lookup failed for %s: %v", c.ExternalID, err)
			kept = append(kept, c)
			continue
		}
		if seen {
			continue
		}
		if err := s.seenRepo.Add(ctx, c.ExternalID, c.Platform); err != nil {
			log.Printf("search: seen insert failed for %s: %v", c.ExternalID, err)
		}
		kept = append(kept, c)
	}
	return kept
}

// filterCreators applies the gender, age-overlap, and country filters in
// that fixed order
func filterCreators(creators []models.Creator, req *dto.SearchCreatorsRequest, strict bool) []models.Creator {
	filtered := make([]models.Creator, 0, len(creators))
	for _, c := range creators {
		if !passesGender(c, req.Gender, strict) {
			continue
		}
		if !passesAge(c, req.AgeMin, req.AgeMax, strict) {
			continue
		}
		if !passesCountry(c, req.Country) {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

func passesGender(c models.Creator, gender string, strict bool) bool {
	if gender == "" {
		return true
	}
	if c.Gender == nil {
		return !strict
	}
	return strings.EqualFold(*c.Gender, gender)
}

// passesAge checks age-range overlap against [ageMin, ageMax].
// Malformed range strings pass (fail open); absent ranges pass only in
// lenient mode.
func passesAge(c models.Creator, ageMin, ageMax int, strict bool) bool {
	if ageMin <= 0 && ageMax <= 0 {
		return true
	}
	if c.EstimatedAgeRange == nil || *c.EstimatedAgeRange == "" {
		return !strict
	}

	lo, hi, ok := parseAgeRange(*c.EstimatedAgeRange)
	if !ok {
		return true
	}
	return lo <= ageMax && hi >= ageMin
}

func passesCountry(c models.Creator, country string) bool {
	if country == "" || c.Country == nil || *c.Country == "" {
		return true
	}
	return strings.EqualFold(*c.Country, country)
}

// parseAgeRange parses "45-49" or "45+" into numeric bounds. A bare
// number gets a nine-year band.
func parseAgeRange(r string) (int, int, bool) {
	normalized := strings.ReplaceAll(r, "+", "-999")
	parts := strings.Split(normalized, "-")

	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}

	hi := lo + 9
	if len(parts) > 1 {
		hi, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, false
		}
	}

	return lo, hi, true
}

// sortCreators stably sorts descending by the requested field
func sortCreators(creators []models.Creator, sortBy string) {
	sort.SliceStable(creators, func(i, j int) bool {
		return sortValue(creators[i], sortBy) > sortValue(creators[j], sortBy)
	})
}

func sortValue(c models.Creator, field string) float64 {
	switch field {
	case "engagement_score":
		return c.EngagementScore
	case "quality_score":
		return c.QualityScore
	case "relevance_score":
		return c.RelevanceScore
	case "engagement_rate":
		return c.EngagementRate
	case "follower_count":
		return float64(c.FollowerCount)
	default:
		return c.OverallScore
	}
}

// reconcile upserts every filtered record by external_id, deduplicating
// in-memory first so one reconciliation pass issues at most one write
// per external_id. Store failures are logged, not surfaced.
func (s *SearchFlowImpl) reconcile(ctx context.Context, creators []models.Creator) {
	written := make(map[string]bool, len(creators))
	for i := range creators {
		c := creators[i]
		if c.ExternalID == "" || written[c.ExternalID] {
			continue
		}
		written[c.ExternalID] = true
		if err := s.creatorRepo.UpsertByExternalID(ctx, &c); err != nil {
			log.Printf("search: upsert failed for %s: %v", c.ExternalID, err)
		}
	}
}
