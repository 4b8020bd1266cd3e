// Package normalizer maps raw per-source search hits into canonical
// creator records, composing demographic enrichment, niche inference
// and scoring.
package normalizer

import (
	"strings"

	"github.com/amirphl/ugc-creator-finder/app/services"
	"github.com/amirphl/ugc-creator-finder/models"
	"github.com/amirphl/ugc-creator-finder/utils"
)

// Target carries the query context a normalizer needs for relevance
// scoring
type Target struct {
	Niche  string
	AgeMin int
	AgeMax int
}

// Normalizer converts one raw source hit into a canonical creator.
// Normalization never fails for a sparse hit; missing optional fields
// fall back to zero values.
type Normalizer interface {
	Normalize(raw services.RawCreator, platform string, target Target) models.Creator
}

// base holds the engines every normalizer variant composes
type base struct {
	enrichment *services.EnrichmentService
	scoring    *services.ScoringService
}

// assemble builds the canonical record from extracted fields shared by
// all variants. Tags are guaranteed non-empty on the way out.
func (b *base) assemble(raw services.RawCreator, platform string, target Target, demo services.Demographics, tags []string) models.Creator {
	p := raw.Profile

	tags = nonEmptyTags(tags, p.Bio)

	engagementScore := b.scoring.EngagementScore(p.EngagementRate, platform)
	qualityScore := b.scoring.QualityScore(p.Followers, p.EngagementRate, p.PostCount, p.AvgLikes, p.AvgComments)
	relevanceScore := b.scoring.RelevanceScore(services.RelevanceInput{
		Bio:          p.Bio,
		NicheTags:    tags,
		TargetNiche:  target.Niche,
		Audience:     raw.Audience,
		TargetAgeMin: target.AgeMin,
		TargetAgeMax: target.AgeMax,
	})
	overallScore := b.scoring.OverallScore(engagementScore, qualityScore, relevanceScore)

	creator := models.Creator{
		ExternalID:            raw.ExternalID,
		Name:                  p.Fullname,
		Platform:              platform,
		Handle:                p.Username,
		ProfileURL:            p.URL,
		AvatarURL:             p.Picture,
		FollowerCount:         p.Followers,
		FollowingCount:        p.Following,
		EngagementRate:        p.EngagementRate,
		AvgLikes:              p.AvgLikes,
		AvgComments:           p.AvgComments,
		AvgViews:              p.AvgViews,
		PostCount:             p.PostCount,
		Bio:                   p.Bio,
		NicheTags:             tags,
		DemographicConfidence: demo.AgeConfidence,
		// Tier at normalization time considers followers and posts only;
		// scraped engagement rates are too rough to promote on.
		Tier:                  services.ClassifyTier(p.Followers, p.PostCount, 0),
		EngagementScore:       engagementScore,
		QualityScore:          qualityScore,
		RelevanceScore:        relevanceScore,
		OverallScore:          overallScore,
	}

	if demo.AgeRange != "" {
		creator.EstimatedAgeRange = utils.ToPtr(demo.AgeRange)
	}
	if demo.Gender != "" {
		creator.Gender = utils.ToPtr(demo.Gender)
	}
	if raw.Audience != nil {
		creator.AudienceDemographics = *raw.Audience
	}

	return creator
}

// nonEmptyTags enforces the "tags never empty" guarantee on normalized
// records
func nonEmptyTags(tags []string, bio string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if strings.TrimSpace(tag) != "" {
			cleaned = append(cleaned, tag)
		}
	}
	if len(cleaned) > 0 {
		return cleaned
	}
	return services.InferNiches(bio, "ugc")
}

// ModashNormalizer normalizes discovery-API hits. Provider gender and
// age fields take precedence over bio inference.
type ModashNormalizer struct {
	base
}

func NewModashNormalizer(enrichment *services.EnrichmentService, scoring *services.ScoringService) *ModashNormalizer {
	return &ModashNormalizer{base{enrichment: enrichment, scoring: scoring}}
}

func (n *ModashNormalizer) Normalize(raw services.RawCreator, platform string, target Target) models.Creator {
	p := raw.Profile
	demo := n.enrichment.Enrich(p.Bio, strings.ToLower(p.Gender), p.AgeRange, "")
	return n.assemble(raw, platform, target, demo, p.Interests)
}

// PhylloNormalizer normalizes secondary-API hits. Demographics come
// from bio inference only.
type PhylloNormalizer struct {
	base
}

func NewPhylloNormalizer(enrichment *services.EnrichmentService, scoring *services.ScoringService) *PhylloNormalizer {
	return &PhylloNormalizer{base{enrichment: enrichment, scoring: scoring}}
}

func (n *PhylloNormalizer) Normalize(raw services.RawCreator, platform string, target Target) models.Creator {
	p := raw.Profile
	demo := n.enrichment.Enrich(p.Bio, "", "", "")
	return n.assemble(raw, platform, target, demo, p.Interests)
}

// TwitterNormalizer normalizes live Twitter hits. The display name
// feeds name-based gender inference since bios alone rarely carry a
// usable signal.
type TwitterNormalizer struct {
	base
}

func NewTwitterNormalizer(enrichment *services.EnrichmentService, scoring *services.ScoringService) *TwitterNormalizer {
	return &TwitterNormalizer{base{enrichment: enrichment, scoring: scoring}}
}

func (n *TwitterNormalizer) Normalize(raw services.RawCreator, platform string, target Target) models.Creator {
	p := raw.Profile
	demo := n.enrichment.Enrich(p.Bio, "", "", p.Fullname)
	return n.assemble(raw, platform, target, demo, p.Interests)
}

// TikTokNormalizer normalizes live TikTok hits, same name-assisted
// inference as Twitter
type TikTokNormalizer struct {
	base
}

func NewTikTokNormalizer(enrichment *services.EnrichmentService, scoring *services.ScoringService) *TikTokNormalizer {
	return &TikTokNormalizer{base{enrichment: enrichment, scoring: scoring}}
}

func (n *TikTokNormalizer) Normalize(raw services.RawCreator, platform string, target Target) models.Creator {
	p := raw.Profile
	demo := n.enrichment.Enrich(p.Bio, "", "", p.Fullname)
	return n.assemble(raw, platform, target, demo, p.Interests)
}

// BackstageNormalizer normalizes talent-database hits. Self-reported
// age, gender and country are trusted as source data and carried
// with high confidence.
type BackstageNormalizer struct {
	base
}

func NewBackstageNormalizer(enrichment *services.EnrichmentService, scoring *services.ScoringService) *BackstageNormalizer {
	return &BackstageNormalizer{base{enrichment: enrichment, scoring: scoring}}
}

func (n *BackstageNormalizer) Normalize(raw services.RawCreator, platform string, target Target) models.Creator {
	p := raw.Profile

	var apiGender, apiAge string
	if raw.Backstage != nil {
		apiGender = raw.Backstage.Gender
		apiAge = raw.Backstage.AgeRange
	}

	demo := n.enrichment.Enrich(p.Bio, apiGender, apiAge, p.Fullname)
	creator := n.assemble(raw, platform, target, demo, p.Interests)

	if raw.Backstage != nil && raw.Backstage.Country != "" {
		creator.Country = utils.ToPtr(raw.Backstage.Country)
	}

	return creator
}
