// Package services contains external provider clients and domain services for creator discovery
package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/amirphl/ugc-creator-finder/models"
)

// platformAvgEngagement holds typical engagement rates per platform,
// used to normalize raw rates into a comparable score.
var platformAvgEngagement = map[string]float64{
	"tiktok":    5.0,
	"instagram": 2.0,
	"youtube":   3.0,
	"facebook":  1.5,
	"pinterest": 2.5,
	"twitter":   1.5,
	"backstage": 2.0,
}

const defaultAvgEngagement = 2.0

// nicheKeywords cover the leakproof underwear vertical the product targets
var nicheKeywords = []string{
	"leakproof", "leak proof", "leak-proof",
	"period", "period underwear", "period panties",
	"incontinence", "bladder",
	"pelvic floor", "pelvic health",
	"postpartum", "post-partum", "post partum",
	"menopause", "perimenopause", "menstrual",
	"feminine", "feminine hygiene", "feminine care",
	"underwear", "intimates", "intimate",
	"women's health", "womens health",
}

// relevanceKeywords signal general UGC suitability in a bio
var relevanceKeywords = []string{
	"ugc", "creator", "content creator", "review", "unboxing",
	"authentic", "real", "honest", "everyday", "mom", "mother",
	"women", "lifestyle", "over 40", "over 50", "midlife",
}

// RelevanceInput carries the creator attributes relevance scoring reads
type RelevanceInput struct {
	Bio          string
	NicheTags    []string
	TargetNiche  string
	Audience     *models.AudienceDemographics
	TargetAgeMin int
	TargetAgeMax int
}

// ScoringService computes the four scores attached to every creator
type ScoringService struct {
	EngagementWeight float64
	QualityWeight    float64
	RelevanceWeight  float64
}

// NewScoringService creates a scoring service with the given component weights
func NewScoringService(engagementWeight, qualityWeight, relevanceWeight float64) *ScoringService {
	return &ScoringService{
		EngagementWeight: engagementWeight,
		QualityWeight:    qualityWeight,
		RelevanceWeight:  relevanceWeight,
	}
}

// NewDefaultScoringService creates a scoring service with the standard 0.4/0.3/0.3 weights
func NewDefaultScoringService() *ScoringService {
	return NewScoringService(0.4, 0.3, 0.3)
}

// round1 rounds to one decimal place
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// EngagementScore maps a raw engagement rate to 0-100 relative to the
// platform's typical rate. Posting at the platform average scores 50,
// twice the average scores 100.
func (s *ScoringService) EngagementScore(engagementRate float64, platform string) float64 {
	avg, ok := platformAvgEngagement[strings.ToLower(platform)]
	if !ok {
		avg = defaultAvgEngagement
	}

	score := math.Min(100, 50*(engagementRate/avg))
	return round1(math.Max(0, score))
}

// QualityScore combines authenticity, posting consistency, and community
// engagement signals into a 0-100 score.
func (s *ScoringService) QualityScore(followerCount int, engagementRate float64, postCount, avgLikes, avgComments int) float64 {
	score := 0.0

	// Authenticity: engagement volume relative to 2% of the follower base.
	// Inflated follower counts pull this toward zero.
	if followerCount > 0 {
		actual := float64(avgLikes + avgComments)
		if actual <= 0 {
			actual = float64(followerCount) * (engagementRate / 100)
		}
		ratio := actual / (float64(followerCount) * 0.02)
		score += math.Min(40, ratio*20)
	}

	// Posting consistency
	switch {
	case postCount > 500:
		score += 30
	case postCount > 200:
		score += 25
	case postCount > 50:
		score += 15
	default:
		score += 5
	}

	// Community engagement via the comment-to-like ratio
	if avgLikes > 0 && avgComments > 0 {
		commentRatio := float64(avgComments) / float64(avgLikes)
		switch {
		case commentRatio > 0.05:
			score += 30
		case commentRatio > 0.02:
			score += 20
		default:
			score += 10
		}
	} else {
		score += 15 // neutral when the data is unavailable
	}

	return round1(math.Min(100, math.Max(0, score)))
}

// RelevanceScore rates how well a creator matches the target niche and
// audience demographic, 0-100.
func (s *ScoringService) RelevanceScore(in RelevanceInput) float64 {
	score := 0.0
	bioLower := strings.ToLower(in.Bio)

	keywordMatches := 0
	for _, kw := range relevanceKeywords {
		if strings.Contains(bioLower, kw) {
			keywordMatches++
		}
	}
	score += math.Min(20, float64(keywordMatches)*4)

	nicheMatches := 0
	for _, kw := range nicheKeywords {
		if strings.Contains(bioLower, kw) {
			nicheMatches++
		}
	}
	score += math.Min(15, float64(nicheMatches)*5)

	if in.TargetNiche != "" && len(in.NicheTags) > 0 {
		targetLower := strings.ToLower(in.TargetNiche)
		if tagContains(in.NicheTags, targetLower) {
			score += 35
		} else if tagContainsAnyWord(in.NicheTags, strings.Fields(targetLower)) {
			score += 20
		}
	}

	if in.Audience != nil && len(in.Audience.Ages) > 0 {
		targetWeight := 0.0
		for _, bucket := range in.Audience.Ages {
			bucketMin, bucketMax, ok := parseAgeBucket(bucket.Code)
			if !ok {
				continue
			}
			if bucketMin <= in.TargetAgeMax && bucketMax >= in.TargetAgeMin {
				targetWeight += bucket.Weight
			}
		}
		score += math.Min(30, targetWeight*60)
	}

	return round1(math.Min(100, math.Max(0, score)))
}

// OverallScore blends the component scores with the configured weights
func (s *ScoringService) OverallScore(engagementScore, qualityScore, relevanceScore float64) float64 {
	overall := engagementScore*s.EngagementWeight +
		qualityScore*s.QualityWeight +
		relevanceScore*s.RelevanceWeight
	return round1(overall)
}

// ClassifyTier labels a creator established when it meets any of:
// 50K+ followers; 20K+ followers with 200+ posts; 10K+ followers with
// a 3%+ engagement rate. Everyone else is emerging.
func ClassifyTier(followerCount, postCount int, engagementRate float64) models.CreatorTier {
	if followerCount >= 50_000 {
		return models.TierEstablished
	}
	if followerCount >= 20_000 && postCount >= 200 {
		return models.TierEstablished
	}
	if followerCount >= 10_000 && engagementRate >= 3.0 {
		return models.TierEstablished
	}
	return models.TierEmerging
}

// tagContains reports whether any tag contains the target as a substring
func tagContains(tags []string, target string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), target) {
			return true
		}
	}
	return false
}

// tagContainsAnyWord reports whether any tag contains any of the words
func tagContainsAnyWord(tags []string, words []string) bool {
	for _, tag := range tags {
		tagLower := strings.ToLower(tag)
		for _, word := range words {
			if strings.Contains(tagLower, word) {
				return true
			}
		}
	}
	return false
}

// parseAgeBucket parses codes like "35-44" or "65+" into numeric bounds.
// Open-ended buckets get an upper bound of 999.
func parseAgeBucket(code string) (int, int, bool) {
	normalized := strings.ReplaceAll(code, "+", "-999")
	parts := strings.Split(normalized, "-")

	bucketMin, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}

	bucketMax := 999
	if len(parts) > 1 {
		bucketMax, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, false
		}
	}

	return bucketMin, bucketMax, true
}
