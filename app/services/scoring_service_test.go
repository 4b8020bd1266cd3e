package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amirphl/ugc-creator-finder/models"
)

func TestEngagementScore(t *testing.T) {
	s := NewDefaultScoringService()

	t.Run("platform average scores exactly 50", func(t *testing.T) {
		for platform, avg := range platformAvgEngagement {
			assert.Equal(t, 50.0, s.EngagementScore(avg, platform), platform)
		}
	})

	t.Run("twice the average clamps at 100", func(t *testing.T) {
		assert.Equal(t, 100.0, s.EngagementScore(4.0, "instagram"))
		assert.Equal(t, 100.0, s.EngagementScore(25.0, "tiktok"))
	})

	t.Run("zero rate scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, s.EngagementScore(0, "instagram"))
	})

	t.Run("unknown platform uses the default average", func(t *testing.T) {
		assert.Equal(t, 50.0, s.EngagementScore(defaultAvgEngagement, "myspace"))
	})

	t.Run("platform lookup is case insensitive", func(t *testing.T) {
		assert.Equal(t, 50.0, s.EngagementScore(5.0, "TikTok"))
	})

	t.Run("rounded to one decimal", func(t *testing.T) {
		// 50 * (1.7 / 2.0) = 42.5
		assert.Equal(t, 42.5, s.EngagementScore(1.7, "instagram"))
	})
}

func TestQualityScore(t *testing.T) {
	s := NewDefaultScoringService()

	t.Run("full score needs real engagement volume", func(t *testing.T) {
		// authenticity 40 + consistency 30 + community 30
		score := s.QualityScore(10000, 0, 600, 1000, 60)
		assert.Equal(t, 100.0, score)
	})

	t.Run("engagement rate substitutes for missing likes", func(t *testing.T) {
		// actual = 45000 * 4.2% = 1890, expected = 900, capped 40
		// consistency 5, neutral community 15
		score := s.QualityScore(45000, 4.2, 0, 0, 0)
		assert.Equal(t, 60.0, score)
	})

	t.Run("zero followers skips authenticity", func(t *testing.T) {
		score := s.QualityScore(0, 0, 0, 0, 0)
		assert.Equal(t, 20.0, score) // consistency 5 + neutral 15
	})

	t.Run("consistency tiers", func(t *testing.T) {
		base := s.QualityScore(0, 0, 0, 0, 0)
		assert.Equal(t, base+10, s.QualityScore(0, 0, 51, 0, 0))
		assert.Equal(t, base+20, s.QualityScore(0, 0, 201, 0, 0))
		assert.Equal(t, base+25, s.QualityScore(0, 0, 501, 0, 0))
	})

	t.Run("comment ratio tiers", func(t *testing.T) {
		// authenticity maxed in all three, consistency 5
		assert.Equal(t, 75.0, s.QualityScore(1000, 0, 0, 1000, 60))  // ratio 0.06 -> 30
		assert.Equal(t, 65.0, s.QualityScore(1000, 0, 0, 1000, 30))  // ratio 0.03 -> 20
		assert.Equal(t, 55.0, s.QualityScore(1000, 0, 0, 1000, 10))  // ratio 0.01 -> 10
	})
}

func TestRelevanceScore(t *testing.T) {
	s := NewDefaultScoringService()

	t.Run("empty input scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, s.RelevanceScore(RelevanceInput{}))
	})

	t.Run("general keywords cap at 20", func(t *testing.T) {
		in := RelevanceInput{Bio: "ugc creator review unboxing authentic honest everyday mom"}
		assert.Equal(t, 20.0, s.RelevanceScore(in))
	})

	t.Run("niche keywords cap at 15", func(t *testing.T) {
		in := RelevanceInput{Bio: "leakproof period incontinence pelvic floor menopause"}
		assert.Equal(t, 15.0, s.RelevanceScore(in))
	})

	t.Run("exact tag match beats word overlap", func(t *testing.T) {
		exact := s.RelevanceScore(RelevanceInput{
			NicheTags:   []string{"intimate apparel"},
			TargetNiche: "intimate apparel",
		})
		partial := s.RelevanceScore(RelevanceInput{
			NicheTags:   []string{"intimate wellness"},
			TargetNiche: "intimate apparel",
		})
		assert.Equal(t, 35.0, exact)
		assert.Equal(t, 20.0, partial)
	})

	t.Run("audience overlap weighted and capped", func(t *testing.T) {
		in := RelevanceInput{
			Audience: &models.AudienceDemographics{
				Ages: []models.AudienceBucket{
					{Code: "45-54", Weight: 0.3},
					{Code: "18-24", Weight: 0.6},
				},
			},
			TargetAgeMin: 40,
			TargetAgeMax: 60,
		}
		assert.Equal(t, 18.0, s.RelevanceScore(in)) // 0.3 * 60

		in.Audience.Ages[1] = models.AudienceBucket{Code: "55-64", Weight: 0.6}
		assert.Equal(t, 30.0, s.RelevanceScore(in)) // 0.9 * 60 capped at 30
	})

	t.Run("open ended audience bucket", func(t *testing.T) {
		in := RelevanceInput{
			Audience: &models.AudienceDemographics{
				Ages: []models.AudienceBucket{{Code: "45+", Weight: 0.5}},
			},
			TargetAgeMin: 40,
			TargetAgeMax: 60,
		}
		assert.Equal(t, 30.0, s.RelevanceScore(in))
	})

	t.Run("malformed audience bucket is skipped", func(t *testing.T) {
		in := RelevanceInput{
			Audience: &models.AudienceDemographics{
				Ages: []models.AudienceBucket{{Code: "unknown", Weight: 0.9}},
			},
			TargetAgeMin: 40,
			TargetAgeMax: 60,
		}
		assert.Equal(t, 0.0, s.RelevanceScore(in))
	})
}

func TestOverallScore(t *testing.T) {
	s := NewDefaultScoringService()

	assert.Equal(t, 59.2, s.OverallScore(100, 60, 4))
	assert.Equal(t, 0.0, s.OverallScore(0, 0, 0))
	assert.Equal(t, 100.0, s.OverallScore(100, 100, 100))

	t.Run("monotonic in each component", func(t *testing.T) {
		base := s.OverallScore(50, 50, 50)
		assert.GreaterOrEqual(t, s.OverallScore(60, 50, 50), base)
		assert.GreaterOrEqual(t, s.OverallScore(50, 60, 50), base)
		assert.GreaterOrEqual(t, s.OverallScore(50, 50, 60), base)
	})

	t.Run("custom weights", func(t *testing.T) {
		custom := NewScoringService(1, 0, 0)
		assert.Equal(t, 77.0, custom.OverallScore(77, 10, 10))
	})
}

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		name      string
		followers int
		posts     int
		rate      float64
		want      models.CreatorTier
	}{
		{"50k followers alone", 50000, 0, 0, models.TierEstablished},
		{"just below 10k", 9999, 0, 0, models.TierEmerging},
		{"20k with enough posts", 15000, 250, 0, models.TierEmerging},
		{"15k posts threshold needs 20k followers", 20000, 200, 0, models.TierEstablished},
		{"10k with strong engagement", 10000, 0, 3.0, models.TierEstablished},
		{"10k with weak engagement", 10000, 0, 2.9, models.TierEmerging},
		{"zero everything", 0, 0, 0, models.TierEmerging},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTier(tt.followers, tt.posts, tt.rate))
		})
	}
}
