package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/amirphl/ugc-creator-finder/models"
)

// reference year 2024 keeps the birth-year fixtures inside the 40-60 band
func enrichmentAt2024() *EnrichmentService {
	return NewEnrichmentServiceAt(func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	})
}

func TestInferAgeRange(t *testing.T) {
	s := enrichmentAt2024()

	tests := []struct {
		name           string
		bio            string
		wantRange      string
		wantConfidence string
	}{
		{"born year", "I was born 1978", "45-49", models.ConfidenceHigh},
		{"born in year", "born in 1975, love hiking", "45-49", models.ConfidenceHigh},
		{"stated age", "age 52, retired teacher", "50-54", models.ConfidenceHigh},
		{"aged", "aged 47 and loving it", "45-49", models.ConfidenceHigh},
		{"i'm age", "i'm 44 btw", "40-44", models.ConfidenceHigh},
		{"at years", "started over at 48 years", "45-49", models.ConfidenceHigh},
		{"year old", "45 year old wine lover", "45-49", models.ConfidenceHigh},
		{"hyphenated year old", "51-year-old foodie", "50-54", models.ConfidenceHigh},
		{"class of", "class of 1996", "45-49", models.ConfidenceMedium},
		{"est year", "est. 1974", "50-54", models.ConfidenceMedium},
		{"since year", "living well since 1970", "50-54", models.ConfidenceMedium},
		{"pipe age", "wine | 52 | travel", "50-54", models.ConfidenceHigh},
		{"pipe yo", "foodie | 48 y/o", "45-49", models.ConfidenceHigh},
		{"keyword forties", "thriving in my 40s", "40-49", models.ConfidenceMedium},
		{"keyword midlife", "midlife reinvention coach", "45-54", models.ConfidenceMedium},
		{"keyword empty nester", "proud empty nester", "50-59", models.ConfidenceMedium},
		{"out of band age discarded", "I'm 35 and love yoga", "", models.ConfidenceLow},
		{"out of band birth year discarded", "born 1995", "", models.ConfidenceLow},
		{"no signal", "just a regular bio", "", models.ConfidenceLow},
		{"empty bio", "", "", models.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ageRange, confidence := s.InferAgeRange(tt.bio)
			assert.Equal(t, tt.wantRange, ageRange)
			assert.Equal(t, tt.wantConfidence, confidence)
		})
	}
}

func TestInferAgeRangePatternPrecedence(t *testing.T) {
	s := enrichmentAt2024()

	// an explicit birth year outranks the weaker "in my 40s" keyword
	ageRange, confidence := s.InferAgeRange("in my 40s, born 1972")
	assert.Equal(t, "50-54", ageRange)
	assert.Equal(t, models.ConfidenceHigh, confidence)
}

func TestInferGender(t *testing.T) {
	s := NewEnrichmentService()

	tests := []struct {
		name           string
		bio            string
		displayName    string
		wantGender     string
		wantConfidence string
	}{
		{"two keywords", "mom and wife living her best life", "", "female", models.ConfidenceHigh},
		{"single keyword", "mom of 3", "", "female", models.ConfidenceMedium},
		{"pronouns count", "she/her | artist | queen energy", "", "female", models.ConfidenceHigh},
		{"name fallback", "coffee and code", "Jennifer Park", "female", models.ConfidenceLow},
		{"nickname fallback", "outdoors all day", "Liz A", "female", models.ConfidenceLow},
		{"unknown name no signal", "cars and sports", "Alex Morgan", "", models.ConfidenceLow},
		{"empty everything", "", "", "", models.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gender, confidence := s.InferGender(tt.bio, tt.displayName)
			assert.Equal(t, tt.wantGender, gender)
			assert.Equal(t, tt.wantConfidence, confidence)
		})
	}
}

func TestEnrich(t *testing.T) {
	s := enrichmentAt2024()

	t.Run("source values win outright", func(t *testing.T) {
		demo := s.Enrich("born 1995", "female", "45-54", "Alex")
		assert.Equal(t, "female", demo.Gender)
		assert.Equal(t, models.ConfidenceHigh, demo.GenderConfidence)
		assert.Equal(t, "45-54", demo.AgeRange)
		assert.Equal(t, models.ConfidenceHigh, demo.AgeConfidence)
	})

	t.Run("inference fills the gaps", func(t *testing.T) {
		demo := s.Enrich("mom and wife, born 1978", "", "", "")
		assert.Equal(t, "female", demo.Gender)
		assert.Equal(t, models.ConfidenceHigh, demo.GenderConfidence)
		assert.Equal(t, "45-49", demo.AgeRange)
		assert.Equal(t, models.ConfidenceHigh, demo.AgeConfidence)
	})

	t.Run("partial source data", func(t *testing.T) {
		demo := s.Enrich("mom of 3", "", "50-54", "")
		assert.Equal(t, "female", demo.Gender)
		assert.Equal(t, models.ConfidenceMedium, demo.GenderConfidence)
		assert.Equal(t, "50-54", demo.AgeRange)
		assert.Equal(t, models.ConfidenceHigh, demo.AgeConfidence)
	})

	t.Run("nothing anywhere", func(t *testing.T) {
		demo := s.Enrich("", "", "", "")
		assert.Empty(t, demo.Gender)
		assert.Empty(t, demo.AgeRange)
		assert.Equal(t, models.ConfidenceLow, demo.GenderConfidence)
		assert.Equal(t, models.ConfidenceLow, demo.AgeConfidence)
	})
}
