package services

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/amirphl/ugc-creator-finder/models"
)

// SourceQuery carries the search parameters handed to every source client
type SourceQuery struct {
	Platform      string
	Niche         string
	Gender        string
	MinFollowers  int
	MaxFollowers  int
	MinEngagement float64
	AgeMin        int
	AgeMax        int
	Country       string
	Page          int
	PageSize      int
	DeepSearch    bool
}

// RawProfile is the provider-shaped profile block of a search hit,
// before normalization
type RawProfile struct {
	Fullname       string
	Username       string
	URL            string
	Picture        string
	Bio            string
	Followers      int
	Following      int
	EngagementRate float64
	AvgLikes       int
	AvgComments    int
	AvgViews       int
	PostCount      int
	Gender         string
	AgeRange       string
	Interests      []string
}

// BackstageDetails holds the self-reported demographic data Backstage
// exposes that other sources never have
type BackstageDetails struct {
	AgeRange string
	Location string
	Country  string
	Gender   string
}

// RawCreator is one un-normalized search hit from a source
type RawCreator struct {
	ExternalID string
	Profile    RawProfile
	Audience   *models.AudienceDemographics
	Backstage  *BackstageDetails
}

// SourceClient is implemented by every external creator source
type SourceClient interface {
	Name() string
	Configured() bool
	Search(ctx context.Context, q SourceQuery) ([]RawCreator, error)
}

// desktopUserAgent is sent on scrape requests so responses match what a
// real browser would receive
const desktopUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

var countPattern = regexp.MustCompile(`([\d.]+)\s*([KMB])?`)

// ParseCount parses display counts like "1.2K", "3.4M Followers" or
// "500" into an integer. Unparseable text yields 0.
func ParseCount(text string) int {
	if text == "" {
		return 0
	}
	text = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(text), ",", ""))

	match := countPattern.FindStringSubmatch(text)
	if match == nil {
		return 0
	}

	num, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}

	switch match[2] {
	case "K":
		num *= 1_000
	case "M":
		num *= 1_000_000
	case "B":
		num *= 1_000_000_000
	}

	return int(num)
}
