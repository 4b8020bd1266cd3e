package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// PhylloClient is the secondary source for platforms Modash does not
// cover (Facebook, Pinterest). Serves fixtures when unconfigured.
type PhylloClient struct {
	baseURL string
	apiKey  string
	http    *resty.Client
}

// NewPhylloClient creates a Phyllo API client
func NewPhylloClient(baseURL, apiKey string, timeout time.Duration) *PhylloClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Authorization", "Basic "+apiKey).
		SetHeader("Content-Type", "application/json")
	return &PhylloClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    client,
	}
}

func (c *PhylloClient) Name() string { return "phyllo" }

func (c *PhylloClient) Configured() bool { return c.apiKey != "" }

type phylloCreator struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Username       string  `json:"username"`
	Platform       string  `json:"platform"`
	ProfileURL     string  `json:"profile_url"`
	AvatarURL      string  `json:"avatar_url"`
	Bio            string  `json:"bio"`
	Followers      int     `json:"followers"`
	Following      int     `json:"following"`
	EngagementRate float64 `json:"engagement_rate"`
	PostCount      int     `json:"post_count"`
	Category       string  `json:"category"`
}

type phylloSearchResponse struct {
	Creators []phylloCreator `json:"creators"`
	Total    int             `json:"total"`
}

// Search queries Phyllo's creator search endpoint
func (c *PhylloClient) Search(ctx context.Context, q SourceQuery) ([]RawCreator, error) {
	if !c.Configured() {
		return c.mockSearch(q.Platform, q.Niche, q.PageSize), nil
	}

	params := map[string]string{
		"platform":      q.Platform,
		"min_followers": strconv.Itoa(q.MinFollowers),
		"limit":         strconv.Itoa(q.PageSize),
		"offset":        strconv.Itoa(q.Page * q.PageSize),
	}
	if q.Niche != "" {
		params["category"] = q.Niche
	}

	var result phylloSearchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&result).
		Get("/creators/search")
	if err != nil {
		return nil, fmt.Errorf("phyllo search failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("phyllo search returned status %d", resp.StatusCode())
	}

	creators := make([]RawCreator, 0, len(result.Creators))
	for _, raw := range result.Creators {
		creators = append(creators, phylloToRawCreator(raw, q.Platform))
	}
	return creators, nil
}

func phylloToRawCreator(raw phylloCreator, fallbackPlatform string) RawCreator {
	interests := []string{}
	if raw.Category != "" {
		interests = append(interests, raw.Category)
	}
	return RawCreator{
		ExternalID: raw.ID,
		Profile: RawProfile{
			Fullname:       raw.Name,
			Username:       raw.Username,
			URL:            raw.ProfileURL,
			Picture:        raw.AvatarURL,
			Bio:            raw.Bio,
			Followers:      raw.Followers,
			Following:      raw.Following,
			EngagementRate: raw.EngagementRate,
			PostCount:      raw.PostCount,
			Interests:      interests,
		},
	}
}

func (c *PhylloClient) mockSearch(platform, niche string, limit int) []RawCreator {
	categoryOr := func(fallback string) string {
		if niche != "" {
			return niche
		}
		return fallback
	}

	creators := []RawCreator{
		{
			ExternalID: fmt.Sprintf("mock_%s_fb1", platform),
			Profile: RawProfile{
				Fullname:       "Susan Baker",
				Username:       "susanbaker_crafts",
				URL:            fmt.Sprintf("https://%s.com/susanbaker_crafts", platform),
				Picture:        "https://i.pravatar.cc/150?u=susanbaker",
				Bio:            "Crafting queen | Mom life | 48 years young",
				Followers:      22000,
				EngagementRate: 3.1,
				Interests:      []string{categoryOr("lifestyle")},
			},
		},
		{
			ExternalID: fmt.Sprintf("mock_%s_fb2", platform),
			Profile: RawProfile{
				Fullname:       "Deborah Hayes",
				Username:       "debhayes_pins",
				URL:            fmt.Sprintf("https://%s.com/debhayes_pins", platform),
				Picture:        "https://i.pravatar.cc/150?u=debhayes",
				Bio:            "Pin-spiration for women 40+ | Interior design | Recipes",
				Followers:      35000,
				EngagementRate: 4.5,
				Interests:      []string{categoryOr("home")},
			},
		},
	}

	if limit > 0 && len(creators) > limit {
		creators = creators[:limit]
	}
	return creators
}
