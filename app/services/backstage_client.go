package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// contentCreatorKeywords signal a content creator in Backstage bio text
var contentCreatorKeywords = []string{
	"content creator", "ugc", "influencer", "social media",
	"brand", "review", "creator", "youtube", "tiktok", "instagram",
}

var (
	backstageAgePattern    = regexp.MustCompile(`(?i)age[:\s]+(\d{2})`)
	backstageRangePattern  = regexp.MustCompile(`(\d{2})\s*-\s*(\d{2})`)
	backstageDecadePattern = regexp.MustCompile(`(\d{2})s`)
	backstageLocPattern    = regexp.MustCompile(`([\w\s]+,\s*(?:[A-Z]{2,3}|[\w\s]+))`)
)

const (
	backstageBaseURL  = "https://www.backstage.com"
	backstageDeepCap  = 200
	backstagePages    = 3
	backstageMaxPages = 10
)

// BackstageClient scrapes the Backstage talent database. Unlike the
// social sources, Backstage exposes self-reported age, gender, and
// location, which flow through as confirmed demographics.
type BackstageClient struct {
	enabled  bool
	email    string
	password string
	http     *resty.Client

	mu       sync.Mutex
	loggedIn bool
}

// NewBackstageClient creates a Backstage talent search client
func NewBackstageClient(enabled bool, email, password string, timeout time.Duration) *BackstageClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	client := resty.New().
		SetBaseURL(backstageBaseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", desktopUserAgent)
	return &BackstageClient{
		enabled:  enabled,
		email:    email,
		password: password,
		http:     client,
	}
}

func (c *BackstageClient) Name() string { return "backstage" }

func (c *BackstageClient) Configured() bool {
	return c.enabled && c.email != "" && c.password != ""
}

// ensureLoggedIn posts the login form once; the session cookie lives in
// the client's jar afterwards
func (c *BackstageClient) ensureLoggedIn(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedIn {
		return true
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"email":    c.email,
			"password": c.password,
		}).
		Post("/login/")
	if err != nil {
		log.Printf("backstage login failed: %v", err)
		return false
	}
	if resp.IsError() {
		log.Printf("backstage login returned status %d", resp.StatusCode())
		return false
	}

	c.loggedIn = true
	return true
}

// Search scrapes the Backstage talent search, paging until the cap
func (c *BackstageClient) Search(ctx context.Context, q SourceQuery) ([]RawCreator, error) {
	if !c.Configured() {
		return nil, nil
	}
	if !c.ensureLoggedIn(ctx) {
		return nil, nil
	}

	internalCap := q.PageSize
	maxPages := backstagePages
	if q.DeepSearch {
		internalCap = backstageDeepCap
		maxPages = backstageMaxPages
	}

	seenURLs := map[string]bool{}
	var creators []RawCreator

	for pageNum := 1; pageNum <= maxPages; pageNum++ {
		if len(creators) >= internalCap {
			break
		}

		profiles, err := c.scrapeTalentPage(ctx, pageNum, q)
		if err != nil {
			log.Printf("backstage page %d scrape failed: %v", pageNum, err)
			break
		}
		if len(profiles) == 0 {
			break
		}

		for _, profile := range profiles {
			if seenURLs[profile.ProfileURL] {
				continue
			}
			seenURLs[profile.ProfileURL] = true
			creators = append(creators, c.formatCreator(profile, q.Niche))
		}

		if err := politeSleep(ctx, 1500*time.Millisecond); err != nil {
			break
		}
	}

	if len(creators) > internalCap {
		creators = creators[:internalCap]
	}
	return creators, nil
}

// backstageProfile is one talent card scraped from a search results page
type backstageProfile struct {
	Name       string
	ProfileURL string
	Bio        string
	Details    string
	Avatar     string
}

func (c *BackstageClient) scrapeTalentPage(ctx context.Context, pageNum int, q SourceQuery) ([]backstageProfile, error) {
	params := map[string]string{"page": strconv.Itoa(pageNum)}
	if q.Gender != "" {
		params["gender"] = strings.ToLower(q.Gender)
	}
	if q.AgeMin > 0 {
		params["age_min"] = strconv.Itoa(q.AgeMin)
	}
	if q.AgeMax > 0 {
		params["age_max"] = strconv.Itoa(q.AgeMax)
	}
	if q.Country != "" {
		params["location"] = q.Country
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/talent/")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("backstage returned status %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, err
	}

	var profiles []backstageProfile
	doc.Find(`[data-testid="talent-card"], .talent-card, .talent-list-item, article, .search-result`).
		Each(func(_ int, card *goquery.Selection) {
			link := card.Find(`a[href*="/talent/"], a[href*="/profile/"]`).First()
			if link.Length() == 0 {
				return
			}
			profileURL, _ := link.Attr("href")
			if profileURL != "" && strings.HasPrefix(profileURL, "/") {
				profileURL = backstageBaseURL + profileURL
			}

			name := strings.TrimSpace(card.Find("h2, h3").First().Text())
			if name == "" {
				return
			}

			var details strings.Builder
			card.Find("span, p").Each(func(_ int, el *goquery.Selection) {
				details.WriteString(" ")
				details.WriteString(el.Text())
			})

			bio := strings.TrimSpace(card.Find(`[class*="bio"], [class*="headline"], [class*="tagline"]`).First().Text())
			avatar, _ := card.Find("img").First().Attr("src")

			profiles = append(profiles, backstageProfile{
				Name:       name,
				ProfileURL: profileURL,
				Bio:        bio,
				Details:    strings.TrimSpace(details.String()),
				Avatar:     avatar,
			})
		})

	return profiles, nil
}

// formatCreator converts a scraped talent card into a raw creator with
// the self-reported demographics attached
func (c *BackstageClient) formatCreator(profile backstageProfile, niche string) RawCreator {
	handle := ""
	if profile.ProfileURL != "" {
		parts := strings.Split(strings.TrimRight(profile.ProfileURL, "/"), "/")
		handle = parts[len(parts)-1]
	}

	ageRange := parseBackstageAge(profile.Details)
	location := parseBackstageLocation(profile.Details)
	country := ""
	if location != "" {
		country = InferCountry(location)
	}

	// Backstage cards carry no follower counts; estimate conservatively
	// from creator signals in the text
	combined := strings.ToLower(profile.Bio + " " + profile.Details)
	estimatedFollowers := 1000
	if containsAny(combined, contentCreatorKeywords) {
		estimatedFollowers = 5000
	}

	externalID := "backstage_" + handle
	if handle == "" {
		externalID = "backstage_" + strings.ReplaceAll(strings.ToLower(profile.Name), " ", "_")
	}

	interests := InferNiches(profile.Bio, "content creator")
	if niche != "" {
		interests = []string{niche}
	}

	return RawCreator{
		ExternalID: externalID,
		Profile: RawProfile{
			Fullname:       profile.Name,
			Username:       handle,
			URL:            profile.ProfileURL,
			Picture:        profile.Avatar,
			Bio:            profile.Bio,
			Followers:      estimatedFollowers,
			EngagementRate: 2.0, // default estimate for Backstage
			Interests:      interests,
		},
		Backstage: &BackstageDetails{
			AgeRange: ageRange,
			Location: location,
			Country:  country,
			Gender:   "female", // talent search already filters by gender
		},
	}
}

// parseBackstageAge extracts an age range from card detail text, trying
// explicit age, then a range, then a decade
func parseBackstageAge(details string) string {
	if details == "" {
		return ""
	}

	if m := backstageAgePattern.FindStringSubmatch(details); m != nil {
		age, _ := strconv.Atoi(m[1])
		if age >= 18 && age <= 99 {
			return bucketForAge(age)
		}
	}

	if m := backstageRangePattern.FindStringSubmatch(details); m != nil {
		return m[1] + "-" + m[2]
	}

	if m := backstageDecadePattern.FindStringSubmatch(details); m != nil {
		decade, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%d-%d", decade, decade+9)
	}

	return ""
}

// parseBackstageLocation extracts "City, ST" style location text
func parseBackstageLocation(details string) string {
	if details == "" {
		return ""
	}
	if m := backstageLocPattern.FindStringSubmatch(details); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
