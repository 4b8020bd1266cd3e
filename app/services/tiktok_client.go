package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Plain-text search queries in three tiers (TikTok has no search operators)
var tiktokSearchQueries = []string{
	// Tier 1: broad UGC discovery
	"UGC creator",
	"#ugccreator",
	"#ugccontent",
	"brand partner content creator",
	"dm for collabs",
	"pr friendly creator",
	"honest review creator",
	"brand ambassador creator",
	"UGC content creator",
	"#ugccommunity",
	"product review creator",
	"unboxing creator",
	"sponsored content creator",
	// Tier 2: demo-targeted
	"UGC creator mom",
	"UGC creator over 40",
	"#genxcreator",
	"#midlifecreator",
	"mom content creator UGC",
	"UGC creator woman",
	"#momcreator",
	"content creator mom life",
	"UGC mama",
	"empty nester creator",
	"midlife content creator",
	"UGC creator wife",
	"#ugcmom",
	"brand partner mom",
	"product review mom",
	"over 40 content creator",
	"gen x content creator",
	// Tier 3: niche
	"period underwear creator",
	"leak proof underwear review",
	"incontinence creator",
	"pelvic floor review",
	"postpartum mom UGC",
	"women's health creator",
	"#periodunderwear review",
	"leakproof underwear try on",
	"bladder leak underwear",
	"postpartum underwear review",
}

const (
	tiktokBaseURL    = "https://www.tiktok.com"
	tiktokQueryLimit = 5
	tiktokDeepCap    = 500
	tiktokEnrichCap  = 20
)

var (
	tiktokHandlePattern   = regexp.MustCompile(`/@([^/?#]+)`)
	tiktokFollowerPattern = regexp.MustCompile(`(?i)([\d.,]+[KMB]?)\s*Followers`)
	tiktokCountLine       = regexp.MustCompile(`(?i)^[\d.,]+[KMB]?$`)
)

// TikTokClient scrapes TikTok's user search pages for UGC creators.
// TikTok only serves search results to an established session, so the
// client warms its cookie jar against the homepage plus one throwaway
// search before the first real query.
type TikTokClient struct {
	enabled bool
	http    *resty.Client

	mu     sync.Mutex
	warmed bool
}

// NewTikTokClient creates a TikTok scraping client
func NewTikTokClient(enabled bool, timeout time.Duration) *TikTokClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	client := resty.New().
		SetBaseURL(tiktokBaseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", desktopUserAgent).
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	return &TikTokClient{enabled: enabled, http: client}
}

func (c *TikTokClient) Name() string { return "tiktok" }

func (c *TikTokClient) Configured() bool { return c.enabled }

// warmSession establishes session cookies. The first search against a
// cold session always fails, so a throwaway search is part of warm-up.
func (c *TikTokClient) warmSession(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.warmed {
		return
	}

	if _, err := c.http.R().SetContext(ctx).Get("/"); err != nil {
		log.Printf("tiktok session warm-up failed: %v", err)
		return
	}
	if _, err := c.http.R().SetContext(ctx).SetQueryParam("q", "creator").Get("/search/user"); err != nil {
		log.Printf("tiktok throwaway search failed: %v", err)
		return
	}

	c.warmed = true
}

// tiktokUser is one profile card scraped from a search results page,
// optionally topped up with stats from the user's profile page
type tiktokUser struct {
	Username    string
	DisplayName string
	Bio         string
	Avatar      string
	Followers   int
	Hearts      int
	Videos      int
}

// Search scrapes TikTok user search for UGC creator profiles
func (c *TikTokClient) Search(ctx context.Context, q SourceQuery) ([]RawCreator, error) {
	if !c.Configured() {
		return nil, nil
	}

	c.warmSession(ctx)

	internalCap := q.PageSize
	if q.DeepSearch {
		internalCap = tiktokDeepCap
	}

	queries := append([]string(nil), tiktokSearchQueries...)
	if q.Niche != "" {
		queries = append(queries, q.Niche+" UGC creator", q.Niche+" content creator mom")
	}
	if !q.DeepSearch {
		queries = queries[:tiktokQueryLimit]
	}

	seen := map[string]bool{}
	var creators []RawCreator
	enriched := 0

	for _, searchQuery := range queries {
		if len(creators) >= internalCap {
			break
		}

		users, err := c.scrapeUserSearch(ctx, searchQuery)
		if err != nil {
			log.Printf("tiktok search failed for %q: %v", searchQuery, err)
			continue
		}

		for _, user := range users {
			if user.Username == "" || seen[user.Username] {
				continue
			}
			seen[user.Username] = true

			// Search cards carry no heart or video stats, so the
			// engagement estimate needs a profile-page visit
			if enriched < tiktokEnrichCap {
				c.enrichFromProfile(ctx, &user)
				enriched++
			}

			bioLower := strings.ToLower(user.Bio)
			bioScore := countKeywords(bioLower, ugcBioKeywords)
			if bioScore == 0 && user.Followers > 500_000 {
				continue
			}

			interests := InferNiches(user.Bio, "ugc")
			if q.Niche != "" {
				interests = []string{q.Niche}
			}

			creators = append(creators, RawCreator{
				ExternalID: "tiktok_" + user.Username,
				Profile: RawProfile{
					Fullname:       user.DisplayName,
					Username:       user.Username,
					URL:            fmt.Sprintf("%s/@%s", tiktokBaseURL, user.Username),
					Picture:        user.Avatar,
					Bio:            user.Bio,
					Followers:      user.Followers,
					EngagementRate: estimateTikTokEngagement(user.Followers, user.Hearts, user.Videos),
					PostCount:      user.Videos,
					Interests:      interests,
				},
			})
		}

		if err := politeSleep(ctx, 750*time.Millisecond); err != nil {
			return creators, nil
		}
	}

	if len(creators) > internalCap {
		creators = creators[:internalCap]
	}
	return creators, nil
}

// enrichFromProfile fetches the user's profile page for the counter
// stats the search results never include. Failures leave the card data
// untouched.
func (c *TikTokClient) enrichFromProfile(ctx context.Context, user *tiktokUser) {
	resp, err := c.http.R().SetContext(ctx).Get("/@" + user.Username)
	if err != nil {
		log.Printf("tiktok profile fetch failed for %s: %v", user.Username, err)
		return
	}
	if resp.IsError() {
		return
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return
	}
	applyTikTokProfileStats(doc, user)
}

// applyTikTokProfileStats reads the data-e2e counters off a profile page
// into the user. Missing counters keep whatever the search card carried.
func applyTikTokProfileStats(doc *goquery.Document, user *tiktokUser) {
	if v := strings.TrimSpace(doc.Find(`[data-e2e="followers-count"]`).First().Text()); v != "" {
		user.Followers = ParseCount(v)
	}
	if v := strings.TrimSpace(doc.Find(`[data-e2e="likes-count"]`).First().Text()); v != "" {
		user.Hearts = ParseCount(v)
	}
	if v := strings.TrimSpace(doc.Find(`[data-e2e="video-count"]`).First().Text()); v != "" {
		user.Videos = ParseCount(v)
	}
	if user.Bio == "" {
		user.Bio = strings.TrimSpace(doc.Find(`[data-e2e="user-bio"]`).First().Text())
	}
}

// scrapeUserSearch fetches one search results page and extracts the
// profile cards. Each card is an <a href="/@username"> element carrying
// display name and follower count as text lines.
func (c *TikTokClient) scrapeUserSearch(ctx context.Context, searchQuery string) ([]tiktokUser, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", searchQuery).
		Get("/search/user")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tiktok returned status %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var users []tiktokUser

	doc.Find(`a[href*="/@"]`).Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		match := tiktokHandlePattern.FindStringSubmatch(href)
		if match == nil {
			return
		}
		username := match[1]
		if username == "" || username == "tiktok" || seen[username] {
			return
		}
		seen[username] = true

		user := tiktokUser{Username: username}
		user.DisplayName, user.Followers = parseTikTokCardText(link.Text(), username)
		if user.DisplayName == "" {
			user.DisplayName = username
		}

		// Bio sometimes renders as a sibling element outside the link
		sibling := link.Next()
		for i := 0; i < 3 && sibling.Length() > 0; i++ {
			text := strings.TrimSpace(sibling.Text())
			if len(text) > 5 && !strings.EqualFold(text, "follow") &&
				!strings.Contains(strings.ToLower(text), "follower") {
				user.Bio = text
				break
			}
			sibling = sibling.Next()
		}

		if avatar, ok := link.Find("img").First().Attr("src"); ok {
			user.Avatar = avatar
		}

		users = append(users, user)
	})

	return users, nil
}

// parseTikTokCardText picks the display name and follower count out of
// a card's text lines, skipping stat and control lines
func parseTikTokCardText(text, username string) (string, int) {
	followers := 0
	if m := tiktokFollowerPattern.FindStringSubmatch(text); m != nil {
		followers = ParseCount(m[1])
	}

	displayName := ""
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || line == username || line == "@"+username {
			continue
		}
		if strings.EqualFold(line, "follow") || strings.EqualFold(line, "followers") ||
			strings.EqualFold(line, "likes") || line == "·" {
			continue
		}
		lineLower := strings.ToLower(line)
		if tiktokCountLine.MatchString(line) {
			continue
		}
		if strings.ContainsAny(line, "0123456789") &&
			(strings.Contains(lineLower, "follower") || strings.Contains(lineLower, "like") ||
				strings.Contains(lineLower, "video")) {
			continue
		}
		displayName = line
		break
	}

	return displayName, followers
}

// estimateTikTokEngagement derives an engagement rate from total hearts
// spread over the video count, relative to followers
func estimateTikTokEngagement(followers, hearts, videos int) float64 {
	if followers == 0 || videos == 0 {
		return 0.0
	}

	avgLikesPerVideo := float64(hearts) / float64(videos)
	estimated := avgLikesPerVideo / float64(followers) * 100
	return math.Round(math.Min(20.0, math.Max(0.1, estimated))*100) / 100
}
