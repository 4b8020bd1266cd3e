package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Search queries in three tiers: broad UGC discovery, demo-targeted
// (female + age signals), and the leakproof underwear niche.
var twitterSearchQueries = []string{
	// Tier 1: broad UGC discovery
	`"UGC creator" -is:retweet`,
	`#ugccreator -is:retweet`,
	`#ugccontent -is:retweet`,
	`"content creator" "brand partner" -is:retweet`,
	`"dm for collabs" OR "pr friendly" -is:retweet`,
	`"honest review" creator -is:retweet`,
	`"brand ambassador" creator -is:retweet`,
	// Tier 2: demo-targeted
	`"UGC creator" (mom OR woman OR she/her OR wife) -is:retweet`,
	`"UGC creator" (mother OR mama OR queen) -is:retweet`,
	`"content creator" ("over 40" OR "over 50" OR midlife OR "gen x") -is:retweet`,
	`"content creator" (mom OR woman OR she/her) -is:retweet`,
	`#ugccontent (mom OR mother OR "empty nester" OR grandma) -is:retweet`,
	`#ugccreator (woman OR she/her OR wife OR mama) -is:retweet`,
	`"brand partner" (woman OR mom OR "40s" OR "50s") -is:retweet`,
	`"brand ambassador" (mom OR mother OR woman OR wife) -is:retweet`,
	`"honest review" (mom OR woman OR "over 40" OR "over 50") -is:retweet`,
	`"content creator" ("mom of teens" OR "empty nester" OR "gen x") -is:retweet`,
	`("UGC" OR "ugc creator") ("40s" OR "50s" OR midlife OR "middle age") -is:retweet`,
	`("product review" OR "unboxing") (mom OR woman OR "over 40") -is:retweet`,
	`"mom creator" (UGC OR brand OR review OR collab) -is:retweet`,
	`("pr friendly" OR "dm for collabs") (mom OR she/her OR woman) -is:retweet`,
	// Tier 3: niche
	`"period underwear" creator -is:retweet`,
	`"leak proof underwear" (review OR creator) -is:retweet`,
	`"incontinence" (creator OR review OR UGC) -is:retweet`,
	`"pelvic floor" (creator OR review OR mom) -is:retweet`,
	`"postpartum" (mom OR creator OR UGC OR review) -is:retweet`,
	`"women's health" (creator OR UGC) -is:retweet`,
}

// Plain-text queries for Nitter scraping (no search operators)
var nitterSearchQueries = []string{
	"UGC creator",
	"ugc creator mom",
	"content creator over 40",
	"content creator mom",
	"ugc creator woman",
	"brand partner mom review",
	"honest review creator",
	"period underwear creator",
	"leak proof underwear review",
	"incontinence creator",
	"pelvic floor review",
	"postpartum mom UGC",
	"women's health creator",
}

// ugcBioKeywords signal a UGC creator in a profile bio
var ugcBioKeywords = []string{
	"ugc", "content creator", "brand partner", "product review",
	"honest review", "unboxing", "creator for brands", "brand ambassador",
	"collab", "sponsored", "pr friendly", "dm for collabs",
	"content creation", "freelance creator", "creator", "influencer",
	"reviewer", "pr", "gifted",
}

// Known public Nitter instances (may change over time)
var defaultNitterInstances = []string{
	"https://nitter.privacydev.net",
	"https://nitter.poast.org",
	"https://nitter.woodland.cafe",
}

const (
	twitterAPIBase     = "https://api.twitter.com/2"
	broadQueryLimit    = 5
	nitterQueryLimit   = 6
	deepSearchAPICap   = 500
	deepSearchScrapCap = 200
)

// TwitterClient searches Twitter/X API v2 for UGC creators, with a
// Nitter HTML-scraping fallback when the API token is missing or dry.
type TwitterClient struct {
	bearerToken     string
	api             *resty.Client
	scraper         *resty.Client
	nitterInstances []string

	mu            sync.Mutex
	nitterChecked bool
	cachedNitter  string
}

// NewTwitterClient creates a Twitter search client
func NewTwitterClient(bearerToken string, timeout time.Duration) *TwitterClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	api := resty.New().
		SetBaseURL(twitterAPIBase).
		SetTimeout(timeout).
		SetHeader("Authorization", "Bearer "+bearerToken).
		SetHeader("Content-Type", "application/json")
	scraper := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("User-Agent", desktopUserAgent)
	return &TwitterClient{
		bearerToken:     bearerToken,
		api:             api,
		scraper:         scraper,
		nitterInstances: defaultNitterInstances,
	}
}

func (c *TwitterClient) Name() string { return "twitter" }

func (c *TwitterClient) Configured() bool { return c.bearerToken != "" }

type twitterMetrics struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	TweetCount     int `json:"tweet_count"`
	ListedCount    int `json:"listed_count"`
}

type twitterUser struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Username        string         `json:"username"`
	Description     string         `json:"description"`
	ProfileImageURL string         `json:"profile_image_url"`
	PublicMetrics   twitterMetrics `json:"public_metrics"`
}

type twitterSearchResponse struct {
	Includes struct {
		Users []twitterUser `json:"users"`
	} `json:"includes"`
	Meta struct {
		NextToken string `json:"next_token"`
	} `json:"meta"`
}

// Search finds UGC creators via the official API, falling back to
// Nitter scraping when the API yields nothing
func (c *TwitterClient) Search(ctx context.Context, q SourceQuery) ([]RawCreator, error) {
	if c.Configured() {
		creators, err := c.searchViaAPI(ctx, q)
		if err != nil {
			return nil, err
		}
		if len(creators) > 0 {
			return creators, nil
		}
		log.Printf("twitter API returned no results, trying nitter fallback")
	}

	return c.searchViaNitter(ctx, q)
}

func (c *TwitterClient) searchViaAPI(ctx context.Context, q SourceQuery) ([]RawCreator, error) {
	internalCap := q.PageSize
	if q.DeepSearch {
		internalCap = deepSearchAPICap
	}

	queries := append([]string(nil), twitterSearchQueries...)
	if q.Niche != "" {
		queries = append(queries, fmt.Sprintf(`("%s creator" OR "%s UGC") (mom OR woman OR "over 40") -is:retweet`, q.Niche, q.Niche))
	}
	if !q.DeepSearch {
		queries = queries[:broadQueryLimit]
	}

	seenIDs := map[string]bool{}
	var creators []RawCreator

	for _, searchQuery := range queries {
		if len(creators) >= internalCap {
			break
		}

		maxPages := 1
		if q.DeepSearch {
			maxPages = 10
		}
		nextToken := ""

		for page := 0; page < maxPages; page++ {
			if len(creators) >= internalCap {
				break
			}

			users, token, err := c.runSearch(ctx, searchQuery, nextToken)
			if err != nil {
				log.Printf("twitter query failed: %v", err)
				break
			}

			for _, user := range users {
				if seenIDs[user.ID] {
					continue
				}
				seenIDs[user.ID] = true

				bioLower := strings.ToLower(user.Description)
				bioScore := countKeywords(bioLower, ugcBioKeywords)

				// Celebrity accounts with no creator signal are noise
				if bioScore == 0 && user.PublicMetrics.FollowersCount > 500_000 {
					continue
				}

				creators = append(creators, c.userToRawCreator(user, q.Niche))
			}

			if token == "" {
				break
			}
			nextToken = token
		}
	}

	if len(creators) > internalCap {
		creators = creators[:internalCap]
	}
	return creators, nil
}

func (c *TwitterClient) userToRawCreator(user twitterUser, niche string) RawCreator {
	interests := InferNiches(user.Description, "ugc")
	if niche != "" {
		interests = []string{niche}
	}
	return RawCreator{
		ExternalID: "twitter_" + user.ID,
		Profile: RawProfile{
			Fullname:       user.Name,
			Username:       user.Username,
			URL:            "https://twitter.com/" + user.Username,
			Picture:        strings.Replace(user.ProfileImageURL, "_normal", "_400x400", 1),
			Bio:            user.Description,
			Followers:      user.PublicMetrics.FollowersCount,
			Following:      user.PublicMetrics.FollowingCount,
			EngagementRate: estimateTwitterEngagement(user.PublicMetrics),
			PostCount:      user.PublicMetrics.TweetCount,
			Interests:      interests,
		},
	}
}

// runSearch executes one recent-tweet search and returns the expanded
// author profiles plus the pagination token
func (c *TwitterClient) runSearch(ctx context.Context, searchQuery, nextToken string) ([]twitterUser, string, error) {
	params := map[string]string{
		"query":        searchQuery,
		"max_results":  "100",
		"expansions":   "author_id",
		"tweet.fields": "created_at,public_metrics",
		"user.fields":  "name,username,description,profile_image_url,public_metrics,url",
	}
	if nextToken != "" {
		params["next_token"] = nextToken
	}

	var result twitterSearchResponse
	resp, err := c.api.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&result).
		Get("/tweets/search/recent")
	if err != nil {
		return nil, "", fmt.Errorf("twitter search request failed: %w", err)
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("twitter search returned status %d", resp.StatusCode())
	}

	return result.Includes.Users, result.Meta.NextToken, nil
}

func (c *TwitterClient) searchViaNitter(ctx context.Context, q SourceQuery) ([]RawCreator, error) {
	internalCap := q.PageSize
	if q.DeepSearch {
		internalCap = deepSearchScrapCap
	}

	queries := append([]string(nil), nitterSearchQueries...)
	if q.Niche != "" {
		queries = append(queries, q.Niche+" creator", q.Niche+" UGC review")
	}
	if !q.DeepSearch {
		queries = queries[:nitterQueryLimit]
	}

	nitterBase := c.findWorkingNitter(ctx)
	if nitterBase == "" {
		log.Printf("no working nitter instance found")
		return nil, nil
	}

	seenUsernames := map[string]bool{}
	var creators []RawCreator

	for _, searchQuery := range queries {
		if len(creators) >= internalCap {
			break
		}

		users, err := c.scrapeNitterSearch(ctx, nitterBase, searchQuery)
		if err != nil {
			log.Printf("nitter search failed for %q: %v", searchQuery, err)
			continue
		}

		for _, user := range users {
			if user.Username == "" || seenUsernames[user.Username] {
				continue
			}
			seenUsernames[user.Username] = true

			bioLower := strings.ToLower(user.Bio)
			bioScore := countKeywords(bioLower, ugcBioKeywords)
			if bioScore == 0 && !containsAny(bioLower, []string{"mom", "creator", "review", "ugc"}) {
				continue
			}

			interests := InferNiches(user.Bio, "ugc")
			if q.Niche != "" {
				interests = []string{q.Niche}
			}

			fullname := user.Name
			if fullname == "" {
				fullname = user.Username
			}

			creators = append(creators, RawCreator{
				ExternalID: "twitter_" + user.Username,
				Profile: RawProfile{
					Fullname:       fullname,
					Username:       user.Username,
					URL:            "https://twitter.com/" + user.Username,
					Picture:        user.Avatar,
					Bio:            user.Bio,
					Followers:      user.Followers,
					Following:      user.Following,
					EngagementRate: 1.5, // default estimate, Nitter has no metrics
					PostCount:      user.Tweets,
					Interests:      interests,
				},
			})
		}

		if err := politeSleep(ctx, time.Second); err != nil {
			return creators, nil
		}
	}

	if len(creators) > internalCap {
		creators = creators[:internalCap]
	}
	return creators, nil
}

// nitterUser is one user card scraped from a Nitter search page
type nitterUser struct {
	Name      string
	Username  string
	Bio       string
	Avatar    string
	Followers int
	Following int
	Tweets    int
}

// findWorkingNitter probes the known instances concurrently and caches
// the first responsive one
func (c *TwitterClient) findWorkingNitter(ctx context.Context) string {
	c.mu.Lock()
	if c.nitterChecked {
		cached := c.cachedNitter
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	results := make(chan string, len(c.nitterInstances))
	var wg sync.WaitGroup
	for _, instance := range c.nitterInstances {
		wg.Add(1)
		go func(inst string) {
			defer wg.Done()
			resp, err := c.scraper.R().SetContext(ctx).Get(inst)
			if err == nil && resp.StatusCode() < 400 {
				results <- inst
			}
		}(instance)
	}
	wg.Wait()
	close(results)

	working := ""
	for inst := range results {
		for _, candidate := range c.nitterInstances {
			if candidate == inst && working == "" {
				working = inst
			}
		}
	}

	c.mu.Lock()
	c.nitterChecked = true
	c.cachedNitter = working
	c.mu.Unlock()
	return working
}

// scrapeNitterSearch fetches a Nitter user-search page and extracts the
// user cards from the HTML
func (c *TwitterClient) scrapeNitterSearch(ctx context.Context, nitterBase, searchQuery string) ([]nitterUser, error) {
	resp, err := c.scraper.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"f": "users", "q": searchQuery}).
		Get(nitterBase + "/search")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("nitter returned status %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, err
	}

	var users []nitterUser
	doc.Find(".timeline-item, .user-card, .search-result").Each(func(_ int, card *goquery.Selection) {
		username := strings.TrimPrefix(strings.TrimSpace(card.Find(".username").First().Text()), "@")
		name := strings.TrimSpace(card.Find(".fullname").First().Text())
		bio := strings.TrimSpace(card.Find(".bio").First().Text())
		avatar, _ := card.Find("img.avatar").First().Attr("src")

		user := nitterUser{
			Name:     name,
			Username: username,
			Bio:      bio,
			Avatar:   avatar,
		}

		card.Find(".profile-stat, .stat").Each(func(_ int, stat *goquery.Selection) {
			text := strings.ToLower(stat.Text())
			count := ParseCount(text)
			switch {
			case strings.Contains(text, "follower"):
				user.Followers = count
			case strings.Contains(text, "following"):
				user.Following = count
			case strings.Contains(text, "tweet"), strings.Contains(text, "post"):
				user.Tweets = count
			}
		})

		if user.Name != "" || user.Username != "" {
			users = append(users, user)
		}
	})

	return users, nil
}

// estimateTwitterEngagement approximates an engagement rate from the
// listed-to-follower ratio, clamped to [0.5, 10]
func estimateTwitterEngagement(metrics twitterMetrics) float64 {
	if metrics.FollowersCount == 0 {
		return 0.0
	}

	listRatio := float64(metrics.ListedCount) / float64(metrics.FollowersCount) * 100
	estimated := math.Min(10.0, math.Max(0.5, listRatio*5+1.0))
	return math.Round(estimated*100) / 100
}

// countKeywords counts how many of the keywords appear in the text
func countKeywords(textLower string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(textLower, kw) {
			count++
		}
	}
	return count
}

// containsAny reports whether any keyword appears in the text
func containsAny(textLower string, keywords []string) bool {
	return countKeywords(textLower, keywords) > 0
}

// politeSleep waits between scrape requests, honoring cancellation
func politeSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
