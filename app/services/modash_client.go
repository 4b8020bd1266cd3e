package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ModashClient queries the Modash discovery API for creator candidates.
// Without an API key it serves built-in fixtures so local development
// and tests work end to end.
type ModashClient struct {
	baseURL string
	apiKey  string
	http    *resty.Client
}

// NewModashClient creates a Modash discovery API client
func NewModashClient(baseURL, apiKey string, timeout time.Duration) *ModashClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetHeader("Content-Type", "application/json")
	return &ModashClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    client,
	}
}

func (c *ModashClient) Name() string { return "modash" }

func (c *ModashClient) Configured() bool { return c.apiKey != "" }

type modashProfile struct {
	Fullname       string   `json:"fullname"`
	Username       string   `json:"username"`
	URL            string   `json:"url"`
	Picture        string   `json:"picture"`
	Bio            string   `json:"bio"`
	Followers      int      `json:"followers"`
	Following      int      `json:"following"`
	EngagementRate float64  `json:"engagementRate"`
	AvgLikes       int      `json:"avgLikes"`
	AvgComments    int      `json:"avgComments"`
	AvgViews       int      `json:"avgViews"`
	PostCount      int      `json:"postCount"`
	Gender         string   `json:"gender"`
	Age            string   `json:"age"`
	Interests      []string `json:"interests"`
}

type modashHit struct {
	UserID  string        `json:"userId"`
	Profile modashProfile `json:"profile"`
}

type modashSearchResponse struct {
	Lookalikes []modashHit `json:"lookalikes"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
}

// Search runs a Modash discovery search for the query's platform
func (c *ModashClient) Search(ctx context.Context, q SourceQuery) ([]RawCreator, error) {
	if !c.Configured() {
		return c.mockSearch(q.Platform, q.Niche, q.PageSize), nil
	}

	influencer := map[string]any{
		"followers":      map[string]any{"min": q.MinFollowers},
		"engagementRate": map[string]any{"min": q.MinEngagement},
	}
	if q.MaxFollowers > 0 {
		influencer["followers"] = map[string]any{"min": q.MinFollowers, "max": q.MaxFollowers}
	}
	if q.Gender != "" {
		influencer["gender"] = strings.ToUpper(q.Gender)
	}
	if q.Niche != "" {
		influencer["interests"] = []string{q.Niche}
	}
	if q.AgeMin > 0 || q.AgeMax > 0 {
		age := map[string]any{}
		if q.AgeMin > 0 {
			age["min"] = q.AgeMin
		}
		if q.AgeMax > 0 {
			age["max"] = q.AgeMax
		}
		influencer["age"] = age
	}

	body := map[string]any{
		"influencer": influencer,
		"sort":       map[string]any{"field": "followers", "direction": "desc"},
		"page":       q.Page,
		"limit":      q.PageSize,
	}

	var result modashSearchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post(fmt.Sprintf("/%s/search", q.Platform))
	if err != nil {
		return nil, fmt.Errorf("modash search failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("modash search returned status %d", resp.StatusCode())
	}

	creators := make([]RawCreator, 0, len(result.Lookalikes))
	for _, hit := range result.Lookalikes {
		creators = append(creators, hitToRawCreator(hit))
	}
	return creators, nil
}

func hitToRawCreator(hit modashHit) RawCreator {
	return RawCreator{
		ExternalID: hit.UserID,
		Profile: RawProfile{
			Fullname:       hit.Profile.Fullname,
			Username:       hit.Profile.Username,
			URL:            hit.Profile.URL,
			Picture:        hit.Profile.Picture,
			Bio:            hit.Profile.Bio,
			Followers:      hit.Profile.Followers,
			Following:      hit.Profile.Following,
			EngagementRate: hit.Profile.EngagementRate,
			AvgLikes:       hit.Profile.AvgLikes,
			AvgComments:    hit.Profile.AvgComments,
			AvgViews:       hit.Profile.AvgViews,
			PostCount:      hit.Profile.PostCount,
			Gender:         strings.ToLower(hit.Profile.Gender),
			AgeRange:       hit.Profile.Age,
			Interests:      hit.Profile.Interests,
		},
	}
}

// mockFixture is one development-mode creator profile
type mockFixture struct {
	Name      string
	Handle    string
	Bio       string
	Followers int
	EngRate   float64
	AgeRange  string
	Interests []string
}

var modashFixtures = []mockFixture{
	{"Sarah Mitchell", "sarahmitchell_life", "UGC creator | Mom of 3 | Wellness advocate | Born 1978 | Honest product reviews", 45000, 4.2, "45-54", []string{"wellness", "lifestyle"}},
	{"Jennifer Adams", "jenadams_beauty", "UGC content creator for beauty brands | Skincare for women over 40 | DM for collabs", 82000, 5.1, "40-49", []string{"beauty"}},
	{"Lisa Thompson", "lisathompson_home", "UGC creator | Home decor | DIY enthusiast | Empty nester | Honest unboxing videos", 31000, 3.8, "50-59", []string{"home"}},
	{"Karen Rodriguez", "karenrod_fitness", "Content creator for fitness brands | Certified trainer | Menopause wellness coach", 67000, 6.3, "40-49", []string{"fitness"}},
	{"Michelle Park", "michellepark_food", "UGC food creator | Korean-American recipes | Brand partner | Honest kitchen reviews", 120000, 4.7, "45-54", []string{"food"}},
	{"Diana Walsh", "dianawalsh_style", "Fashion UGC creator | Style for the fabulous 50s | Brand ambassador", 28000, 3.2, "50-59", []string{"fashion"}},
	{"Patricia Chen", "patriciachen_travel", "Travel content creator | 55 countries | UGC for travel brands | Age 48", 95000, 5.5, "45-54", []string{"travel"}},
	{"Angela Foster", "angelafoster_garden", "UGC creator | Master gardener | Cottage core | Product reviewer | Grandma of 4", 18000, 7.1, "55-60", []string{"home", "crafts"}},
	{"Carol Martinez", "carolm_yoga", "Yoga content creator | Mindfulness coach | UGC for wellness brands | In my 40s", 54000, 4.9, "40-49", []string{"wellness", "fitness"}},
	{"Nancy Kim", "nancykim_crafts", "Craft UGC creator | Quilting queen | Honest product reviews since 1998", 37000, 3.5, "50-59", []string{"crafts"}},
	{"Rebecca Stone", "rebeccastone_wine", "UGC creator for food & drink brands | Sommelier | Honest reviews at 46", 72000, 5.8, "45-54", []string{"food"}},
	{"Laura Bennett", "laurab_reads", "Book UGC creator | 200+ honest reviews/year | Content creator for publishers", 41000, 4.4, "40-49", []string{"education", "lifestyle"}},
	{"Donna Reeves", "donnareeves_ugc", "Full-time UGC creator | Product photography | Honest unboxing | Mom | Born 1980", 52000, 5.0, "40-49", []string{"lifestyle"}},
	{"Tammy Nguyen", "tammyn_skincare", "UGC creator for skincare brands | Esthetician | Anti-aging advocate | Age 51", 39000, 6.8, "50-59", []string{"beauty", "wellness"}},
	{"Sandra Lopez", "sandralopez_fit", "Fitness UGC creator | Personal trainer | Content for supplement brands | Over 40", 74000, 5.3, "40-49", []string{"fitness"}},
	{"Brenda White", "brendawhite_cook", "UGC food creator | Southern recipes | Brand partner for kitchen gadgets | 53", 61000, 4.1, "50-59", []string{"food"}},
	{"Julie Harper", "julieharper_mom", "UGC creator | Parenting content | Product reviews for busy moms | Gen X mama", 48000, 5.7, "40-49", []string{"parenting", "lifestyle"}},
	{"Christina Yang", "christinayang_decor", "Home decor UGC creator | Interior styling | Honest furniture reviews | Age 47", 33000, 4.6, "45-54", []string{"home"}},
	{"Heather Brooks", "heatherbrooks_ugc", "UGC content creator | Unboxing videos | Brand collaborations | PR friendly | 44", 87000, 5.9, "40-49", []string{"lifestyle"}},
	{"Valerie Scott", "valeriescott_well", "Wellness UGC creator | Menopause advocate | Supplement reviewer | Born 1971", 29000, 7.3, "50-59", []string{"wellness", "health"}},
	{"Denise Carter", "denisecarter_pet", "UGC creator for pet brands | Dog mom x3 | Honest product reviews | 46", 56000, 6.1, "45-54", []string{"lifestyle"}},
	{"Tina Murray", "tinamurray_fashion", "Fashion UGC creator | Midlife style | Content for clothing brands | Over 50", 43000, 3.9, "50-59", []string{"fashion"}},
	{"Kimberly Ross", "kimross_organic", "Organic lifestyle UGC creator | Clean eating | Brand ambassador | Mom in her 40s", 65000, 5.4, "40-49", []string{"food", "health"}},
	{"Stephanie Hall", "stephaniehall_diy", "DIY UGC creator | Home renovation | Product reviewer | Empty nester | 54", 27000, 6.5, "50-59", []string{"home", "crafts"}},
	{"Cynthia Bell", "cynthiabell_travel", "Travel UGC creator | Weekend getaways | Hotel reviews | Honest content | Age 49", 91000, 4.8, "45-54", []string{"travel"}},
	{"Amy Griffin", "amygriffin_beauty", "Beauty UGC creator | Anti-aging skincare | Honest brand reviews | 42", 78000, 5.6, "40-49", []string{"beauty"}},
	{"Teresa Coleman", "teresacoleman_read", "Book UGC creator | Audiobook reviewer | Content for publishers | Librarian | 55", 22000, 7.0, "55-60", []string{"education"}},
	{"Sharon Price", "sharonprice_craft", "Crafting UGC creator | Knitting & crochet | Yarn brand partner | In my 50s", 34000, 4.3, "50-59", []string{"crafts"}},
	{"Deborah James", "deborahjames_health", "Health UGC creator | Wellness over 50 | Supplement reviews | Honest content", 47000, 5.2, "50-59", []string{"health", "wellness"}},
	{"Pamela Rivera", "pamelarivera_cook", "UGC food creator | Meal prep queen | Kitchen gadget reviewer | Mom of teens", 58000, 4.5, "45-54", []string{"food"}},
	{"Janet Phillips", "janetphillips_yoga", "Yoga UGC creator | Mindful movement | Content for activewear brands | Age 48", 36000, 6.7, "45-54", []string{"fitness", "wellness"}},
	{"Maria Gonzalez", "mariagonzalez_ugc", "Bilingual UGC creator | Lifestyle content | Brand partner | Latina mom | 43", 69000, 5.1, "40-49", []string{"lifestyle"}},
	{"Robin Turner", "robinturner_home", "Home UGC creator | Organization expert | Product reviews | Born 1974", 42000, 4.0, "50-59", []string{"home"}},
	{"Kathleen Ward", "kathleenward_style", "Fashion UGC creator | Classic style | Honest clothing reviews | Fabulous at 56", 25000, 6.2, "55-60", []string{"fashion"}},
	{"Lori Patterson", "loripatterson_fit", "Fitness UGC creator | Strength training over 45 | Supplement reviews | Content creator", 53000, 5.8, "45-54", []string{"fitness"}},
	{"Monica Hughes", "monicahughes_life", "Lifestyle UGC creator | Product unboxing | Honest reviews | Midlife mom | Gen X", 44000, 4.7, "45-54", []string{"lifestyle"}},
	{"Dana Collins", "danacollins_ugc", "UGC creator for brands | Beauty & wellness | PR friendly | DM for collabs | 41", 81000, 5.3, "40-49", []string{"beauty", "wellness"}},
}

// mockSearch serves the development fixtures, filtered by niche
func (c *ModashClient) mockSearch(platform, niche string, limit int) []RawCreator {
	creators := make([]RawCreator, 0, len(modashFixtures))
	nicheLower := strings.ToLower(niche)

	for i, f := range modashFixtures {
		if niche != "" && !containsFold(f.Interests, nicheLower) {
			continue
		}
		creators = append(creators, RawCreator{
			ExternalID: fmt.Sprintf("mock_%s_%d", platform, i),
			Profile: RawProfile{
				Fullname:       f.Name,
				Username:       f.Handle,
				URL:            fmt.Sprintf("https://%s.com/%s", platform, f.Handle),
				Picture:        fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.Handle),
				Bio:            f.Bio,
				Followers:      f.Followers,
				EngagementRate: f.EngRate,
				Gender:         "female",
				AgeRange:       f.AgeRange,
				Interests:      f.Interests,
			},
		})
	}

	if limit > 0 && len(creators) > limit {
		creators = creators[:limit]
	}
	return creators
}

// containsFold reports whether the list contains the value, case-insensitively
func containsFold(list []string, valueLower string) bool {
	for _, item := range list {
		if strings.ToLower(item) == valueLower {
			return true
		}
	}
	return false
}
