package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/ugc-creator-finder/models"
	"github.com/go-resty/resty/v2"
)

// platformTemplate maps a platform to its profile URL pattern
type platformTemplate struct {
	Platform string
	URL      string // %s is the handle
}

var profileTemplates = []platformTemplate{
	{"instagram", "https://www.instagram.com/%s/"},
	{"tiktok", "https://www.tiktok.com/@%s"},
	{"youtube", "https://www.youtube.com/@%s"},
	{"linkedin", "https://www.linkedin.com/in/%s"},
}

// ProfileFinder probes common profile URL patterns to find the same
// creator on other platforms
type ProfileFinder struct {
	http    *resty.Client
	timeout time.Duration
}

// NewProfileFinder creates a cross-platform profile finder
func NewProfileFinder(timeout time.Duration) *ProfileFinder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; UGCFinderBot/1.0)")
	return &ProfileFinder{http: client, timeout: timeout}
}

type probeResult struct {
	Platform string
	URL      string
	Found    bool
}

// Find checks whether the handle (and a dot-for-underscore variant)
// exists on the other platforms via concurrent HEAD requests. One hit
// per platform; the whole sweep is bounded by the finder's timeout.
func (f *ProfileFinder) Find(ctx context.Context, handle, sourcePlatform string) []models.CrossPlatformProfile {
	if handle == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	handles := []string{handle}
	if alt := strings.ReplaceAll(handle, "_", "."); alt != handle {
		handles = append(handles, alt)
	}

	results := make(chan probeResult, len(profileTemplates)*len(handles))
	var wg sync.WaitGroup

	for _, tmpl := range profileTemplates {
		if tmpl.Platform == sourcePlatform {
			continue
		}
		for _, h := range handles {
			wg.Add(1)
			go func(platform, url string) {
				defer wg.Done()
				results <- f.probe(ctx, platform, url)
			}(tmpl.Platform, strings.Replace(tmpl.URL, "%s", h, 1))
		}
	}

	wg.Wait()
	close(results)

	seen := map[string]bool{}
	var profiles []models.CrossPlatformProfile
	for result := range results {
		if !result.Found || seen[result.Platform] {
			continue
		}
		seen[result.Platform] = true
		profiles = append(profiles, models.CrossPlatformProfile{
			Platform: result.Platform,
			URL:      result.URL,
		})
	}

	return profiles
}

// probe issues a HEAD request; 2xx/3xx means the profile exists
func (f *ProfileFinder) probe(ctx context.Context, platform, url string) probeResult {
	resp, err := f.http.R().SetContext(ctx).Head(url)
	if err != nil {
		return probeResult{Platform: platform, URL: url, Found: false}
	}
	return probeResult{Platform: platform, URL: url, Found: resp.StatusCode() < 400}
}
