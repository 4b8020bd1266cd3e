package services

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tiktokProfileHTML = `
<html><body>
  <h2>
    <strong data-e2e="followers-count">45.2K</strong> Followers
    <strong data-e2e="likes-count">1.3M</strong> Likes
  </h2>
  <span data-e2e="video-count">312</span>
  <h2 data-e2e="user-bio">UGC creator | honest reviews | dm for collabs</h2>
</body></html>`

func TestApplyTikTokProfileStats(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tiktokProfileHTML))
	require.NoError(t, err)

	user := tiktokUser{Username: "wellnessmom", Followers: 40000}
	applyTikTokProfileStats(doc, &user)

	assert.Equal(t, 45200, user.Followers)
	assert.Equal(t, 1_300_000, user.Hearts)
	assert.Equal(t, 312, user.Videos)
	assert.Equal(t, "UGC creator | honest reviews | dm for collabs", user.Bio)
}

func TestApplyTikTokProfileStatsKeepsCardData(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)

	user := tiktokUser{Username: "wellnessmom", Followers: 40000, Bio: "card bio"}
	applyTikTokProfileStats(doc, &user)

	assert.Equal(t, 40000, user.Followers)
	assert.Equal(t, 0, user.Hearts)
	assert.Equal(t, 0, user.Videos)
	assert.Equal(t, "card bio", user.Bio)
}

func TestEstimateTikTokEngagement(t *testing.T) {
	tests := []struct {
		name      string
		followers int
		hearts    int
		videos    int
		want      float64
	}{
		{"scraped stats yield a real rate", 45200, 1_300_000, 312, 9.22},
		{"tiny rate clamps to floor", 1_000_000, 100, 100, 0.1},
		{"viral account clamps to ceiling", 1000, 5_000_000, 50, 20.0},
		{"no videos means no estimate", 45200, 0, 0, 0.0},
		{"no followers means no estimate", 0, 1000, 10, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimateTikTokEngagement(tt.followers, tt.hearts, tt.videos)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}
