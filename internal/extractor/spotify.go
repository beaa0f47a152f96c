package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"mediagrab/internal/models"
)

var spotifyTrackRe = regexp.MustCompile(`track/([a-zA-Z0-9]+)`)

// Spotify has no direct download path: metadata comes from the public oEmbed
// endpoint and the audio itself is resolved through a YouTube search, exactly
// as the original service does.
type Spotify struct {
	youtube    *YouTube
	oembedBase string
	client     *http.Client
}

func NewSpotify(youtube *YouTube) *Spotify {
	return &Spotify{
		youtube:    youtube,
		oembedBase: "https://open.spotify.com/oembed",
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *Spotify) Platform() models.Platform { return models.PlatformSpotify }

// trackInfo resolves the track's title/artist pair via oEmbed. The oEmbed
// title arrives as "Song by Artist".
func (s *Spotify) trackInfo(ctx context.Context, reference string) (*models.Preview, error) {
	m := spotifyTrackRe.FindStringSubmatch(reference)
	if m == nil {
		return nil, fmt.Errorf("invalid Spotify URL: no track id in %q", reference)
	}
	trackURL := "https://open.spotify.com/track/" + m[1]

	endpoint := s.oembedBase + "?url=" + url.QueryEscape(trackURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify oembed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify oembed: unexpected status %d", resp.StatusCode)
	}

	var data struct {
		Title        string `json:"title"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("spotify oembed: decode: %w", err)
	}

	preview := &models.Preview{Title: data.Title, Thumbnail: data.ThumbnailURL}
	if idx := strings.Index(data.Title, " by "); idx >= 0 {
		preview.Title = strings.TrimSpace(data.Title[:idx])
		preview.Artist = strings.TrimSpace(data.Title[idx+4:])
	}
	return preview, nil
}

func (s *Spotify) Fetch(ctx context.Context, req Request, progress func(int)) (*Result, error) {
	info, err := s.trackInfo(ctx, req.Reference)
	if err != nil {
		return nil, err
	}

	query := info.Title
	if info.Artist != "" {
		query = info.Title + " - " + info.Artist
	}

	res, err := s.youtube.Fetch(ctx, Request{
		Reference: "ytsearch1:" + query,
		Format:    req.Format,
		Quality:   req.Quality,
	}, progress)
	if err != nil {
		return nil, err
	}
	res.Title = info.Title
	return res, nil
}

func (s *Spotify) Info(ctx context.Context, reference string) (*models.Preview, error) {
	return s.trackInfo(ctx, reference)
}
