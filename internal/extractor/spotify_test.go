package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSpotifyWithServer(t *testing.T, handler http.HandlerFunc) *Spotify {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewSpotify(NewYouTube(t.TempDir()))
	s.oembedBase = srv.URL
	s.client = srv.Client()
	return s
}

func TestSpotifyInfoSplitsTitleAndArtist(t *testing.T) {
	s := newSpotifyWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("url"), "track/4cOdK2wGLETKBW3PvgPWqT")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title": "Mr. Brightside by The Killers", "thumbnail_url": "https://i.scdn.co/image/cover"}`))
	})

	preview, err := s.Info(context.Background(), "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT?si=xyz")
	require.NoError(t, err)
	assert.Equal(t, "Mr. Brightside", preview.Title)
	assert.Equal(t, "The Killers", preview.Artist)
	assert.Equal(t, "https://i.scdn.co/image/cover", preview.Thumbnail)
}

func TestSpotifyInfoTitleWithoutArtist(t *testing.T) {
	s := newSpotifyWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "Untitled Track"}`))
	})

	preview, err := s.Info(context.Background(), "https://open.spotify.com/track/abc123")
	require.NoError(t, err)
	assert.Equal(t, "Untitled Track", preview.Title)
	assert.Empty(t, preview.Artist)
}

func TestSpotifyInfoRejectsNonTrackURL(t *testing.T) {
	s := NewSpotify(NewYouTube(t.TempDir()))
	_, err := s.Info(context.Background(), "https://open.spotify.com/artist/0LcJLqbBmaGUft1e9Mm8HV")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no track id")
}

func TestSpotifyInfoUpstreamError(t *testing.T) {
	s := newSpotifyWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := s.Info(context.Background(), "https://open.spotify.com/track/abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
