package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTikTokWithServer(t *testing.T, handler http.Handler) *TikTok {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tk := NewTikTok(t.TempDir())
	tk.apiBase = srv.URL + "/api/"
	tk.client = srv.Client()
	return tk
}

func TestTikTokInfo(t *testing.T) {
	tk := newTikTokWithServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "https://www.tiktok.com/@user/video/1", r.PostForm.Get("url"))
		assert.Equal(t, "1", r.PostForm.Get("hd"))
		w.Write([]byte(`{"code": 0, "data": {"play": "https://cdn/video.mp4", "music": "https://cdn/audio.mp3", "title": "dance clip", "cover": "https://cdn/cover.jpg", "author": {"nickname": "someuser"}, "duration": 17}}`))
	}))

	preview, err := tk.Info(context.Background(), "https://www.tiktok.com/@user/video/1")
	require.NoError(t, err)
	assert.Equal(t, "dance clip", preview.Title)
	assert.Equal(t, "someuser", preview.Artist)
	assert.Equal(t, "https://cdn/cover.jpg", preview.Thumbnail)
	assert.Equal(t, "17", preview.Duration)
}

func TestTikTokInfoAPIError(t *testing.T) {
	tk := newTikTokWithServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": -1, "msg": "Url parsing is failed! Please check url."}`))
	}))

	_, err := tk.Info(context.Background(), "https://www.tiktok.com/@user/video/broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Url parsing is failed")
}

func TestTikTokFetchVideo(t *testing.T) {
	mux := http.NewServeMux()
	var mediaURL string
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"code": 0, "data": {"play": %q, "music": "", "title": "My Cool Clip!!", "author": {"nickname": "u"}}}`, mediaURL)
	})
	mux.HandleFunc("/media", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "8")
		w.Write([]byte("videodta"))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	mediaURL = srv.URL + "/media"

	dir := t.TempDir()
	tk := NewTikTok(dir)
	tk.apiBase = srv.URL + "/api/"
	tk.client = srv.Client()

	var lastProgress int
	res, err := tk.Fetch(context.Background(), Request{Reference: "https://www.tiktok.com/@u/video/1", Format: "mp4"}, func(pct int) {
		lastProgress = pct
	})
	require.NoError(t, err)
	assert.Equal(t, 100, lastProgress)

	// Filename is sanitized: punctuation stripped, spaces to underscores.
	assert.Contains(t, res.Filename, "My_Cool_Clip")
	assert.Equal(t, ".mp4", filepath.Ext(res.Filename))
	assert.Equal(t, "My Cool Clip!!", res.Title)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "videodta", string(data))
}

func TestTikTokFetchAudioRequiresMusicURL(t *testing.T) {
	tk := newTikTokWithServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 0, "data": {"play": "https://cdn/video.mp4", "music": "", "title": "x", "author": {"nickname": "u"}}}`))
	}))

	_, err := tk.Fetch(context.Background(), Request{Reference: "https://www.tiktok.com/@u/video/1", Format: "mp3"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no separate audio rendition")
}

func TestTikTokFetchCleansUpOnFailedStream(t *testing.T) {
	mux := http.NewServeMux()
	var mediaURL string
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"code": 0, "data": {"play": %q, "title": "x", "author": {"nickname": "u"}}}`, mediaURL)
	})
	mux.HandleFunc("/media", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	mediaURL = srv.URL + "/media"

	dir := t.TempDir()
	tk := NewTikTok(dir)
	tk.apiBase = srv.URL + "/api/"
	tk.client = srv.Client()

	_, err := tk.Fetch(context.Background(), Request{Reference: "https://www.tiktok.com/@u/video/1", Format: "mp4"}, nil)
	require.Error(t, err)

	leftovers, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, leftovers, "a failed download must not leave partial files")
}
