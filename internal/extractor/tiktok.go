package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediagrab/internal/models"
)

var tiktokSanitizeRe = regexp.MustCompile(`[^\w-]+`)

// tikwmInfo is the subset of the tikwm API response the adapter uses.
// The "play" URL is the watermark-free rendition.
type tikwmInfo struct {
	PlayURL  string
	MusicURL string
	Title    string
	Author   string
	Cover    string
	Duration int
}

// TikTok fetches watermark-free videos through the public tikwm API and then
// streams the media over plain HTTP into the downloads directory.
type TikTok struct {
	downloadsDir string
	apiBase      string
	client       *http.Client
}

func NewTikTok(downloadsDir string) *TikTok {
	return &TikTok{
		downloadsDir: downloadsDir,
		apiBase:      "https://www.tikwm.com/api/",
		client:       &http.Client{Timeout: 2 * time.Minute},
	}
}

func (t *TikTok) Platform() models.Platform { return models.PlatformTikTok }

func (t *TikTok) lookup(ctx context.Context, reference string) (*tikwmInfo, error) {
	form := url.Values{"url": {reference}, "hd": {"1"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiBase, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tikwm lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tikwm lookup: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			Play   string `json:"play"`
			Music  string `json:"music"`
			Title  string `json:"title"`
			Cover  string `json:"cover"`
			Author struct {
				Nickname string `json:"nickname"`
			} `json:"author"`
			Duration int `json:"duration"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("tikwm lookup: decode: %w", err)
	}
	if payload.Code != 0 {
		return nil, fmt.Errorf("tikwm lookup: api error: %s", payload.Msg)
	}
	if payload.Data.Play == "" {
		return nil, fmt.Errorf("tikwm lookup: no playable rendition returned")
	}

	title := payload.Data.Title
	if title == "" {
		title = "TikTok Video"
	}
	return &tikwmInfo{
		PlayURL:  payload.Data.Play,
		MusicURL: payload.Data.Music,
		Title:    title,
		Author:   payload.Data.Author.Nickname,
		Cover:    payload.Data.Cover,
		Duration: payload.Data.Duration,
	}, nil
}

func (t *TikTok) Fetch(ctx context.Context, req Request, progress func(int)) (*Result, error) {
	info, err := t.lookup(ctx, req.Reference)
	if err != nil {
		return nil, err
	}

	mediaURL := info.PlayURL
	ext := "mp4"
	if req.Format == "mp3" {
		if info.MusicURL == "" {
			return nil, fmt.Errorf("no separate audio rendition available for this video")
		}
		mediaURL = info.MusicURL
		ext = "mp3"
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	safeTitle := tiktokSanitizeRe.ReplaceAllString(strings.ReplaceAll(info.Title, " ", "_"), "")
	if len(safeTitle) > 50 {
		safeTitle = safeTitle[:50]
	}
	if safeTitle == "" {
		safeTitle = "tiktok"
	}
	filename := fmt.Sprintf("%s_%s.%s", safeTitle, token, ext)
	path := filepath.Join(t.downloadsDir, filename)

	if err := t.stream(ctx, mediaURL, path, progress); err != nil {
		os.Remove(path)
		return nil, err
	}
	return &Result{Path: path, Filename: filename, Title: info.Title}, nil
}

// stream saves the media to disk, reporting percentage progress when the
// server announces a content length.
func (t *TikTok) stream(ctx context.Context, mediaURL, path string, progress func(int)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("tiktok download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tiktok download: unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tiktok download: create file: %w", err)
	}
	defer out.Close()

	var written int64
	buf := make([]byte, 32*1024)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return fmt.Errorf("tiktok download: write: %w", werr)
			}
			written += int64(n)
			if progress != nil && resp.ContentLength > 0 {
				progress(int(written * 100 / resp.ContentLength))
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("tiktok download: read: %w", rerr)
		}
	}
}

func (t *TikTok) Info(ctx context.Context, reference string) (*models.Preview, error) {
	info, err := t.lookup(ctx, reference)
	if err != nil {
		return nil, err
	}
	preview := &models.Preview{
		Title:     info.Title,
		Artist:    info.Author,
		Thumbnail: info.Cover,
	}
	if info.Duration > 0 {
		preview.Duration = fmt.Sprintf("%d", info.Duration)
	}
	return preview, nil
}
