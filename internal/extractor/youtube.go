package extractor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"mediagrab/internal/models"
)

// progressRe matches yt-dlp's "[download]  42.3% of ..." lines (--newline).
var progressRe = regexp.MustCompile(`\[download\]\s+([0-9]+)(?:\.[0-9]+)?%`)

// SearchResult is one hit from a YouTube search.
type SearchResult struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Channel   string `json:"channel"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// YouTube downloads via the yt-dlp binary, the same way the original service
// shells out for every fetch. It also provides search, which the Spotify
// adapter and the agent reuse.
type YouTube struct {
	binary       string
	downloadsDir string
	oembedBase   string
	client       *http.Client
}

func NewYouTube(downloadsDir string) *YouTube {
	return &YouTube{
		binary:       "yt-dlp",
		downloadsDir: downloadsDir,
		oembedBase:   "https://www.youtube.com/oembed",
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

func (y *YouTube) Platform() models.Platform { return models.PlatformYouTube }

// formatArgs returns the yt-dlp options for the requested output format.
func formatArgs(format, quality string) []string {
	audioQuality := map[string]string{
		"128k": "128",
		"192k": "192",
		"320k": "320",
		"best": "0",
	}[quality]
	if audioQuality == "" {
		audioQuality = "192"
	}

	switch format {
	case "mp3", "m4a", "wav", "flac", "ogg":
		return []string{"-x", "--audio-format", format, "--audio-quality", audioQuality}
	case "mp4":
		return []string{
			"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
			"--merge-output-format", "mp4",
		}
	default:
		return []string{"-x", "--audio-format", "mp3", "--audio-quality", audioQuality}
	}
}

func (y *YouTube) Fetch(ctx context.Context, req Request, progress func(int)) (*Result, error) {
	reference := req.Reference
	if !strings.Contains(reference, "://") && !strings.HasPrefix(reference, "ytsearch") {
		// Free-text query: let yt-dlp resolve the first search hit.
		reference = "ytsearch1:" + reference
	}

	// Unique token per fetch so concurrent jobs never claim each other's files.
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	outputTemplate := filepath.Join(y.downloadsDir, "%(title)s_"+token+".%(ext)s")

	args := []string{
		"--no-playlist",
		"-o", outputTemplate,
		"--restrict-filenames",
		"--no-overwrites",
		"--no-warnings",
		"--newline",
	}
	args = append(args, formatArgs(req.Format, req.Quality)...)
	args = append(args, reference)

	cmd := exec.CommandContext(ctx, y.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("yt-dlp start: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if progress == nil {
			continue
		}
		if m := progressRe.FindStringSubmatch(scanner.Text()); m != nil {
			var pct int
			fmt.Sscanf(m[1], "%d", &pct)
			progress(pct)
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return nil, fmt.Errorf("yt-dlp failed: %s", msg)
	}

	matches, err := filepath.Glob(filepath.Join(y.downloadsDir, "*_"+token+".*"))
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("yt-dlp succeeded but no output file was found")
	}
	path := matches[0]
	filename := filepath.Base(path)
	title := strings.TrimSuffix(filename, filepath.Ext(filename))
	title = strings.TrimSuffix(title, "_"+token)

	return &Result{Path: path, Filename: filename, Title: title}, nil
}

// Search runs a ytsearch without downloading and returns up to limit hits.
func (y *YouTube) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 1
	}
	cmd := exec.CommandContext(ctx, y.binary,
		fmt.Sprintf("ytsearch%d:%s", limit, query),
		"--dump-json", "--no-download", "--no-warnings", "--flat-playlist",
	)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("yt-dlp search failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	var results []SearchResult
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var video struct {
			ID        string `json:"id"`
			Title     string `json:"title"`
			Channel   string `json:"channel"`
			Uploader  string `json:"uploader"`
			Thumbnail string `json:"thumbnail"`
		}
		if err := json.Unmarshal([]byte(line), &video); err != nil {
			log.Warnf("Skipping unparseable yt-dlp search line: %v", err)
			continue
		}
		channel := video.Channel
		if channel == "" {
			channel = video.Uploader
		}
		results = append(results, SearchResult{
			Title:     video.Title,
			URL:       "https://youtube.com/watch?v=" + video.ID,
			Channel:   channel,
			Thumbnail: video.Thumbnail,
		})
	}
	return results, nil
}

// Info resolves display metadata through the oEmbed endpoint, which answers
// in well under a second, unlike a full yt-dlp probe.
func (y *YouTube) Info(ctx context.Context, reference string) (*models.Preview, error) {
	endpoint := y.oembedBase + "?url=" + url.QueryEscape(reference) + "&format=json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube oembed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube oembed: unexpected status %d", resp.StatusCode)
	}

	var data struct {
		Title        string `json:"title"`
		AuthorName   string `json:"author_name"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("youtube oembed: decode: %w", err)
	}
	return &models.Preview{
		Title:     data.Title,
		Artist:    data.AuthorName,
		Thumbnail: data.ThumbnailURL,
	}, nil
}
