package models

import (
	"fmt"
	"time"
)

// Platform identifies the media source a job downloads from.
type Platform string

const (
	PlatformYouTube Platform = "youtube"
	PlatformSpotify Platform = "spotify"
	PlatformTikTok  Platform = "tiktok"
)

// ParsePlatform validates a client-supplied platform string.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformYouTube, PlatformSpotify, PlatformTikTok:
		return Platform(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, s)
}

// Job is one orchestrated download from submission to terminal outcome.
// Result fields (FileID, Filename) are set only on the transition to
// completed; ErrorDetail only on the transition to error.
type Job struct {
	ID        string   `json:"task_id"`
	Platform  Platform `json:"platform"`
	Reference string   `json:"url"`
	Format    string   `json:"format"`
	Quality   string   `json:"quality"`

	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`

	FileID      string `json:"file_id,omitempty"`
	Filename    string `json:"filename,omitempty"`
	ErrorDetail string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terminal reports whether the job reached completed or error.
func (j *Job) Terminal() bool {
	return IsTerminalStatus(j.Status)
}

// Intention is one parsed download wish, produced by the agent and consumed
// exactly once by the batch executor. It has no lifecycle of its own.
type Intention struct {
	Query    string   `json:"query"`
	URL      string   `json:"url,omitempty"`
	Platform Platform `json:"platform"`
	Format   string   `json:"format"`
	Quality  string   `json:"quality"`
}

// Reference returns what the extractor should be handed: the direct URL when
// one was detected, otherwise the free-text query the adapter resolves itself.
func (i Intention) Reference() string {
	if i.URL != "" {
		return i.URL
	}
	return i.Query
}

// Preview holds display metadata looked up before a download is committed.
// It is recomputed on every request and never cached on the job.
type Preview struct {
	Title     string `json:"title,omitempty"`
	Artist    string `json:"artist,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

// FormatInfo describes one downloadable output format.
type FormatInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Extension   string `json:"extension"`
	Description string `json:"description"`
}

// Formats is the catalog exposed to clients.
var Formats = []FormatInfo{
	{ID: "mp3_128", Name: "MP3 128kbps", Extension: "mp3", Description: "Standard quality, small files"},
	{ID: "mp3_192", Name: "MP3 192kbps", Extension: "mp3", Description: "Good quality"},
	{ID: "mp3_320", Name: "MP3 320kbps", Extension: "mp3", Description: "High quality"},
	{ID: "flac", Name: "FLAC", Extension: "flac", Description: "Lossless"},
	{ID: "wav", Name: "WAV", Extension: "wav", Description: "Uncompressed"},
	{ID: "m4a", Name: "M4A (AAC)", Extension: "m4a", Description: "Good quality, Apple friendly"},
	{ID: "mp4", Name: "MP4 Video", Extension: "mp4", Description: "Video with audio"},
}

// platformFormats lists the output formats each platform can produce.
var platformFormats = map[Platform][]string{
	PlatformYouTube: {"mp3", "m4a", "wav", "flac", "ogg", "mp4"},
	PlatformSpotify: {"mp3", "m4a", "wav", "flac", "ogg"},
	PlatformTikTok:  {"mp4", "mp3"},
}

// SupportedFormat reports whether the platform can deliver the given format.
func SupportedFormat(platform Platform, format string) bool {
	for _, f := range platformFormats[platform] {
		if f == format {
			return true
		}
	}
	return false
}
