package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"mediagrab/internal/extractor"
	"mediagrab/internal/models"
)

const systemPrompt = `You are the MediaGrab assistant. You help the user download music and videos.

CAPABILITIES:
1. You can download from YouTube, Spotify and TikTok.
2. If the user names a song/artist, it will be searched on YouTube.
3. If the user pastes a link, detect it and prepare it for download.
4. You can process lists of multiple songs.

RULES:
1. If the user sends a list of songs (names or links), identify ALL of them.
2. Always assume format "mp3" and quality "320k" unless asked otherwise.
3. If you detect URLs, put them directly in the intention's "url" field.
4. If it is a song name, put it in "query" for searching.
5. Use platform "spotify" for Spotify, "tiktok" for TikTok, "youtube" for YouTube or searches.

ALWAYS respond with JSON of this shape:
{
  "message": "<friendly message to the user>",
  "intentions": [
    {"query": "name or description", "url": "URL if present", "format": "mp3", "quality": "320k", "platform": "youtube|spotify|tiktok"}
  ]
}

Only respond with valid JSON. Be concise and friendly.`

// urlPatterns detect pasted links per platform, so the LLM round-trip can be
// skipped entirely for direct URLs.
var urlPatterns = []struct {
	platform models.Platform
	re       *regexp.Regexp
}{
	{models.PlatformYouTube, regexp.MustCompile(`(?i)(https?://)?(www\.)?(youtube\.com/watch\?v=|youtu\.be/|youtube\.com/shorts/)[\w-]+`)},
	{models.PlatformSpotify, regexp.MustCompile(`(?i)(https?://)?(open\.)?spotify\.com/(track|album|playlist)/\w+`)},
	{models.PlatformTikTok, regexp.MustCompile(`(?i)(https?://)?(www\.|vm\.)?tiktok\.com/[@\w./-]+`)},
}

// ChatCompleter is the slice of the OpenAI client the agent needs; tests
// substitute a fake.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Searcher resolves a free-text query to concrete YouTube hits.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]extractor.SearchResult, error)
}

// Response is what a chat turn produces: a user-facing message plus the
// structured intentions the batch executor fans out.
type Response struct {
	Message    string             `json:"message"`
	Intentions []models.Intention `json:"intentions"`
}

// MediaAgent turns free text into download intentions. Direct URLs are
// detected with regexes; everything else goes through an OpenAI-compatible
// chat completion (Groq in production). The LLM output is untrusted and is
// schema-validated before anything downstream sees it.
type MediaAgent struct {
	client   ChatCompleter
	model    string
	searcher Searcher
}

func New(apiKey, baseURL, model string, searcher Searcher) *MediaAgent {
	a := &MediaAgent{model: model, searcher: searcher}
	if apiKey == "" {
		log.Warn("Agent API key not set; natural-language requests will be rejected")
		return a
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	a.client = openai.NewClientWithConfig(cfg)
	return a
}

// NewWithClient injects a prebuilt completion client; used by tests.
func NewWithClient(client ChatCompleter, model string, searcher Searcher) *MediaAgent {
	return &MediaAgent{client: client, model: model, searcher: searcher}
}

// DetectURLs extracts known platform links from free text.
func DetectURLs(text string) []models.Intention {
	var intentions []models.Intention
	for _, p := range urlPatterns {
		for _, match := range p.re.FindAllString(text, -1) {
			u := match
			if !strings.HasPrefix(u, "http") {
				u = "https://" + u
			}
			intentions = append(intentions, models.Intention{
				Query:    fmt.Sprintf("%s link", p.platform),
				URL:      u,
				Platform: p.platform,
				Format:   "mp3",
				Quality:  "320k",
			})
		}
	}
	return intentions
}

// normalize fills defaults on an intention coming out of the LLM. It does not
// reject anything: unsupported platforms and formats flow through to the
// orchestrator's validation so the batch executor can report them per item.
func normalize(in models.Intention) models.Intention {
	in.Query = strings.TrimSpace(in.Query)
	in.URL = strings.TrimSpace(in.URL)
	if in.Platform == "" {
		in.Platform = models.PlatformYouTube
	}
	if in.Format == "" {
		in.Format = "mp3"
	}
	if in.Quality == "" {
		in.Quality = "320k"
	}
	return in
}

// ParseIntent converts one user message into download intentions.
func (a *MediaAgent) ParseIntent(ctx context.Context, text string) (*Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty message", models.ErrValidation)
	}

	// Direct links skip the LLM entirely.
	if detected := DetectURLs(text); len(detected) > 0 {
		noun := "Link"
		if len(detected) > 1 {
			noun = "Links"
		}
		return &Response{
			Message:    fmt.Sprintf("%s detected! Starting download...", noun),
			Intentions: detected,
		}, nil
	}

	if a.client == nil {
		return nil, fmt.Errorf("agent is not configured (missing API key)")
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from completion")
	}

	var parsed Response
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parse completion response as JSON: %w", err)
	}

	for i, in := range parsed.Intentions {
		parsed.Intentions[i] = normalize(in)
	}
	a.enrich(ctx, parsed.Intentions)

	if parsed.Message == "" {
		parsed.Message = fmt.Sprintf("Found %d download(s) in your request.", len(parsed.Intentions))
	}
	return &parsed, nil
}

// enrich resolves query-only YouTube intentions to concrete video URLs.
func (a *MediaAgent) enrich(ctx context.Context, intentions []models.Intention) {
	if a.searcher == nil {
		return
	}
	for i, in := range intentions {
		if in.URL != "" || in.Query == "" || in.Platform != models.PlatformYouTube {
			continue
		}
		hits, err := a.searcher.Search(ctx, in.Query, 1)
		if err != nil || len(hits) == 0 {
			log.Debugf("Search enrichment failed for %q: %v", in.Query, err)
			continue
		}
		intentions[i].URL = hits[0].URL
		intentions[i].Query = hits[0].Title
	}
}
