package extractor

import (
	"context"

	"mediagrab/internal/models"
)

// Request carries the parameters of one fetch. Reference is either a direct
// URL or a free-text query the adapter resolves itself.
type Request struct {
	Reference string
	Format    string
	Quality   string
}

// Result is the outcome of a successful fetch: a file on local disk.
type Result struct {
	Path     string
	Filename string
	Title    string
}

// Extractor performs the actual source-specific fetch/transcode. The progress
// callback, when non-nil, receives percentages in the 0-100 range; adapters
// may call it from their own goroutines.
type Extractor interface {
	Platform() models.Platform
	Fetch(ctx context.Context, req Request, progress func(int)) (*Result, error)
	Info(ctx context.Context, reference string) (*models.Preview, error)
}

// Registry maps platforms to their extractor adapters.
type Registry struct {
	extractors map[models.Platform]Extractor
}

func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{extractors: make(map[models.Platform]Extractor)}
	for _, e := range extractors {
		r.extractors[e.Platform()] = e
	}
	return r
}

func (r *Registry) Register(e Extractor) {
	r.extractors[e.Platform()] = e
}

func (r *Registry) Get(platform models.Platform) (Extractor, bool) {
	e, ok := r.extractors[platform]
	return e, ok
}
