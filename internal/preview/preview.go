package preview

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"mediagrab/internal/extractor"
	"mediagrab/internal/models"
)

// Resolver answers best-effort metadata lookups before a download is
// committed. It never creates a job and never takes a download slot; failures
// are soft and the UI simply omits the preview.
type Resolver struct {
	extractors *extractor.Registry
	timeout    time.Duration
}

func NewResolver(extractors *extractor.Registry, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{extractors: extractors, timeout: timeout}
}

// Resolve looks up title/artist/thumbnail for the reference. The lookup runs
// under its own short timeout, independent of the full download timeout.
func (r *Resolver) Resolve(ctx context.Context, platform models.Platform, reference string) (*models.Preview, error) {
	if reference == "" {
		return nil, fmt.Errorf("empty reference")
	}
	ext, ok := r.extractors.Get(platform)
	if !ok {
		return nil, fmt.Errorf("unsupported platform %q", platform)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	info, err := ext.Info(ctx, reference)
	if err != nil {
		log.Debugf("Preview lookup failed for %s %q: %v", platform, reference, err)
		return nil, err
	}
	return info, nil
}
