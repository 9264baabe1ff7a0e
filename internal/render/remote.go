package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"log/slog"

	"lukechampine.com/blake3"

	"github.com/roach88/tessera/internal/store"
)

// AIJob is the full spec of one remote image generation. Identical
// jobs must return identical results; the remote backend is expected
// to be idempotent under the job's content hash.
type AIJob struct {
	GraphID     string         `json:"graph_id"`
	Prompt      string         `json:"prompt"`
	Seed        string         `json:"seed"`
	AspectRatio string         `json:"aspect_ratio"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Params      map[string]any `json:"params,omitempty"`
}

// AIResult is the outcome of a remote generation.
type AIResult struct {
	// ImageBytes is the encoded image (PNG expected).
	ImageBytes []byte

	// ContentHash is the backend's content address for the job.
	// Informational; the local cache keys on JobHash.
	ContentHash string

	// CacheHit reports whether the backend served the job from its
	// own cache.
	CacheHit bool
}

// AIClient is the remote AI-image adapter boundary. Implementations
// own their network policy; they are expected to fail fast with a
// standard error rather than block the pipeline indefinitely.
type AIClient interface {
	Generate(ctx context.Context, job AIJob) (AIResult, error)
}

// JobHash computes the BLAKE3 content hash of the canonical JSON
// encoding of a job spec. encoding/json sorts map keys, so two jobs
// with equal fields hash identically regardless of construction
// order.
func JobHash(job AIJob) (string, error) {
	canonical, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("encode job spec: %w", err)
	}
	sum := blake3.Sum256(canonical)
	return fmt.Sprintf("%x", sum[:]), nil
}

// AspectRatio reduces width:height to lowest terms ("1:1", "16:9").
func AspectRatio(width, height int) string {
	if width <= 0 || height <= 0 {
		return "1:1"
	}
	d := gcd(width, height)
	return fmt.Sprintf("%d:%d", width/d, height/d)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// renderAI serves an sd trait: durable cache lookup by job hash, then
// the remote client on a miss, then decode and draw unscaled into the
// target size.
func (d *Dispatcher) renderAI(ctx context.Context, job AIJob) (*image.RGBA, error) {
	if d.ai == nil {
		return nil, ErrNoAIClient
	}

	hash, err := JobHash(job)
	if err != nil {
		return nil, err
	}

	if d.jobs != nil {
		raw, hit, err := d.jobs.Get(ctx, hash)
		if err != nil {
			return nil, fmt.Errorf("job cache lookup: %w", err)
		}
		if hit {
			slog.Debug("ai job served from durable cache", "content_hash", hash)
			return decodeToSurface(raw, job.Width, job.Height)
		}
	}

	result, err := d.ai.Generate(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("remote generation: %w", err)
	}
	slog.Debug("ai job generated",
		"content_hash", hash,
		"backend_hash", result.ContentHash,
		"backend_cache_hit", result.CacheHit,
	)

	if d.jobs != nil {
		err := d.jobs.Put(ctx, store.JobRecord{
			ContentHash: hash,
			GraphID:     job.GraphID,
			Prompt:      job.Prompt,
			Seed:        job.Seed,
			Width:       job.Width,
			Height:      job.Height,
			Image:       result.ImageBytes,
		})
		if err != nil {
			// Cache population failure degrades to a re-render next
			// time; the current result is still good.
			slog.Warn("ai job cache write failed", "content_hash", hash, "error", err)
		}
	}

	return decodeToSurface(result.ImageBytes, job.Width, job.Height)
}

// decodeToSurface decodes encoded image bytes and draws them unscaled
// into a width x height surface.
func decodeToSurface(raw []byte, width, height int) (*image.RGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode remote image: %w", err)
	}
	dst := NewSurface(width, height)
	bounds := img.Bounds()
	draw.Draw(dst, image.Rect(0, 0, bounds.Dx(), bounds.Dy()), img, bounds.Min, draw.Over)
	return dst, nil
}
