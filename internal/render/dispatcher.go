package render

import (
	"context"
	"image"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/tessera/internal/source"
	"github.com/roach88/tessera/internal/store"
	"github.com/roach88/tessera/internal/trait"
)

// Dispatcher routes trait renders to per-modality adapters behind a
// shared cache.
//
// Thread-safety: RenderTrait may be called from any goroutine. The
// singleflight group guarantees at most one in-flight render per
// cache key; duplicate concurrent misses wait for the leader's result
// instead of re-rendering.
type Dispatcher struct {
	cache *Cache
	group singleflight.Group

	shader  Adapter
	sketch  Adapter
	pattern Adapter
	ai      AIClient
	jobs    *store.JobCache

	// imageRoot anchors relative raw-image references.
	imageRoot string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithShaderAdapter replaces the built-in shader adapter.
func WithShaderAdapter(a Adapter) Option {
	return func(d *Dispatcher) { d.shader = a }
}

// WithSketchAdapter replaces the built-in sketch adapter.
func WithSketchAdapter(a Adapter) Option {
	return func(d *Dispatcher) { d.sketch = a }
}

// WithPatternAdapter replaces the built-in audio-pattern adapter.
func WithPatternAdapter(a Adapter) Option {
	return func(d *Dispatcher) { d.pattern = a }
}

// WithAIClient configures the remote AI-image client. Without one,
// sd traits fail with ErrNoAIClient.
func WithAIClient(c AIClient) Option {
	return func(d *Dispatcher) { d.ai = c }
}

// WithJobCache configures the durable content-hash cache for remote
// results.
func WithJobCache(jobs *store.JobCache) Option {
	return func(d *Dispatcher) { d.jobs = jobs }
}

// WithImageRoot anchors relative raw-image references to a directory.
func WithImageRoot(root string) Option {
	return func(d *Dispatcher) { d.imageRoot = root }
}

// NewDispatcher builds a dispatcher around an explicit cache. The
// cache is injected (never a package singleton) so each test can use
// a fresh one.
func NewDispatcher(cache *Cache, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cache:   cache,
		shader:  ShaderAdapter{},
		sketch:  SketchAdapter{},
		pattern: PatternAdapter{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RenderTrait produces the raster surface for one trait at the given
// size and seed. Results are cached by (traitID, seed, width,
// height); concurrent misses for the same key coalesce onto a single
// render.
//
// Adapter failures surface as *Error for that trait only; the caller
// decides whether to abort the token or substitute a blank layer.
func (d *Dispatcher) RenderTrait(ctx context.Context, t trait.Trait, width, height int, seed string) (*image.RGBA, error) {
	key := CacheKey(t.ID, seed, width, height)

	if surface, ok := d.cache.Get(key); ok {
		return surface, nil
	}

	result, err, shared := d.group.Do(key, func() (any, error) {
		// Re-check under the flight: the leader may have populated
		// the cache between our miss and joining the group.
		if surface, ok := d.cache.Get(key); ok {
			return surface, nil
		}

		surface, err := d.render(ctx, t, width, height, seed)
		if err != nil {
			return nil, err
		}
		d.cache.Put(key, surface)
		return surface, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("coalesced duplicate render", "trait", t.ID, "seed", seed)
	}
	return result.(*image.RGBA), nil
}

// render resolves the trait's source and dispatches on the variant.
func (d *Dispatcher) render(ctx context.Context, t trait.Trait, width, height int, seed string) (*image.RGBA, error) {
	variant := source.Resolve(t.Source)

	var (
		surface *image.RGBA
		err     error
	)
	switch variant.Kind {
	case source.KindImage:
		surface, err = renderImage(variant.ImageRef, d.imageRoot, width, height)

	case source.KindShader:
		surface, err = d.shader.Render(ctx, variant.PresetID, variant.Params, width, height, seed)

	case source.KindSketch:
		surface, err = d.sketch.Render(ctx, variant.PresetID, variant.Params, width, height, seed)

	case source.KindPattern:
		surface, err = d.pattern.Render(ctx, variant.PresetID, variant.Params, width, height, seed)

	case source.KindAIImage:
		surface, err = d.renderAI(ctx, AIJob{
			GraphID:     variant.GraphID,
			Prompt:      variant.Prompt,
			Seed:        variant.Seed,
			AspectRatio: AspectRatio(width, height),
			Width:       width,
			Height:      height,
			Params:      variant.Params,
		})
	}

	if err != nil {
		return nil, &Error{
			TraitID:  t.ID,
			Kind:     string(variant.Kind),
			PresetID: variant.PresetID,
			Err:      err,
		}
	}
	return surface, nil
}
