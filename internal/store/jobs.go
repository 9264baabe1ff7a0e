package store

import (
	"context"
	"database/sql"
	"fmt"
)

// JobRecord describes one cached remote render.
type JobRecord struct {
	ContentHash string
	GraphID     string
	Prompt      string
	Seed        string
	Width       int
	Height      int
	Image       []byte
}

// Get looks up a cached result by content hash. The boolean reports
// whether the entry exists; a miss is not an error.
func (c *JobCache) Get(ctx context.Context, contentHash string) ([]byte, bool, error) {
	var image []byte
	err := c.db.QueryRowContext(ctx,
		"SELECT image FROM ai_jobs WHERE content_hash = ?", contentHash,
	).Scan(&image)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read ai job %s: %w", contentHash, err)
	}
	return image, true, nil
}

// Put inserts a job result. Uses ON CONFLICT DO NOTHING for
// idempotency - re-inserting the same content hash is silently
// ignored, so concurrent writers for one key cannot corrupt the entry
// (first writer wins, all see the same bytes since the key is a
// content hash of the inputs).
func (c *JobCache) Put(ctx context.Context, rec JobRecord) error {
	if rec.ContentHash == "" {
		return fmt.Errorf("put ai job: empty content hash")
	}
	if len(rec.Image) == 0 {
		return fmt.Errorf("put ai job %s: empty image", rec.ContentHash)
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO ai_jobs
		(content_hash, graph_id, prompt, seed, width, height, image)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO NOTHING
	`,
		rec.ContentHash,
		rec.GraphID,
		rec.Prompt,
		rec.Seed,
		rec.Width,
		rec.Height,
		rec.Image,
	)
	if err != nil {
		return fmt.Errorf("write ai job %s: %w", rec.ContentHash, err)
	}
	return nil
}

// Count returns the number of cached jobs. Used for diagnostics and
// tests.
func (c *JobCache) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ai_jobs").Scan(&n); err != nil {
		return 0, fmt.Errorf("count ai jobs: %w", err)
	}
	return n, nil
}
