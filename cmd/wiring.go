package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"attendcore/internal/config"
	"attendcore/internal/embedding"
	"attendcore/internal/match"
	"attendcore/internal/recognizer"
	"attendcore/internal/store"
	"attendcore/internal/store/postgres"
	"attendcore/internal/store/replica"
)

// stack bundles the wired recognition pipeline shared by the commands.
type stack struct {
	cfg     *config.Config
	cache   *store.Cache
	service *recognizer.Service
	pool    *postgres.Pool // nil in file-store mode
}

// close releases database resources.
func (s *stack) close() {
	if s.pool != nil {
		_ = s.pool.Close()
	}
}

// buildStack wires the reference store, replica, extractor and matcher from
// config. With DATABASE_URL set the durable store is PostgreSQL (migrations
// run automatically); otherwise references live as JSON files under the
// data directory.
func buildStack(ctx context.Context) (*stack, error) {
	cfg := config.Load()

	var durable store.ReferenceStore
	var pool *postgres.Pool
	if cfg.Database.URL != "" {
		fmt.Printf("Connecting to PostgreSQL database...\n")
		p, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		pool = p
		durable = postgres.NewReferenceRepository(p)
	} else {
		dir := filepath.Join(cfg.Data.Dir, "embeddings")
		fmt.Printf("No DATABASE_URL set, storing references under %s\n", dir)
		fs, err := store.NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		durable = fs
	}

	var rep store.Replica
	if cfg.Replica.Enabled() {
		r, err := replica.NewMinioReplica(cfg.Replica)
		if err != nil {
			return nil, fmt.Errorf("failed to create replica client: %w", err)
		}
		fmt.Printf("Mirroring references to %s\n", r.Name())
		rep = r
	}

	cache := store.NewCache(durable, rep)
	extractor := embedding.Select(ctx, cfg.Embedding.URL, cfg.Embedding.Dim)
	matcher := match.NewMatcher(cfg.Match.CosineThreshold, cfg.Match.L2Threshold)

	return &stack{
		cfg:     cfg,
		cache:   cache,
		service: recognizer.New(extractor, matcher, cache),
		pool:    pool,
	}, nil
}
