package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"targetmysql/internal/config"
	"targetmysql/internal/connector"
	"targetmysql/internal/metrics"
	"targetmysql/internal/schema"
	"targetmysql/internal/storage"
)

// Catalog is a file listing every stream to prepare up front, as an
// alternative to draining a live message stream.
type Catalog struct {
	Streams []CatalogStream `json:"streams"`
}

// CatalogStream is one stream entry: its name, record schema, and key
// properties.
type CatalogStream struct {
	Stream        string             `json:"stream"`
	Schema        schema.TableSchema `json:"schema"`
	KeyProperties []string           `json:"key_properties"`
}

// loadCatalog reads and decodes a catalog file.
func loadCatalog(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog: open: %w", err)
	}
	defer f.Close()

	var c Catalog
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	return c, nil
}

// prepareCatalog reconciles every cataloged stream's table, bounded-parallel
// across streams. Each stream touches a distinct table, so the statements
// cannot conflict with each other; per-table races with outside writers are
// left to the database, as everywhere else.
func prepareCatalog(
	ctx context.Context,
	cfg config.Target,
	repo storage.Repository,
	cat Catalog,
	job string,
) error {
	conn := connector.New(repo, repo, connector.Config{MaxVarcharSize: cfg.MaxVarcharSize})

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Runtime.PrepareWorkers)

	for _, s := range cat.Streams {
		g.Go(func() error {
			table := cfg.TableName(s.Stream)
			start := time.Now()
			_, err := conn.PrepareTable(ctx, table, s.Schema, s.KeyProperties, false)
			metrics.RecordStep(job, "prepare_table", err, time.Since(start))
			if err != nil {
				return fmt.Errorf("stream %s: %w", s.Stream, err)
			}
			metrics.RecordTable(job, "prepared")
			log.Printf("catalog: stream=%s table=%s prepared fields=%d", s.Stream, table, len(s.Schema.Properties))
			return nil
		})
	}
	return g.Wait()
}
