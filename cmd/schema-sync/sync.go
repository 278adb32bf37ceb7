package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"targetmysql/internal/config"
	"targetmysql/internal/connector"
	"targetmysql/internal/metrics"
	"targetmysql/internal/singer"
	"targetmysql/internal/storage"
)

// summary aggregates what one sync run did, for the final log line and for
// tests.
type summary struct {
	Schemas          int64
	SchemasUnchanged int64
	Records          int64
	States           int64
	ActivateVersions int64
	Unknown          int64
}

// runSync drains upstream messages from in and keeps destination tables
// aligned with the schemas they announce.
//
// SCHEMA messages reconcile their stream's table unless the schema document
// is byte-identical to the one already applied. RECORD messages are
// validated against stream state and counted; moving their data is not this
// binary's job. STATE messages are forwarded to out only after everything
// before them has been processed, which is what lets the orchestrator
// checkpoint safely. ACTIVATE_VERSION is acknowledged and counted.
func runSync(
	ctx context.Context,
	cfg config.Target,
	repo storage.Repository,
	in io.Reader,
	out io.Writer,
	job string,
) (summary, error) {
	conn := connector.New(repo, repo, connector.Config{MaxVarcharSize: cfg.MaxVarcharSize})
	reg := singer.NewRegistry()
	reader := singer.NewReader(in)
	enc := json.NewEncoder(out)

	var sum summary
	for {
		m, err := reader.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, err
		}

		switch m.Type {
		case singer.TypeSchema:
			stream, changed := reg.ApplySchema(m)
			if !changed {
				sum.SchemasUnchanged++
				metrics.RecordTable(job, "unchanged")
				continue
			}
			sum.Schemas++
			metrics.RecordMessages(job, "schema", 1)

			table := cfg.TableName(stream.Name)
			start := time.Now()
			_, err := conn.PrepareTable(ctx, table, stream.Schema, stream.KeyProperties, false)
			metrics.RecordStep(job, "prepare_table", err, time.Since(start))
			if err != nil {
				return sum, fmt.Errorf("stream %s: %w", stream.Name, err)
			}
			metrics.RecordTable(job, "prepared")
			log.Printf("sync: stream=%s table=%s prepared fields=%d", stream.Name, table, len(stream.Schema.Properties))

		case singer.TypeRecord:
			if _, err := reg.ApplyRecord(m); err != nil {
				return sum, err
			}
			sum.Records++
			metrics.RecordMessages(job, "record", 1)

		case singer.TypeState:
			sum.States++
			metrics.RecordMessages(job, "state", 1)
			// Everything preceding this STATE has been handled; emit it so
			// the orchestrator can checkpoint.
			if err := enc.Encode(map[string]any{"type": "STATE", "value": m.Value}); err != nil {
				return sum, fmt.Errorf("emit state: %w", err)
			}

		case singer.TypeActivateVersion:
			sum.ActivateVersions++
			metrics.RecordMessages(job, "activate_version", 1)
			log.Printf("sync: stream=%s activate_version=%d acknowledged (soft/hard delete handled downstream)", m.Stream, m.Version)

		default:
			sum.Unknown++
			metrics.RecordMessages(job, "unknown", 1)
			log.Printf("sync: skipping unknown message type %q at line %d", m.Type, reader.Line())
		}
	}

	log.Printf(
		"sync: done schemas=%d unchanged=%d records=%d states=%d activate=%d unknown=%d streams=%d",
		sum.Schemas, sum.SchemasUnchanged, sum.Records, sum.States, sum.ActivateVersions, sum.Unknown, reg.Len(),
	)
	return sum, nil
}
