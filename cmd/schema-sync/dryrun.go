package main

import (
	"context"
	"fmt"
	"io"

	"targetmysql/internal/connector"
	"targetmysql/internal/storage"
)

var _ storage.Repository = (*dryRunRepo)(nil)

// dryRunRepo satisfies storage.Repository without touching a database:
// every table reads as absent and every statement is written to w instead
// of being executed. Useful for reviewing the exact DDL a sync would issue.
type dryRunRepo struct {
	w io.Writer
}

func (d *dryRunRepo) TableExists(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func (d *dryRunRepo) Columns(ctx context.Context, name string) ([]connector.Column, error) {
	return nil, nil
}

func (d *dryRunRepo) Exec(ctx context.Context, sql string) error {
	_, err := fmt.Fprintln(d.w, sql)
	return err
}

func (d *dryRunRepo) Close() {}
