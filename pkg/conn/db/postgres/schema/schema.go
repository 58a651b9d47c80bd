// database schema, applied at daemon startup.
//
// All statements are idempotent, so applying it over an existing
// database is safe.
package schema

import (
	"context"
	_ "embed"

	kpool "github.com/snpflow/snpflow/pkg/conn/db/postgres/pool"
	xe "github.com/snpflow/snpflow/pkg/errors"
)

//go:embed schema.sql
var ddl string

func Apply(ctx context.Context, pool kpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, ddl); err != nil {
		return xe.Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return xe.Wrap(err)
	}
	return nil
}
