package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	kpool "github.com/snpflow/snpflow/pkg/conn/db/postgres/pool"
	"github.com/snpflow/snpflow/pkg/domain"
	kpgerr "github.com/snpflow/snpflow/pkg/domain/errors/dberrors/postgres"
	kdbfeature "github.com/snpflow/snpflow/pkg/domain/feature/db"
	"github.com/snpflow/snpflow/pkg/utils/slices"
)

type featurePG struct { // implements kdbfeature.Interface
	pool kpool.Pool
}

func New(pool kpool.Pool) *featurePG {
	return &featurePG{pool: pool}
}

var _ kdbfeature.Interface = &featurePG{}

func (m *featurePG) Get(ctx context.Context, cohortId []string) (map[string]domain.FeatureTable, error) {
	if len(cohortId) == 0 {
		return map[string]domain.FeatureTable{}, nil
	}

	rows, err := m.pool.Query(
		ctx,
		`
		select "cohort_id", "status", "path", "row_count", "column_count", "updated_at"
		from "feature_table"
		where "cohort_id" = any($1::varchar[])
		`,
		cohortId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := map[string]domain.FeatureTable{}
	for rows.Next() {
		ft := domain.FeatureTable{VariantsPerChromosome: map[string]int{}}
		var status string
		if err := rows.Scan(
			&ft.CohortId, &status, &ft.Path, &ft.Rows, &ft.Cols, &ft.UpdatedAt,
		); err != nil {
			return nil, err
		}
		s, err := domain.AsFeatureTableStatus(status)
		if err != nil {
			return nil, err
		}
		ft.Status = s
		ret[ft.CohortId] = ft
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts, err := m.pool.Query(
		ctx,
		`
		select "cohort_id", "chromosome", "variant_count" from "feature_chromosome"
		where "cohort_id" = any($1::varchar[])
		`,
		slices.KeysOf(ret),
	)
	if err != nil {
		return nil, err
	}
	defer counts.Close()

	for counts.Next() {
		var cid, chromosome string
		var variants int
		if err := counts.Scan(&cid, &chromosome, &variants); err != nil {
			return nil, err
		}
		ret[cid].VariantsPerChromosome[chromosome] = variants
	}
	if err := counts.Err(); err != nil {
		return nil, err
	}

	return ret, nil
}

func (m *featurePG) PickCohortToBuild(ctx context.Context, rebuildAfter time.Duration) (string, bool, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return "", false, err
	}
	defer tx.Rollback(ctx)

	// A stale building row is one whose build was interrupted, for
	// example by a daemon restart. Pick it again after rebuildAfter.
	var cohortId string
	if err := tx.QueryRow(
		ctx,
		`
		select "cohort_id" from "feature_table"
		where
			(
				"status" = $1
				or ("status" = $2 and "updated_at" < now() - $3)
			)
			and exists (
				select 1 from "run" where "run"."cohort_id" = "feature_table"."cohort_id"
			)
			and not exists (
				select 1 from "run"
				where "run"."cohort_id" = "feature_table"."cohort_id"
					and "run"."status" != $4
			)
		order by "updated_at", "cohort_id"
		limit 1
		for no key update of "feature_table" skip locked
		`,
		string(domain.FeatureAbsent), string(domain.FeatureBuilding),
		rebuildAfter, string(domain.Done),
	).Scan(&cohortId); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}

	if _, err := tx.Exec(
		ctx,
		`
		update "feature_table"
		set "status" = $1, "updated_at" = now()
		where "cohort_id" = $2
		`,
		string(domain.FeatureBuilding), cohortId,
	); err != nil {
		return "", false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", false, err
	}
	return cohortId, true, nil
}

func (m *featurePG) SetReady(
	ctx context.Context, cohortId string, path string,
	rows int, cols int, perChromosome map[string]int,
) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := m.expectBuilding(ctx, tx, cohortId); err != nil {
		return err
	}

	if _, err := tx.Exec(
		ctx,
		`
		update "feature_table"
		set
			"status" = $1, "path" = $2,
			"row_count" = $3, "column_count" = $4,
			"updated_at" = now()
		where "cohort_id" = $5
		`,
		string(domain.FeatureReady), path, rows, cols, cohortId,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(
		ctx,
		`delete from "feature_chromosome" where "cohort_id" = $1`,
		cohortId,
	); err != nil {
		return err
	}
	for chromosome, variants := range perChromosome {
		if _, err := tx.Exec(
			ctx,
			`
			insert into "feature_chromosome" ("cohort_id", "chromosome", "variant_count")
			values ($1, $2, $3)
			`,
			cohortId, chromosome, variants,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (m *featurePG) SetBroken(ctx context.Context, cohortId string) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := m.expectBuilding(ctx, tx, cohortId); err != nil {
		return err
	}

	if _, err := tx.Exec(
		ctx,
		`
		update "feature_table"
		set "status" = $1, "path" = '', "row_count" = 0, "column_count" = 0, "updated_at" = now()
		where "cohort_id" = $2
		`,
		string(domain.FeatureBroken), cohortId,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// lock the feature table row and verify it is building.
func (m *featurePG) expectBuilding(ctx context.Context, tx kpool.Tx, cohortId string) error {
	var status string
	if err := tx.QueryRow(
		ctx,
		`select "status" from "feature_table" where "cohort_id" = $1 for no key update`,
		cohortId,
	).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kpgerr.Missing{Table: "feature_table", Identity: cohortId}
		}
		return err
	}
	if status != string(domain.FeatureBuilding) {
		return domain.ErrFeatureTableNotBuilding
	}
	return nil
}
