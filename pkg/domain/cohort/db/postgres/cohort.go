package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	kpool "github.com/snpflow/snpflow/pkg/conn/db/postgres/pool"
	"github.com/snpflow/snpflow/pkg/domain"
	kdbcohort "github.com/snpflow/snpflow/pkg/domain/cohort/db"
	kpgerr "github.com/snpflow/snpflow/pkg/domain/errors/dberrors/postgres"
	"github.com/snpflow/snpflow/pkg/utils/slices"
)

type cohortPG struct { // implements kdbcohort.Interface
	pool kpool.Pool
}

func New(pool kpool.Pool) *cohortPG {
	return &cohortPG{pool: pool}
}

var _ kdbcohort.Interface = &cohortPG{}

func (m *cohortPG) Register(ctx context.Context, cohort domain.Cohort) (string, []string, error) {
	if err := cohort.Filter.Validate(); err != nil {
		return "", nil, err
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return "", nil, err
	}
	defer tx.Rollback(ctx)

	cohortId := uuid.NewString()
	if _, err := tx.Exec(
		ctx,
		`
		insert into "cohort" (
			"cohort_id", "name", "vcf_root", "sample_count",
			"biallelic_only", "min_maf", "max_missing_rate"
		)
		values ($1, $2, $3, $4, $5, $6, $7)
		`,
		cohortId, cohort.Name, cohort.VCFRoot, cohort.SampleCount,
		cohort.Filter.BiallelicOnly, cohort.Filter.MinMAF, cohort.Filter.MaxMissingRate,
	); err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) && pgerr.Code == pgerrcode.UniqueViolation {
			return "", nil, fmt.Errorf("%w: %s", domain.ErrCohortNameConflict, cohort.Name)
		}
		return "", nil, err
	}

	if _, err := tx.Exec(
		ctx,
		`insert into "feature_table" ("cohort_id", "status") values ($1, $2)`,
		cohortId, string(domain.FeatureAbsent),
	); err != nil {
		return "", nil, err
	}

	runIds := make([]string, 0, len(cohort.Chromosomes))
	for nth, chromosome := range cohort.Chromosomes {
		if _, err := tx.Exec(
			ctx,
			`
			insert into "cohort_chromosome" ("cohort_id", "chromosome", "ordinal")
			values ($1, $2, $3)
			`,
			cohortId, chromosome, nth,
		); err != nil {
			return "", nil, err
		}

		runId := uuid.NewString()
		if _, err := tx.Exec(
			ctx,
			`
			insert into "run" ("run_id", "cohort_id", "chromosome", "status")
			values ($1, $2, $3, $4)
			`,
			runId, cohortId, chromosome, string(domain.Waiting),
		); err != nil {
			return "", nil, err
		}
		runIds = append(runIds, runId)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", nil, err
	}

	return cohortId, runIds, nil
}

func (m *cohortPG) Find(ctx context.Context, query domain.CohortFindQuery) ([]string, error) {
	rows, err := m.pool.Query(
		ctx,
		`
		select "cohort_id" from "cohort"
		where ($1 or "name" = any($2::varchar[]))
		order by "created_at", "cohort_id"
		`,
		len(query.Name) == 0, query.Name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cohortIds := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cohortIds = append(cohortIds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cohortIds, nil
}

func (m *cohortPG) Get(ctx context.Context, cohortId []string) (map[string]domain.Cohort, error) {
	if len(cohortId) == 0 {
		return map[string]domain.Cohort{}, nil
	}

	rows, err := m.pool.Query(
		ctx,
		`
		select
			"cohort_id", "name", "vcf_root", "sample_count",
			"biallelic_only", "min_maf", "max_missing_rate", "created_at"
		from "cohort"
		where "cohort_id" = any($1::varchar[])
		`,
		cohortId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := map[string]domain.Cohort{}
	for rows.Next() {
		c := domain.Cohort{}
		if err := rows.Scan(
			&c.Id, &c.Name, &c.VCFRoot, &c.SampleCount,
			&c.Filter.BiallelicOnly, &c.Filter.MinMAF, &c.Filter.MaxMissingRate,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		ret[c.Id] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	chromosomes, err := m.pool.Query(
		ctx,
		`
		select "cohort_id", "chromosome" from "cohort_chromosome"
		where "cohort_id" = any($1::varchar[])
		order by "cohort_id", "ordinal"
		`,
		slices.KeysOf(ret),
	)
	if err != nil {
		return nil, err
	}
	defer chromosomes.Close()

	for chromosomes.Next() {
		var cid, chromosome string
		if err := chromosomes.Scan(&cid, &chromosome); err != nil {
			return nil, err
		}
		c := ret[cid]
		c.Chromosomes = append(c.Chromosomes, chromosome)
		ret[cid] = c
	}
	if err := chromosomes.Err(); err != nil {
		return nil, err
	}

	return ret, nil
}

func (m *cohortPG) Delete(ctx context.Context, cohortId string) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	{
		var _cid string
		if err := tx.QueryRow(
			ctx,
			`select "cohort_id" from "cohort" where "cohort_id" = $1 for update`,
			cohortId,
		).Scan(&_cid); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return kpgerr.Missing{Table: "cohort", Identity: cohortId}
			}
			return err
		}
	}

	{
		var liveRuns int
		if err := tx.QueryRow(
			ctx,
			`
			select count(*) from "run"
			where "cohort_id" = $1 and "status" = any($2::varchar[])
			`,
			cohortId,
			slices.Map(domain.ProcessingStatuses(), domain.RunStatus.String),
		).Scan(&liveRuns); err != nil {
			return err
		}
		if 0 < liveRuns {
			return domain.ErrCohortHasLiveRuns
		}
	}

	// runs, chromosomes, feature table and cluster jobs go away by cascade.
	if _, err := tx.Exec(
		ctx, `delete from "cohort" where "cohort_id" = $1`, cohortId,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
