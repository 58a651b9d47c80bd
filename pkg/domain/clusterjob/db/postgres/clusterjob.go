package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	kpool "github.com/snpflow/snpflow/pkg/conn/db/postgres/pool"
	"github.com/snpflow/snpflow/pkg/domain"
	kdbcluster "github.com/snpflow/snpflow/pkg/domain/clusterjob/db"
	kpgerr "github.com/snpflow/snpflow/pkg/domain/errors/dberrors/postgres"
	"github.com/snpflow/snpflow/pkg/utils/slices"
)

type clusterJobPG struct { // implements kdbcluster.Interface
	pool kpool.Pool
}

func New(pool kpool.Pool) *clusterJobPG {
	return &clusterJobPG{pool: pool}
}

var _ kdbcluster.Interface = &clusterJobPG{}

func (m *clusterJobPG) New(ctx context.Context, cohortId string, k int) (string, error) {
	if k < 2 {
		return "", domain.ErrInvalidClusterK
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	{
		var status string
		if err := tx.QueryRow(
			ctx,
			`select "status" from "feature_table" where "cohort_id" = $1 for share`,
			cohortId,
		).Scan(&status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return "", kpgerr.Missing{Table: "cohort", Identity: cohortId}
			}
			return "", err
		}
		if status != string(domain.FeatureReady) {
			return "", domain.ErrFeatureTableNotReady
		}
	}

	clusterJobId := uuid.NewString()
	if _, err := tx.Exec(
		ctx,
		`
		insert into "cluster_job" ("cluster_job_id", "cohort_id", "status", "k")
		values ($1, $2, $3, $4)
		`,
		clusterJobId, cohortId, string(domain.ClusterCreated), k,
	); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return clusterJobId, nil
}

func (m *clusterJobPG) Find(ctx context.Context, q domain.ClusterJobFindQuery) ([]string, error) {
	rows, err := m.pool.Query(
		ctx,
		`
		select "cluster_job_id" from "cluster_job"
		where
			($1 or "cohort_id" = any($2::varchar[]))
			and ($3 or "status" = any($4::varchar[]))
		order by "updated_at", "cluster_job_id"
		`,
		len(q.CohortId) == 0, q.CohortId,
		len(q.Status) == 0, slices.Map(q.Status, domain.ClusterJobStatus.String),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clusterJobIds := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		clusterJobIds = append(clusterJobIds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return clusterJobIds, nil
}

func (m *clusterJobPG) Get(ctx context.Context, clusterJobId []string) (map[string]domain.ClusterJob, error) {
	return getClusterJob(ctx, m.pool, clusterJobId)
}

func getClusterJob(ctx context.Context, q kpool.Queryer, clusterJobId []string) (map[string]domain.ClusterJob, error) {
	if len(clusterJobId) == 0 {
		return map[string]domain.ClusterJob{}, nil
	}

	rows, err := q.Query(
		ctx,
		`
		select
			"cluster_job_id", "cohort_id", "status", "k",
			"remote_id", "message", "updated_at"
		from "cluster_job"
		where "cluster_job_id" = any($1::varchar[])
		`,
		clusterJobId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := map[string]domain.ClusterJob{}
	for rows.Next() {
		cj := domain.ClusterJob{}
		var status string
		if err := rows.Scan(
			&cj.Id, &cj.CohortId, &status, &cj.K,
			&cj.RemoteId, &cj.Message, &cj.UpdatedAt,
		); err != nil {
			return nil, err
		}
		s, err := domain.AsClusterJobStatus(status)
		if err != nil {
			return nil, err
		}
		cj.Status = s
		ret[cj.Id] = cj
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ret, nil
}

func (m *clusterJobPG) PickAndSetStatus(
	ctx context.Context,
	cursor domain.ClusterJobCursor,
	task func(domain.ClusterJob) (domain.ClusterJob, error),
) (domain.ClusterJobCursor, bool, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return cursor, false, err
	}
	defer tx.Rollback(ctx)

	var job domain.ClusterJob
	{
		var clusterJobId string
		if err := tx.QueryRow(
			ctx,
			`
			select "cluster_job_id" from "cluster_job"
			where
				"status" = any($1::varchar[])
				and "lifecycle_suspend_until" < now()
			order by "cluster_job_id" <= $2, "cluster_job_id"
			limit 1
			for no key update skip locked
			`,
			slices.Map(cursor.Status, domain.ClusterJobStatus.String),
			cursor.Head,
		).Scan(&clusterJobId); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return cursor, false, nil
			}
			return cursor, false, err
		}

		j, err := getClusterJob(ctx, tx, []string{clusterJobId})
		if err != nil {
			return cursor, false, err
		}
		job = j[clusterJobId]

		// cursor is moved!
		cursor = domain.ClusterJobCursor{
			Head:     clusterJobId,
			Status:   cursor.Status,
			Debounce: cursor.Debounce,
		}
	}

	updated, err := task(job)
	if err != nil {
		return cursor, false, err
	}

	if updated.Status == job.Status {
		// no transition. Just debounce the job.
		if _, err := tx.Exec(
			ctx,
			`
			update "cluster_job"
			set
				"remote_id" = $1, "message" = $2,
				"lifecycle_suspend_until" = now() + $3
			where "cluster_job_id" = $4
			`,
			updated.RemoteId, updated.Message, cursor.Debounce, job.Id,
		); err != nil {
			return cursor, false, err
		}
		return cursor, false, tx.Commit(ctx)
	}

	if !job.Status.CanTransitTo(updated.Status) {
		return cursor, false, domain.NewErrInvalidClusterStateChanging(job.Status, updated.Status)
	}

	if _, err := tx.Exec(
		ctx,
		`
		update "cluster_job"
		set
			"status" = $1, "remote_id" = $2, "message" = $3,
			"updated_at" = now(),
			"lifecycle_suspend_until" = now() + $4
		where "cluster_job_id" = $5
		`,
		string(updated.Status), updated.RemoteId, updated.Message,
		cursor.Debounce, job.Id,
	); err != nil {
		return cursor, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return cursor, false, err
	}
	return cursor, true, nil
}
