package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	kpool "github.com/snpflow/snpflow/pkg/conn/db/postgres/pool"
	"github.com/snpflow/snpflow/pkg/domain"
	kpgerr "github.com/snpflow/snpflow/pkg/domain/errors/dberrors/postgres"
	kpgintr "github.com/snpflow/snpflow/pkg/domain/internal/db/postgres"
	"github.com/snpflow/snpflow/pkg/domain/naming"
	kdbrun "github.com/snpflow/snpflow/pkg/domain/run/db"
	"github.com/snpflow/snpflow/pkg/utils/slices"
)

// a struct for DB operations related to Run
type runPG struct { // implements kdbrun.Interface
	pool kpool.Pool
}

func New(pool kpool.Pool) *runPG {
	return &runPG{pool: pool}
}

var _ kdbrun.Interface = &runPG{}

func (m *runPG) Find(ctx context.Context, q domain.RunFindQuery) ([]string, error) {
	rows, err := m.pool.Query(
		ctx,
		`
		select "run_id" from "run"
		where
			($1 or "cohort_id" = any($2::varchar[]))
			and ($3 or "chromosome" = any($4::varchar[]))
			and ($5 or "status" = any($6::varchar[]))
			and ($7::timestamp with time zone is null or $7::timestamp with time zone <= "updated_at")
			and ($8::timestamp with time zone is null or "updated_at" < $8::timestamp with time zone)
		order by "updated_at", "run_id"
		`,
		len(q.CohortId) == 0, q.CohortId,
		len(q.Chromosome) == 0, q.Chromosome,
		len(q.Status) == 0, slices.Map(q.Status, domain.RunStatus.String),
		q.UpdatedSince, q.UpdatedUntil,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runIds := []string{}
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		runIds = append(runIds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runIds, nil
}

func (m *runPG) Get(ctx context.Context, runId []string) (map[string]domain.Run, error) {
	return kpgintr.GetRun(ctx, m.pool, runId)
}

func (m *runPG) SetStatus(ctx context.Context, runId string, newStatus domain.RunStatus) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := m.setStatus(ctx, tx, runId, newStatus, nil, 0); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// update run status in tx, verifying the transition is legal.
//
// Transiting to starting records the worker name of the run. Transiting
// to a terminal status (or back to waiting) clears it. When exit is not
// nil, it is saved together.
//
// The run is locked until the tx ends.
func (m *runPG) setStatus(
	ctx context.Context, tx kpool.Tx,
	runId string, newStatus domain.RunStatus, exit *domain.RunExit,
	debounce time.Duration,
) error {
	var current string
	if err := tx.QueryRow(
		ctx,
		`select "status" from "run" where "run_id" = $1 for no key update`,
		runId,
	).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kpgerr.Missing{Table: "run", Identity: runId}
		}
		return err
	}

	currentStatus, err := domain.AsRunStatus(current)
	if err != nil {
		return err
	}
	if !currentStatus.CanTransitTo(newStatus) {
		return domain.NewErrInvalidRunStateChanging(currentStatus, newStatus)
	}

	var exitCode *int16
	var exitMessage *string
	if exit != nil {
		c := int16(exit.Code)
		exitCode, exitMessage = &c, &exit.Message
	}

	if _, err := tx.Exec(
		ctx,
		`
		update "run"
		set
			"status" = $1,
			"worker_name" = case
				when $1 = $4 then $5
				when $1 = any($6::varchar[]) then ''
				else "worker_name"
			end,
			"exit_code" = coalesce($7::smallint, "exit_code"),
			"exit_message" = coalesce($8::varchar, "exit_message"),
			"updated_at" = now(),
			"lifecycle_suspend_until" = now() + $2
		where "run_id" = $3
		`,
		string(newStatus), debounce, runId,
		string(domain.Starting), naming.Worker(runId),
		[]string{
			string(domain.Done), string(domain.Failed), string(domain.Waiting),
		},
		exitCode, exitMessage,
	); err != nil {
		return err
	}
	return nil
}

func (m *runPG) PickAndSetStatus(
	ctx context.Context,
	cursor domain.RunCursor,
	task func(r domain.Run) (domain.RunStatus, *domain.RunExit, error),
) (domain.RunCursor, bool, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return cursor, false, err
	}
	defer tx.Rollback(ctx)

	var run domain.Run
	{
		var runId string
		if err := tx.QueryRow(
			ctx,
			`
			select "run_id" from "run"
			where
				"status" = any($1::varchar[])
				and "lifecycle_suspend_until" < now()
			order by "run_id" <= $2, "run_id"
			limit 1
			for no key update skip locked
			`,
			slices.Map(cursor.Status, domain.RunStatus.String),
			cursor.Head,
		).Scan(&runId); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return cursor, false, nil
			}
			return cursor, false, err
		}

		r, err := kpgintr.GetRun(ctx, tx, []string{runId})
		if err != nil {
			return cursor, false, err
		}
		run = r[runId]

		// cursor is moved!
		cursor = domain.RunCursor{
			Head:     runId,
			Status:   cursor.Status,
			Debounce: cursor.Debounce,
		}
	}

	newStatus, exit, err := task(run)
	if err != nil {
		return cursor, false, err
	}

	if newStatus == run.Status {
		// no transition. Just debounce the run.
		if _, err := tx.Exec(
			ctx,
			`update "run" set "lifecycle_suspend_until" = now() + $1 where "run_id" = $2`,
			cursor.Debounce, run.Id,
		); err != nil {
			return cursor, false, err
		}
		return cursor, false, tx.Commit(ctx)
	}

	if err := m.setStatus(ctx, tx, run.Id, newStatus, exit, cursor.Debounce); err != nil {
		return cursor, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return cursor, false, err
	}
	return cursor, true, nil
}

func (m *runPG) Retry(ctx context.Context, runId string) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var current string
	if err := tx.QueryRow(
		ctx,
		`select "status" from "run" where "run_id" = $1 for no key update`,
		runId,
	).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kpgerr.Missing{Table: "run", Identity: runId}
		}
		return err
	}

	currentStatus, err := domain.AsRunStatus(current)
	if err != nil {
		return err
	}
	if !currentStatus.CanTransitTo(domain.Waiting) {
		return domain.NewErrInvalidRunStateChanging(currentStatus, domain.Waiting)
	}

	if _, err := tx.Exec(
		ctx,
		`
		update "run"
		set
			"status" = $1,
			"worker_name" = '',
			"exit_code" = null,
			"exit_message" = null,
			"updated_at" = now(),
			"lifecycle_suspend_until" = now()
		where "run_id" = $2
		`,
		string(domain.Waiting), runId,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
