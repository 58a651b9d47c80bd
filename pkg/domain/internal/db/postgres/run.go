package postgres

import (
	"context"

	"github.com/snpflow/snpflow/pkg/conn/db/postgres/pool"
	"github.com/snpflow/snpflow/pkg/domain"
	"github.com/snpflow/snpflow/pkg/domain/naming"
)

// get runs with their cohort bodies, by run ids.
//
// Usable inside and outside transactions.
func GetRun(ctx context.Context, q pool.Queryer, runId []string) (map[string]domain.Run, error) {
	if len(runId) == 0 {
		return map[string]domain.Run{}, nil
	}

	rows, err := q.Query(
		ctx,
		`
		select
			"r"."run_id", "r"."cohort_id", "r"."chromosome", "r"."status",
			"r"."worker_name", "r"."exit_code", "r"."exit_message", "r"."updated_at",
			"c"."name", "c"."vcf_root", "c"."sample_count",
			"c"."biallelic_only", "c"."min_maf", "c"."max_missing_rate", "c"."created_at"
		from "run" as "r"
		inner join "cohort" as "c" using ("cohort_id")
		where "r"."run_id" = any($1::varchar[])
		`,
		runId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := map[string]domain.Run{}
	for rows.Next() {
		r := domain.Run{}
		var status string
		var exitCode *int16
		var exitMessage *string
		if err := rows.Scan(
			&r.Id, &r.CohortId, &r.Chromosome, &status,
			&r.WorkerName, &exitCode, &exitMessage, &r.UpdatedAt,
			&r.Cohort.Name, &r.Cohort.VCFRoot, &r.Cohort.SampleCount,
			&r.Cohort.Filter.BiallelicOnly, &r.Cohort.Filter.MinMAF,
			&r.Cohort.Filter.MaxMissingRate, &r.Cohort.CreatedAt,
		); err != nil {
			return nil, err
		}

		s, err := domain.AsRunStatus(status)
		if err != nil {
			return nil, err
		}
		r.Status = s
		r.Cohort.Id = r.CohortId
		if exitCode != nil {
			message := ""
			if exitMessage != nil {
				message = *exitMessage
			}
			r.Exit = &domain.RunExit{Code: uint8(*exitCode), Message: message}
		}
		r.OutputPath = naming.ChromosomeCSV(r.CohortId, r.Chromosome)

		ret[r.Id] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ret, nil
}
