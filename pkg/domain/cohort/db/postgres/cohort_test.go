package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/snpflow/snpflow/pkg/conn/db/postgres/testenv"
	"github.com/snpflow/snpflow/pkg/domain"
	kpgcohort "github.com/snpflow/snpflow/pkg/domain/cohort/db/postgres"
	"github.com/snpflow/snpflow/pkg/utils/cmp"
)

func TestCohort_Register(t *testing.T) {
	ctx := context.Background()
	poolBroaker := testenv.NewPoolBroaker(ctx, t)

	cohort := domain.Cohort{
		CohortBody: domain.CohortBody{
			Name:        "1kg-demo",
			VCFRoot:     "datasets/1kg-demo",
			SampleCount: 2,
			Filter: domain.FilterSpec{
				BiallelicOnly:  true,
				MinMAF:         0.05,
				MaxMissingRate: 0.1,
			},
		},
		Chromosomes: []string{"chr1", "chr2", "chrX"},
	}

	t.Run("it creates one waiting run per chromosome and an absent feature table", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		testee := kpgcohort.New(pool)

		cohortId, runIds, err := testee.Register(ctx, cohort)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		if len(runIds) != len(cohort.Chromosomes) {
			t.Fatalf("unexpected run ids: %+v", runIds)
		}

		registered, err := testee.Get(ctx, []string{cohortId})
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		got, ok := registered[cohortId]
		if !ok {
			t.Fatal("registered cohort is not found")
		}
		if got.Name != cohort.Name || got.VCFRoot != cohort.VCFRoot ||
			got.SampleCount != cohort.SampleCount || got.Filter != cohort.Filter {
			t.Errorf("unexpected cohort: %+v", got)
		}
		if !cmp.SliceEq(got.Chromosomes, cohort.Chromosomes) {
			t.Errorf("chromosome order is not kept: %+v", got.Chromosomes)
		}

		rows, err := pool.Query(
			ctx,
			`
			select "chromosome", "status" from "run"
			where "cohort_id" = $1
			order by "chromosome"
			`,
			cohortId,
		)
		if err != nil {
			t.Fatal(err)
		}
		defer rows.Close()

		chromosomes := []string{}
		for rows.Next() {
			var chromosome, status string
			if err := rows.Scan(&chromosome, &status); err != nil {
				t.Fatal(err)
			}
			if status != string(domain.Waiting) {
				t.Errorf("run for %s is not waiting: %s", chromosome, status)
			}
			chromosomes = append(chromosomes, chromosome)
		}
		if !cmp.SliceContentEq(chromosomes, cohort.Chromosomes) {
			t.Errorf("unexpected runs: %+v", chromosomes)
		}

		var featureStatus string
		if err := pool.QueryRow(
			ctx,
			`select "status" from "feature_table" where "cohort_id" = $1`,
			cohortId,
		).Scan(&featureStatus); err != nil {
			t.Fatal(err)
		}
		if featureStatus != string(domain.FeatureAbsent) {
			t.Errorf("unexpected feature table status: %s", featureStatus)
		}
	})

	t.Run("it rejects a duplicated name, leaving no partial records", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		testee := kpgcohort.New(pool)

		if _, _, err := testee.Register(ctx, cohort); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		_, _, err := testee.Register(ctx, cohort)
		if !errors.Is(err, domain.ErrCohortNameConflict) {
			t.Fatalf("unexpected error: %+v", err)
		}

		var cohorts, runs int
		if err := pool.QueryRow(ctx, `select count(*) from "cohort"`).Scan(&cohorts); err != nil {
			t.Fatal(err)
		}
		if err := pool.QueryRow(ctx, `select count(*) from "run"`).Scan(&runs); err != nil {
			t.Fatal(err)
		}
		if cohorts != 1 || runs != len(cohort.Chromosomes) {
			t.Errorf("records are left by the failed registration: (%d cohorts, %d runs)", cohorts, runs)
		}
	})
}

func TestCohort_Delete(t *testing.T) {
	ctx := context.Background()
	poolBroaker := testenv.NewPoolBroaker(ctx, t)

	cohort := domain.Cohort{
		CohortBody: domain.CohortBody{
			Name:        "1kg-demo",
			VCFRoot:     "datasets/1kg-demo",
			SampleCount: 2,
			Filter:      domain.FilterSpec{MaxMissingRate: 1},
		},
		Chromosomes: []string{"chr1", "chr2"},
	}

	t.Run("it refuses while runs are in flight", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		testee := kpgcohort.New(pool)

		cohortId, _, err := testee.Register(ctx, cohort)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		if err := testee.Delete(ctx, cohortId); !errors.Is(err, domain.ErrCohortHasLiveRuns) {
			t.Fatalf("unexpected error: %+v", err)
		}
	})

	t.Run("it removes the cohort and everything hanging off it", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		testee := kpgcohort.New(pool)

		cohortId, _, err := testee.Register(ctx, cohort)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		if _, err := pool.Exec(
			ctx,
			`update "run" set "status" = $1 where "cohort_id" = $2`,
			string(domain.Done), cohortId,
		); err != nil {
			t.Fatal(err)
		}

		if err := testee.Delete(ctx, cohortId); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		for _, table := range []string{"cohort", "cohort_chromosome", "run", "feature_table"} {
			var count int
			if err := pool.QueryRow(
				ctx, `select count(*) from "`+table+`"`,
			).Scan(&count); err != nil {
				t.Fatal(err)
			}
			if count != 0 {
				t.Errorf("%s rows are left: %d", table, count)
			}
		}
	})
}
