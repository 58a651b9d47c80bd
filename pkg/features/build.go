package features

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/snpflow/snpflow/pkg/domain"
	"github.com/snpflow/snpflow/pkg/domain/naming"
)

// Build merges the per-chromosome CSVs of cohort, found under the
// storage root, into the cohort's feature table file.
//
// The table is written to a temporary file first and renamed into
// place, so readers never see a half-written table.
func Build(root string, cohort domain.Cohort) (Summary, error) {
	samples, err := readManifestFile(
		filepath.Join(root, naming.SampleManifest(cohort.VCFRoot)),
	)
	if err != nil {
		return Summary{}, err
	}
	if len(samples) != cohort.SampleCount {
		return Summary{}, fmt.Errorf(
			"%w: manifest lists %d samples, cohort %s declares %d",
			ErrSampleMismatch, len(samples), cohort.Id, cohort.SampleCount,
		)
	}

	shards := make([]*Shard, 0, len(cohort.Chromosomes))
	for _, chromosome := range cohort.Chromosomes {
		shard, err := readShardFile(
			filepath.Join(root, naming.ChromosomeCSV(cohort.Id, chromosome)),
			chromosome,
		)
		if err != nil {
			return Summary{}, err
		}
		shards = append(shards, shard)
	}

	dest := filepath.Join(root, naming.FeatureTableCSV(cohort.Id))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Summary{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".features-*.csv")
	if err != nil {
		return Summary{}, err
	}
	defer os.Remove(tmp.Name())

	summary, err := Merge(tmp, samples, shards)
	if err != nil {
		tmp.Close()
		return Summary{}, err
	}
	if err := tmp.Close(); err != nil {
		return Summary{}, err
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func readManifestFile(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadManifest(f)
}

func readShardFile(name string, chromosome string) (*Shard, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadShard(f, chromosome)
}
