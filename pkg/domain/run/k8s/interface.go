package k8s

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	bconf "github.com/snpflow/snpflow/pkg/configs/backend"
	"github.com/snpflow/snpflow/pkg/conn/k8s/cluster"
	"github.com/snpflow/snpflow/pkg/domain"
	"github.com/snpflow/snpflow/pkg/domain/naming"
	"github.com/snpflow/snpflow/pkg/domain/run/k8s/worker"
)

type Interface interface {
	// Initialize prepares a run to be executed: the VCF shard it reads
	// should exist, and the directory for its output CSV is created.
	Initialize(ctx context.Context, r domain.Run) error

	SpawnWorker(ctx context.Context, r domain.Run) (worker.Worker, error)
	FindWorker(ctx context.Context, r domain.RunBody) (worker.Worker, error)

	// FindAllWorkers lists every worker Job in the cluster, including
	// those whose runs are gone already.
	FindAllWorkers(ctx context.Context) ([]worker.Worker, error)
}

type impl struct {
	cluster cluster.Cluster
	conf    *bconf.ClusterConfig
}

func New(conf *bconf.ClusterConfig, cluster cluster.Cluster) Interface {
	return &impl{
		cluster: cluster,
		conf:    conf,
	}
}

func (i *impl) Initialize(ctx context.Context, r domain.Run) error {
	root := i.conf.Storage().Root()

	shard := filepath.Join(root, naming.VCFShard(r.Cohort.VCFRoot, r.Chromosome))
	if _, err := os.Stat(shard); err != nil {
		return fmt.Errorf("vcf shard for run %s: %w", r.Id, err)
	}

	outDir := filepath.Join(root, naming.ChromosomeCSVDir(r.CohortId))
	return os.MkdirAll(outDir, 0o755)
}

func (i *impl) SpawnWorker(ctx context.Context, r domain.Run) (worker.Worker, error) {
	ex := worker.New(&r, i.conf)
	return worker.Spawn(ctx, i.cluster, ex)
}

func (i *impl) FindWorker(ctx context.Context, rb domain.RunBody) (worker.Worker, error) {
	return worker.Find(ctx, i.cluster, rb)
}

func (i *impl) FindAllWorkers(ctx context.Context) ([]worker.Worker, error) {
	return worker.FindAll(ctx, i.cluster)
}
