package snpflow

import (
	"context"

	bconf "github.com/snpflow/snpflow/pkg/configs/backend"
	kpool "github.com/snpflow/snpflow/pkg/conn/db/postgres/pool"
	"github.com/snpflow/snpflow/pkg/conn/db/postgres/schema"
	"github.com/snpflow/snpflow/pkg/conn/k8s/cluster"
	"github.com/snpflow/snpflow/pkg/domain/clusterjob"
	clusterjobpg "github.com/snpflow/snpflow/pkg/domain/clusterjob/db/postgres"
	"github.com/snpflow/snpflow/pkg/domain/cohort"
	cohortpg "github.com/snpflow/snpflow/pkg/domain/cohort/db/postgres"
	"github.com/snpflow/snpflow/pkg/domain/feature"
	featurepg "github.com/snpflow/snpflow/pkg/domain/feature/db/postgres"
	"github.com/snpflow/snpflow/pkg/domain/run"
	rundbpg "github.com/snpflow/snpflow/pkg/domain/run/db/postgres"
	runk8s "github.com/snpflow/snpflow/pkg/domain/run/k8s"
	"github.com/snpflow/snpflow/pkg/utils/kubeutil"
	"k8s.io/client-go/kubernetes"
)

// Snpflow bundles the domain interfaces of one deployment.
type Snpflow interface {
	Config() *bconf.ClusterConfig

	Cohort() cohort.Interface
	Run() run.Interface
	Feature() feature.Interface
	ClusterJob() clusterjob.Interface
}

type snpflow struct {
	config *bconf.ClusterConfig

	cohort     cohort.Interface
	run        run.Interface
	feature    feature.Interface
	clusterJob clusterjob.Interface
}

// Default connects to the database and the kubernetes cluster found in
// the environment.
func Default(ctx context.Context, config *bconf.ClusterConfig) (Snpflow, error) {
	clientset := kubeutil.ConnectToK8s()
	return New(ctx, config, clientset)
}

func New(
	ctx context.Context,
	config *bconf.ClusterConfig,
	clientset *kubernetes.Clientset,
) (Snpflow, error) {
	pool, err := kpool.New(ctx, config.Database())
	if err != nil {
		return nil, err
	}
	if err := schema.Apply(ctx, pool); err != nil {
		return nil, err
	}

	k8sclient := cluster.WrapK8sClient(clientset)
	clu := cluster.AttachCluster(k8sclient, config.Namespace(), config.Domain())

	return &snpflow{
		config: config,

		cohort:     cohort.New(cohortpg.New(pool)),
		run:        run.New(rundbpg.New(pool), runk8s.New(config, clu)),
		feature:    feature.New(featurepg.New(pool)),
		clusterJob: clusterjob.New(clusterjobpg.New(pool)),
	}, nil
}

func (k *snpflow) Config() *bconf.ClusterConfig {
	return k.config
}

func (k *snpflow) Cohort() cohort.Interface {
	return k.cohort
}

func (k *snpflow) Run() run.Interface {
	return k.run
}

func (k *snpflow) Feature() feature.Interface {
	return k.feature
}

func (k *snpflow) ClusterJob() clusterjob.Interface {
	return k.clusterJob
}
