package worker

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	bconf "github.com/snpflow/snpflow/pkg/configs/backend"
	"github.com/snpflow/snpflow/pkg/conn/k8s/cluster"
	types "github.com/snpflow/snpflow/pkg/domain"
	"github.com/snpflow/snpflow/pkg/domain/naming"
	"github.com/snpflow/snpflow/pkg/utils/retry"
	kubebatch "k8s.io/api/batch/v1"
	kubecore "k8s.io/api/core/v1"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type Worker interface {
	// RunId returns the run ID of the worker
	RunId() string

	// JobStatus returns the status of the job
	JobStatus(ctx context.Context) cluster.JobStatus

	// ExitCode returns the exit of the filter container, if it has stopped.
	ExitCode() (types.RunExit, bool)

	// Log returns the log of the worker's filter container.
	//
	// # Returns
	//
	// - io.ReadCloser : the log stream of the filter container.
	//
	// - error : error if any.
	Log(ctx context.Context) (io.ReadCloser, error)

	// Close closes the worker
	Close() error
}

type worker struct {
	runId string
	job   cluster.Job
}

func (w *worker) RunId() string {
	return w.runId
}

func (w *worker) JobStatus(ctx context.Context) cluster.JobStatus {
	return w.job.Status()
}

func (w *worker) ExitCode() (types.RunExit, bool) {
	code, reason, ok := w.job.ExitCode("filter")
	if !ok {
		return types.RunExit{}, false
	}
	return types.RunExit{Code: code, Message: reason}, true
}

func (w *worker) Log(ctx context.Context) (io.ReadCloser, error) {
	return w.job.Log(ctx, "filter")
}

func (w *worker) Close() error {
	return w.job.Close()
}

const runIdLabel = "snpflow/run-id"

// labels set on the worker Job of the run.
func Labels(runId string) map[string]string {
	return map[string]string{
		"app.kubernetes.io/name":       "snpflow-worker",
		"app.kubernetes.io/managed-by": "snpflow",
		runIdLabel:                     runId,
	}
}

// selector matching every worker Job, whichever run it belongs to.
func Selector() cluster.LabelSelector {
	return cluster.LabelSelector{
		"app.kubernetes.io/name":       "snpflow-worker",
		"app.kubernetes.io/managed-by": "snpflow",
	}
}

// Executable is a job spec for a run, before being applied to a cluster.
type Executable struct {
	runId   string
	jobSpec *kubebatch.Job
}

// build the k8s Job running the variant filter for run r.
//
// The job reads the run's VCF shard and writes the chromosome CSV,
// both on the shared storage mounted from the configured PVC.
func New(r *types.Run, conf *bconf.ClusterConfig) *Executable {
	mount := conf.Worker().Mount()
	in := path.Join(mount, naming.VCFShard(r.Cohort.VCFRoot, r.Chromosome))
	out := path.Join(mount, naming.ChromosomeCSV(r.CohortId, r.Chromosome))
	samples := path.Join(mount, naming.SampleManifest(r.Cohort.VCFRoot))

	args := []string{
		"--vcf", in,
		"--samples", samples,
		"--out", out,
		"--min-maf", fmt.Sprintf("%g", r.Cohort.Filter.MinMAF),
		"--max-missing-rate", fmt.Sprintf("%g", r.Cohort.Filter.MaxMissingRate),
	}
	if r.Cohort.Filter.BiallelicOnly {
		args = append(args, "--biallelic-only")
	}

	labels := Labels(r.Id)

	var backoffLimit int32 = 0
	var parallelism int32 = 1
	var completions int32 = 1

	spec := &kubebatch.Job{
		ObjectMeta: kubeapimeta.ObjectMeta{
			Name:      naming.Worker(r.Id),
			Namespace: conf.Namespace(),
			Labels:    labels,
		},
		Spec: kubebatch.JobSpec{
			BackoffLimit: &backoffLimit,
			Parallelism:  &parallelism,
			Completions:  &completions,
			Template: kubecore.PodTemplateSpec{
				ObjectMeta: kubeapimeta.ObjectMeta{Labels: labels},
				Spec: kubecore.PodSpec{
					RestartPolicy:     kubecore.RestartPolicyNever,
					PriorityClassName: conf.Worker().Priority(),
					Containers: []kubecore.Container{
						{
							Name:  "filter",
							Image: conf.Worker().Image(),
							Args:  args,
							Resources: kubecore.ResourceRequirements{
								Limits: conf.Worker().Resources(),
							},
							VolumeMounts: []kubecore.VolumeMount{
								{Name: "storage", MountPath: mount},
							},
						},
					},
					Volumes: []kubecore.Volume{
						{
							Name: "storage",
							VolumeSource: kubecore.VolumeSource{
								PersistentVolumeClaim: &kubecore.PersistentVolumeClaimVolumeSource{
									ClaimName: conf.Storage().PVCName(),
								},
							},
						},
					},
				},
			},
		},
	}

	return &Executable{runId: r.Id, jobSpec: spec}
}

func (ex *Executable) Id() string {
	return ex.runId
}

func (ex *Executable) Build() *kubebatch.Job {
	return ex.jobSpec
}

// spawn new Worker and start to Run
//
// # params:
//
// - ctx
//
// - cluster : where the Worker is spawned into
//
// - ex : the job spec to be started.
// The VCF shard it reads should have been placed already.
func Spawn(
	ctx context.Context,
	cluster cluster.Cluster,
	ex *Executable,
) (Worker, error) {
	prom := <-cluster.NewJob(
		ctx,
		retry.StaticBackoff(3*time.Second),
		ex.Build(),
	)

	if prom.Err != nil {
		return nil, prom.Err
	}

	return &worker{
		runId: ex.Id(),
		job:   prom.Value,
	}, nil
}

// Find the Worker of runBody, by its recorded worker name.
//
// When no worker name is recorded yet, the name derived from the run id
// is used.
func Find(
	ctx context.Context,
	cluster cluster.Cluster,
	runBody types.RunBody,
) (Worker, error) {
	name := runBody.WorkerName
	if name == "" {
		name = naming.Worker(runBody.Id)
	}

	prom := <-cluster.GetJob(
		ctx,
		retry.StaticBackoff(3*time.Second),
		name,
	)

	if prom.Err != nil {
		return nil, prom.Err
	}

	return &worker{
		runId: runBody.Id,
		job:   prom.Value,
	}, nil
}

// FindAll lists every worker Job in the cluster, whether or not its run
// still exists. Jobs without a run id label are skipped.
func FindAll(
	ctx context.Context,
	c cluster.Cluster,
) ([]Worker, error) {
	jobs, err := c.FindJobs(ctx, Selector())
	if err != nil {
		return nil, err
	}

	workers := make([]Worker, 0, len(jobs))
	for _, j := range jobs {
		runId, ok := j.Labels()[runIdLabel]
		if !ok || runId == "" {
			continue
		}
		workers = append(workers, &worker{runId: runId, job: j})
	}
	return workers, nil
}
