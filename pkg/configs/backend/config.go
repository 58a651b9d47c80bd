package backend

import (
	"time"

	kubecore "k8s.io/api/core/v1"
)

type BackendConfig struct {
	port    int32
	cluster *ClusterConfig
}

func (c *BackendConfig) Port() int32 {
	return c.port
}

func (c *BackendConfig) Cluster() *ClusterConfig {
	return c.cluster
}

// Configuration for the cluster snpflow runs in.
//
// to get `ClusterConfig` instance, use `ClusterConfigMarshall.TrySeal()` .
type ClusterConfig struct {
	namespace string
	domain    string
	database  string
	storage   *StorageConfig
	worker    *WorkerConfig
	clusterer *ClustererConfig
	token     *TokenConfig
}

// k8s namespace where snpflow is deploied.
func (k *ClusterConfig) Namespace() string {
	return k.namespace
}

// k8s domain where snpflow is deploied. default = "cluster.local"
func (k *ClusterConfig) Domain() string {
	return k.domain
}

// Connection string for database.
func (k *ClusterConfig) Database() string {
	return k.database
}

// Configuration for shared storage
func (k *ClusterConfig) Storage() *StorageConfig {
	return k.storage
}

// Configuration for filter workers
func (k *ClusterConfig) Worker() *WorkerConfig {
	return k.worker
}

// Configuration for the hosted clustering service
func (k *ClusterConfig) Clusterer() *ClustererConfig {
	return k.clusterer
}

func (k *ClusterConfig) Token() *TokenConfig {
	return k.token
}

// Settings for the shared storage holding VCF shards and feature tables.
type StorageConfig struct {
	root    string
	pvcName string
}

// mount point of the shared storage, as seen by snpflowd and loops.
func (s *StorageConfig) Root() string {
	return s.root
}

// name of the PVC mounted into filter workers.
func (s *StorageConfig) PVCName() string {
	return s.pvcName
}

type WorkerConfig struct {
	priority  string
	image     string
	mount     string
	resources kubecore.ResourceList
}

func (wc *WorkerConfig) Priority() string {
	return wc.priority
}

// Which image should be used as the variant filter.
func (wc *WorkerConfig) Image() string {
	return wc.image
}

// mount point of the shared storage inside filter workers.
func (wc *WorkerConfig) Mount() string {
	return wc.mount
}

// resource limits for the filter container.
func (wc *WorkerConfig) Resources() kubecore.ResourceList {
	return wc.resources
}

type ClustererConfig struct {
	endpoint       string
	apiKey         string
	featureBaseURL string
	timeout        time.Duration
}

// base URL of the clustering service API.
func (cc *ClustererConfig) Endpoint() string {
	return cc.endpoint
}

func (cc *ClustererConfig) APIKey() string {
	return cc.apiKey
}

// base URL of the snpflow API, as reachable from the clustering service.
//
// Feature table download URLs passed to the service are built on this.
func (cc *ClustererConfig) FeatureBaseURL() string {
	return cc.featureBaseURL
}

// timeout per request to the clustering service. default = 30s
func (cc *ClustererConfig) Timeout() time.Duration {
	return cc.timeout
}

// Settings for feature table download tokens.
type TokenConfig struct {
	key string
	ttl time.Duration
}

func (tc *TokenConfig) Key() string {
	return tc.key
}

func (tc *TokenConfig) TTL() time.Duration {
	return tc.ttl
}
