package backend

import (
	"fmt"
	"time"

	"github.com/google/go-containerregistry/pkg/name"
	kubecore "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
//
// All types named `pkg/configs/backend.XxxMarshall` are `Marshalled[*Xxx]` .
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

type BackendConfigMarshall struct {
	Port    int32                  `yaml:"port"`
	Cluster *ClusterConfigMarshall `yaml:"cluster"`
}

var _ Marshalled[*BackendConfig] = &BackendConfigMarshall{}

func (b *BackendConfigMarshall) trySeal(path string) *BackendConfig {
	return &BackendConfig{
		port:    b.Port,
		cluster: nonnil(b.Cluster, path+".cluster").trySeal(path + ".cluster"),
	}
}

// Configuration of the cluster snpflow runs in.
//
// This type is marshalling value and mutable.
// Consider to use immutable version, `ClusterConfig`.
// You can get `ClusterConfig` instance with `ClusterConfigMarshall.TrySeal()`
type ClusterConfigMarshall struct {
	Namespace string                   `yaml:"namespace"`
	Domain    string                   `yaml:"domain,omitempty"`
	Database  string                   `yaml:"database"`
	Storage   *StorageConfigMarshall   `yaml:"storage"`
	Worker    *WorkerConfigMarshall    `yaml:"worker"`
	Clusterer *ClustererConfigMarshall `yaml:"clusterer"`
	Token     *TokenConfigMarshall     `yaml:"token"`
}

// verify configuration value and create "readonly" version of this.
//
// IT WILL PANIC if any misconfiguration is found.
func (km *ClusterConfigMarshall) TrySeal() *ClusterConfig {
	return km.trySeal("(root)")
}

func (km *ClusterConfigMarshall) trySeal(path string) *ClusterConfig {
	domain := km.Domain
	if domain == "" {
		domain = "cluster.local"
	}
	return &ClusterConfig{
		namespace: required(km.Namespace, path+".namespace"),
		domain:    required(domain, path+".domain"),
		database:  required(km.Database, path+".database"),
		storage:   nonnil(km.Storage, path+".storage").trySeal(path + ".storage"),
		worker:    nonnil(km.Worker, path+".worker").trySeal(path + ".worker"),
		clusterer: nonnil(km.Clusterer, path+".clusterer").trySeal(path + ".clusterer"),
		token:     nonnil(km.Token, path+".token").trySeal(path + ".token"),
	}
}

type StorageConfigMarshall struct {
	Root    string `yaml:"root"`
	PVCName string `yaml:"pvcName"`
}

func (sm *StorageConfigMarshall) trySeal(path string) *StorageConfig {
	return &StorageConfig{
		root:    required(sm.Root, path+".root"),
		pvcName: required(sm.PVCName, path+".pvcName"),
	}
}

type WorkerConfigMarshall struct {
	Priority  string            `yaml:"priority"`
	Image     string            `yaml:"image"`
	Mount     string            `yaml:"mount"`
	Resources map[string]string `yaml:"resources,omitempty"`
}

func (wc *WorkerConfigMarshall) trySeal(path string) *WorkerConfig {
	image := required(wc.Image, path+".image")
	if _, err := name.ParseReference(image); err != nil {
		panic(fmt.Errorf("%s.image can not be parsed: %w", path, err))
	}

	mount := wc.Mount
	if mount == "" {
		mount = "/snpflow/storage"
	}

	resources := kubecore.ResourceList{}
	for typ, quantity := range wc.Resources {
		q, err := resource.ParseQuantity(quantity)
		if err != nil {
			panic(fmt.Errorf("%s.resources.%s can not be parsed: %w", path, typ, err))
		}
		resources[kubecore.ResourceName(typ)] = q
	}

	return &WorkerConfig{
		priority:  required(wc.Priority, path+".priority"),
		image:     image,
		mount:     mount,
		resources: resources,
	}
}

type ClustererConfigMarshall struct {
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"apiKey,omitempty"`
	FeatureBaseURL string `yaml:"featureBaseUrl"`
	Timeout        string `yaml:"timeout,omitempty"`
}

func (cm *ClustererConfigMarshall) trySeal(path string) *ClustererConfig {
	timeout := 30 * time.Second
	if cm.Timeout != "" {
		parsed, err := time.ParseDuration(cm.Timeout)
		if err != nil {
			panic(fmt.Errorf("%s.timeout can not be parsed: %w", path, err))
		}
		timeout = parsed
	}

	return &ClustererConfig{
		endpoint:       required(cm.Endpoint, path+".endpoint"),
		apiKey:         cm.APIKey,
		featureBaseURL: required(cm.FeatureBaseURL, path+".featureBaseUrl"),
		timeout:        timeout,
	}
}

type TokenConfigMarshall struct {
	Key string `yaml:"key"`
	TTL string `yaml:"ttl,omitempty"`
}

func (tm *TokenConfigMarshall) trySeal(path string) *TokenConfig {
	ttl := 1 * time.Hour
	if tm.TTL != "" {
		parsed, err := time.ParseDuration(tm.TTL)
		if err != nil {
			panic(fmt.Errorf("%s.ttl can not be parsed: %w", path, err))
		}
		ttl = parsed
	}

	return &TokenConfig{
		key: required(tm.Key, path+".key"),
		ttl: ttl,
	}
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}
