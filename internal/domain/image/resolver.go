// Package image maps raw image references from search results to URLs served by the image proxy.
package image

import (
	"net/url"
	"strings"
)

// Defaults matching the deployed image proxy.
const (
	DefaultProxyBase     = "http://127.0.0.1:8333"
	DefaultStoragePrefix = "https://storage.yandexcloud.net/"
	DefaultBucket        = "remote-sensing-storage"
	DefaultDatasetRoot   = "app/datasets/"
)

// Config holds the URL conventions of the two image backends.
type Config struct {
	ProxyBase     string
	StoragePrefix string
	Bucket        string
	DatasetRoot   string
}

// Resolver rewrites image references into proxy URLs. It is stateless and safe for concurrent use.
type Resolver struct {
	proxyBase     string
	storagePrefix string
	bucket        string
	datasetRoot   string
}

// NewResolver creates a Resolver, filling blank settings with defaults.
func NewResolver(cfg Config) *Resolver {
	r := &Resolver{
		proxyBase:     strings.TrimRight(cfg.ProxyBase, "/"),
		storagePrefix: cfg.StoragePrefix,
		bucket:        cfg.Bucket,
		datasetRoot:   strings.Trim(cfg.DatasetRoot, "/"),
	}
	if cfg.ProxyBase == "" {
		r.proxyBase = DefaultProxyBase
	}
	if r.storagePrefix == "" {
		r.storagePrefix = DefaultStoragePrefix
	}
	if r.bucket == "" {
		r.bucket = DefaultBucket
	}
	if r.datasetRoot == "" {
		r.datasetRoot = strings.Trim(DefaultDatasetRoot, "/")
	}
	return r
}

// Resolve returns the proxy URL for ref.
// Absolute http(s) references go through the object storage passthrough,
// everything else is treated as a path inside the local dataset.
func (r *Resolver) Resolve(ref string) string {
	if isRemote(ref) {
		return r.remote(ref)
	}
	return r.local(ref)
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func (r *Resolver) remote(ref string) string {
	key, ok := strings.CutPrefix(ref, r.storagePrefix)
	if !ok {
		// Different host: the object key is the URL path.
		if u, err := url.Parse(ref); err == nil {
			key = strings.TrimLeft(u.Path, "/")
		}
	}
	key = strings.TrimPrefix(key, r.bucket+"/")
	return r.proxyBase + "/get_image?bucket=" + encodeComponent(r.bucket) + "&key=" + encodeComponent(key)
}

func (r *Resolver) local(ref string) string {
	rel := strings.TrimLeft(ref, "/")
	rel = strings.TrimPrefix(rel, r.datasetRoot+"/")
	return r.proxyBase + "/local_image/" + encodePath(rel)
}

// encodeComponent escapes a query component, spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// encodePath escapes each segment of a slash-separated path, keeping the separators.
func encodePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
