/*
Copyright 2024 The Node Provider Labeler Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cache

import (
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/patrickmn/go-cache"
)

const (
	// RenderDebounceTTL is how long a node's last settled render outcome is
	// remembered. Watch events often arrive in quick bursts for the same
	// node (status heartbeats, our own patch echo); within this window an
	// unchanged node skips re-planning entirely.
	RenderDebounceTTL = 30 * time.Second
	// DefaultCleanupInterval triggers cache cleanup (lazy eviction) at this interval.
	DefaultCleanupInterval = 1 * time.Minute
)

// Renders tracks, per node, a hash of the inputs of the last reconcile cycle
// that ended with nothing to change. It only ever suppresses redundant work:
// a changed node carries a changed resource version, which misses the cache.
type Renders struct {
	cache *cache.Cache
}

func NewRenders() *Renders {
	return &Renders{
		cache: cache.New(RenderDebounceTTL, DefaultCleanupInterval),
	}
}

type renderFingerprint struct {
	ResourceVersion string
	ProviderID      string
}

// Settled reports whether the node already went through a cycle with these
// exact inputs that required no patch.
func (r *Renders) Settled(nodeName, resourceVersion, providerID string) bool {
	got, ok := r.cache.Get(nodeName)
	if !ok {
		return false
	}
	return got.(uint64) == fingerprint(resourceVersion, providerID)
}

// MarkSettled records that the cycle for these inputs needed no patch.
func (r *Renders) MarkSettled(nodeName, resourceVersion, providerID string) {
	r.cache.SetDefault(nodeName, fingerprint(resourceVersion, providerID))
}

// Forget drops the node's entry, forcing the next cycle to re-plan.
func (r *Renders) Forget(nodeName string) {
	r.cache.Delete(nodeName)
}

func fingerprint(resourceVersion, providerID string) uint64 {
	// hashstructure does not fail on a plain struct of strings
	h, _ := hashstructure.Hash(renderFingerprint{
		ResourceVersion: resourceVersion,
		ProviderID:      providerID,
	}, hashstructure.FormatV2, nil)
	return h
}
