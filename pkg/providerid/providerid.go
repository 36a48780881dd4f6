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

package providerid

import "strings"

// ProviderID is the parsed form of a node's .spec.providerID, which follows
// the convention "<ProviderName>://<ProviderSpecificNodeID>". The node id
// part is kept as the ordered sequence of its "/"-separated segments.
type ProviderID struct {
	raw      string
	provider string
	segments []string
}

// Parse splits a raw provider id string into its provider name and path
// segments. It returns nil when the raw string is empty, has no "://"
// separator, or names no provider. Freshly registered nodes routinely have
// no provider id yet, so an absent id is not an error; callers skip metadata
// computation for the cycle and try again later.
func Parse(raw string) *ProviderID {
	if raw == "" {
		return nil
	}
	provider, path, found := strings.Cut(raw, "://")
	if !found || provider == "" {
		return nil
	}
	var segments []string
	if path != "" {
		segments = strings.Split(path, "/")
	}
	return &ProviderID{
		raw:      raw,
		provider: provider,
		segments: segments,
	}
}

// Provider returns the provider name, e.g. "aws" for
// "aws://us-west-2/i-0abcdef1234567890".
func (p *ProviderID) Provider() string {
	return p.provider
}

// SegmentCount returns the number of node id segments.
func (p *ProviderID) SegmentCount() int {
	return len(p.segments)
}

// Nth returns the zero-based i-th node id segment. The second return value
// reports whether the segment exists.
func (p *ProviderID) Nth(i int) (string, bool) {
	if i < 0 || i >= len(p.segments) {
		return "", false
	}
	return p.segments[i], true
}

// First returns the first node id segment.
func (p *ProviderID) First() (string, bool) {
	return p.Nth(0)
}

// Last returns the last node id segment.
func (p *ProviderID) Last() (string, bool) {
	return p.Nth(len(p.segments) - 1)
}

// Join concatenates all node id segments with the given separator, in order.
func (p *ProviderID) Join(sep string) string {
	return strings.Join(p.segments, sep)
}

func (p *ProviderID) String() string {
	return p.raw
}
