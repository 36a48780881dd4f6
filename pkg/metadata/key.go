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

// Package metadata turns configured (key, template, domain) triples into
// renderers and plans minimal node metadata patches from them.
package metadata

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

// Key is a validated label or annotation key: a name with an optional
// DNS-subdomain prefix, e.g. "provider-id" or "topology.example.com/region".
type Key struct {
	raw    string
	prefix string
	name   string
}

// ParseKey validates s as a Kubernetes qualified name.
func ParseKey(s string) (Key, error) {
	if errs := validation.IsQualifiedName(s); len(errs) > 0 {
		return Key{}, fmt.Errorf("invalid metadata key %q: %s", s, strings.Join(errs, ", "))
	}
	k := Key{raw: s, name: s}
	if prefix, name, found := strings.Cut(s, "/"); found {
		k.prefix, k.name = prefix, name
	}
	return k, nil
}

// Prefix returns the optional DNS-subdomain prefix, "" when absent.
func (k Key) Prefix() string {
	return k.prefix
}

// Name returns the key name without its prefix.
func (k Key) Name() string {
	return k.name
}

func (k Key) String() string {
	return k.raw
}
