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

package metadata

import (
	"github.com/jossware/node-provider-labeler/pkg/providerid"
	"github.com/jossware/node-provider-labeler/pkg/template"
)

// Patch is the minimal set of label and annotation changes for one node:
// only keys whose desired value differs from the current one appear. Keys
// whose template could not be rendered this cycle are listed in Skips and
// left untouched on the node, never removed.
type Patch struct {
	Labels      map[string]string
	Annotations map[string]string
	Skips       []Skip
}

// Skip records a per-key render failure for the cycle.
type Skip struct {
	Key    Key
	Domain template.Domain
	Err    error
}

// Empty reports whether the patch would change nothing.
func (p *Patch) Empty() bool {
	return len(p.Labels) == 0 && len(p.Annotations) == 0
}

// Plan renders every configured key against the provider id and diffs the
// results with the node's current labels and annotations. Renderers are
// evaluated in configuration order, so the result is deterministic; planning
// against a node that already carries the desired values yields an empty
// patch.
func Plan(renderers []*Renderer, pid *providerid.ProviderID, labels, annotations map[string]string) *Patch {
	patch := &Patch{}
	for _, r := range renderers {
		desired, err := r.Template.Render(pid)
		if err != nil {
			patch.Skips = append(patch.Skips, Skip{Key: r.Key, Domain: r.Domain(), Err: err})
			continue
		}

		current := labels
		if r.Domain() == template.DomainAnnotation {
			current = annotations
		}
		if v, ok := current[r.Key.String()]; ok && v == desired {
			continue
		}

		switch r.Domain() {
		case template.DomainLabel:
			if patch.Labels == nil {
				patch.Labels = map[string]string{}
			}
			patch.Labels[r.Key.String()] = desired
		case template.DomainAnnotation:
			if patch.Annotations == nil {
				patch.Annotations = map[string]string{}
			}
			patch.Annotations[r.Key.String()] = desired
		}
	}
	return patch
}
