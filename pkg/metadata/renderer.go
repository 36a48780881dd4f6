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
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/jossware/node-provider-labeler/pkg/template"
)

const (
	// DefaultKeyName is the label key used when no labels and no
	// annotations are configured at all. The zero-configuration behavior,
	// one "provider-id" label rendered with "{:last}", is a compatibility
	// contract; do not change it.
	DefaultKeyName = "provider-id"
)

// Renderer binds one configured metadata key to its compiled template.
// Renderers are built once at startup and read-only afterwards.
type Renderer struct {
	Key      Key
	Template *template.Template
}

// Domain returns the metadata domain the renderer writes to.
func (r *Renderer) Domain() template.Domain {
	return r.Template.Domain()
}

func (r *Renderer) String() string {
	return fmt.Sprintf("%s=%s (%s)", r.Key, r.Template, r.Domain())
}

// ParseRenderer parses a "key" or "key=template" configuration argument for
// the given domain. A bare key renders with the default "{:last}" template.
func ParseRenderer(arg string, domain template.Domain) (*Renderer, error) {
	rawKey, rawTemplate, found := strings.Cut(arg, "=")
	if !found {
		rawTemplate = template.Default
	}
	key, err := ParseKey(rawKey)
	if err != nil {
		return nil, fmt.Errorf("parsing %s %q, %w", domain, arg, err)
	}
	tmpl, err := template.Parse(rawTemplate, domain)
	if err != nil {
		return nil, fmt.Errorf("parsing %s %q, %w", domain, arg, err)
	}
	return &Renderer{Key: key, Template: tmpl}, nil
}

// ParseRenderers compiles all configured label and annotation arguments, in
// order, labels first. Compilation failures are collected so that every
// malformed entry is reported together; any failure must abort startup.
func ParseRenderers(labels, annotations []string) ([]*Renderer, error) {
	var renderers []*Renderer
	var errs error
	for _, arg := range labels {
		r, err := ParseRenderer(arg, template.DomainLabel)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		renderers = append(renderers, r)
	}
	for _, arg := range annotations {
		r, err := ParseRenderer(arg, template.DomainAnnotation)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		renderers = append(renderers, r)
	}
	if errs != nil {
		return nil, errs
	}
	return renderers, nil
}

// DefaultRenderers returns the zero-configuration renderer set.
func DefaultRenderers() []*Renderer {
	return []*Renderer{{
		Key:      Key{raw: DefaultKeyName, name: DefaultKeyName},
		Template: template.MustParse(template.Default, template.DomainLabel),
	}}
}
