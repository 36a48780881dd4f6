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

package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/jossware/node-provider-labeler/pkg/metadata"
	"github.com/jossware/node-provider-labeler/pkg/providerid"
	"github.com/jossware/node-provider-labeler/pkg/template"
)

func TestParseRenderer(t *testing.T) {
	r, err := metadata.ParseRenderer("provider-id={:last}", template.DomainLabel)
	require.NoError(t, err)
	assert.Equal(t, "provider-id", r.Key.String())
	assert.Equal(t, "{:last}", r.Template.String())
	assert.Equal(t, template.DomainLabel, r.Domain())
}

func TestParseRendererBareKey(t *testing.T) {
	// a bare key gets the default template
	r, err := metadata.ParseRenderer("example.com/instance", template.DomainAnnotation)
	require.NoError(t, err)
	assert.Equal(t, "example.com", r.Key.Prefix())
	assert.Equal(t, "instance", r.Key.Name())
	assert.Equal(t, template.Default, r.Template.String())
	assert.Equal(t, template.DomainAnnotation, r.Domain())
}

func TestParseRendererErrors(t *testing.T) {
	_, err := metadata.ParseRenderer("bad~key={:last}", template.DomainLabel)
	assert.Error(t, err)

	_, err = metadata.ParseRenderer("key={unknown}", template.DomainLabel)
	assert.ErrorIs(t, err, template.ErrUnknownToken)

	_, err = metadata.ParseRenderer("key={:last", template.DomainLabel)
	assert.ErrorIs(t, err, template.ErrMalformedTemplate)
}

func TestParseRenderers(t *testing.T) {
	renderers, err := metadata.ParseRenderers(
		[]string{"provider-id", "example.com/zone={0}"},
		[]string{"example.com/node-id={:all}"},
	)
	require.NoError(t, err)
	require.Len(t, renderers, 3)
	assert.Equal(t, template.DomainLabel, renderers[0].Domain())
	assert.Equal(t, template.DomainLabel, renderers[1].Domain())
	assert.Equal(t, template.DomainAnnotation, renderers[2].Domain())
}

func TestParseRenderersCollectsAllErrors(t *testing.T) {
	_, err := metadata.ParseRenderers(
		[]string{"ok={:last}", "bad={unknown}"},
		[]string{"also~bad={:last}"},
	)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestDefaultRenderers(t *testing.T) {
	renderers := metadata.DefaultRenderers()
	require.Len(t, renderers, 1)
	assert.Equal(t, "provider-id", renderers[0].Key.String())
	assert.Equal(t, template.DomainLabel, renderers[0].Domain())

	pid := providerid.Parse("fake://region/instance")
	require.NotNil(t, pid)
	out, err := renderers[0].Template.Render(pid)
	require.NoError(t, err)
	assert.Equal(t, "instance", out)
}
