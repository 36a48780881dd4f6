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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jossware/node-provider-labeler/pkg/metadata"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		input  string
		prefix string
		name   string
	}{
		{"app", "", "app"},
		{"provider-id", "", "provider-id"},
		{"domain.com/app", "domain.com", "app"},
		{"sub.domain.com/app", "sub.domain.com", "app"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			k, err := metadata.ParseKey(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.prefix, k.Prefix())
			assert.Equal(t, tt.name, k.Name())
			assert.Equal(t, tt.input, k.String())
		})
	}
}

func TestParseKeyInvalid(t *testing.T) {
	for _, input := range []string{
		"",
		"-app",
		"app-",
		"te~t",
		"app=test=test2",
		"domain.com/app/v1",
		"domain..com/app",
		"domain.-x.com/app",
		strings.Repeat("x", 64),
		strings.Repeat("x", 254) + "/app",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := metadata.ParseKey(input)
			assert.Error(t, err)
		})
	}
}
