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

package options_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/jossware/node-provider-labeler/pkg/operator/options"
)

func parse(t *testing.T, args ...string) (*options.Options, error) {
	t.Helper()
	opts := options.New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.AddFlags(fs)
	return opts, opts.Parse(fs, args...)
}

func TestParseDefaults(t *testing.T) {
	opts, err := parse(t)
	require.NoError(t, err)
	assert.Empty(t, opts.Labels)
	assert.Empty(t, opts.Annotations)
	assert.Equal(t, time.Hour, opts.RequeueInterval)
	assert.Equal(t, 10, opts.MaxConcurrentReconciles)
	assert.Equal(t, ":8080", opts.MetricsBindAddress)
	assert.Equal(t, ":8081", opts.HealthProbeBindAddress)
	assert.False(t, opts.LeaderElect)
	assert.Equal(t, zapcore.InfoLevel, opts.ZapLevel())
}

func TestParseRepeatedFlags(t *testing.T) {
	opts, err := parse(t,
		"--label=provider-id",
		"--label=example.com/zone={0}",
		"--annotation=example.com/node-id={:all}",
		"--requeue-interval=30m",
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"provider-id", "example.com/zone={0}"}, opts.Labels)
	assert.Equal(t, []string{"example.com/node-id={:all}"}, opts.Annotations)
	assert.Equal(t, 30*time.Minute, opts.RequeueInterval)
}

func TestParseValidation(t *testing.T) {
	_, err := parse(t, "--requeue-interval=0s")
	assert.Error(t, err)

	_, err = parse(t, "--max-concurrent-reconciles=0")
	assert.Error(t, err)

	_, err = parse(t, "--log-level=shout")
	assert.Error(t, err)
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
labels:
  - key: provider-id
  - key: example.com/zone
    template: "{0}"
annotations:
  - key: example.com/node-id
    template: "{:all}"
requeueInterval: 15m
maxConcurrentReconciles: 4
`), 0o600))

	opts, err := parse(t, "--config="+path)
	require.NoError(t, err)
	assert.Equal(t, []string{"provider-id", "example.com/zone={0}"}, opts.Labels)
	assert.Equal(t, []string{"example.com/node-id={:all}"}, opts.Annotations)
	assert.Equal(t, 15*time.Minute, opts.RequeueInterval)
	assert.Equal(t, 4, opts.MaxConcurrentReconciles)
}

func TestParseConfigFileFlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
labels:
  - key: from-file
requeueInterval: 15m
`), 0o600))

	opts, err := parse(t, "--config="+path, "--label=from-flag", "--requeue-interval=45m")
	require.NoError(t, err)
	// file entries come first so later (flag) entries win on key conflicts
	assert.Equal(t, []string{"from-file", "from-flag"}, opts.Labels)
	assert.Equal(t, 45*time.Minute, opts.RequeueInterval)
}

func TestParseConfigFileUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nonsense: true\n"), 0o600))

	_, err := parse(t, "--config="+path)
	assert.Error(t, err)
}

func TestContextRoundTrip(t *testing.T) {
	opts, err := parse(t)
	require.NoError(t, err)

	ctx := opts.ToContext(context.Background())
	assert.Same(t, opts, options.FromContext(ctx))
	assert.Nil(t, options.FromContext(context.Background()))
}
