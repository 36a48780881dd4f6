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

package options

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"sigs.k8s.io/yaml"

	"github.com/jossware/node-provider-labeler/pkg/utils"
)

const (
	labelFlagName           = "label"
	labelEnvVarName         = "LABELS"
	annotationFlagName      = "annotation"
	annotationEnvVarName    = "ANNOTATIONS"
	requeueIntervalFlagName = "requeue-interval"
	requeueIntervalEnvVar   = "REQUEUE_INTERVAL"
	concurrencyFlagName     = "max-concurrent-reconciles"
	concurrencyEnvVarName   = "MAX_CONCURRENT_RECONCILES"
	configFileFlagName      = "config"
	configFileEnvVarName    = "CONFIG_FILE"
	metricsAddrFlagName     = "metrics-bind-address"
	metricsAddrEnvVarName   = "METRICS_BIND_ADDRESS"
	probeAddrFlagName       = "health-probe-bind-address"
	probeAddrEnvVarName     = "HEALTH_PROBE_BIND_ADDRESS"
	leaderElectFlagName     = "leader-elect"
	leaderElectEnvVarName   = "LEADER_ELECT"
	logLevelFlagName        = "log-level"
	logLevelEnvVarName      = "LOG_LEVEL"
)

type optionsKey struct{}

// Options is the process configuration, resolved once at startup from flags,
// environment variables and the optional config file, then carried in the
// context. Immutable after Parse.
type Options struct {
	// Labels are "key" or "key=template" entries rendered as node labels.
	Labels []string
	// Annotations are "key" or "key=template" entries rendered as node
	// annotations.
	Annotations []string
	// RequeueInterval is how long after a successful (or skipped) cycle a
	// node is re-checked.
	RequeueInterval time.Duration
	// MaxConcurrentReconciles bounds how many nodes reconcile in parallel.
	MaxConcurrentReconciles int
	// ConfigFile optionally points at a YAML file with the same settings;
	// flag and environment values take precedence over it.
	ConfigFile             string
	MetricsBindAddress     string
	HealthProbeBindAddress string
	LeaderElect            bool
	LogLevel               string
}

func New() *Options {
	return &Options{}
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringArrayVar(&o.Labels, labelFlagName, utils.WithDefaultStringSlice(labelEnvVarName, nil),
		"Label key and optional template for the label value, as key or key=template. Repeatable. "+
			"Defaults to provider-id={:last} when no labels and no annotations are configured.")
	fs.StringArrayVar(&o.Annotations, annotationFlagName, utils.WithDefaultStringSlice(annotationEnvVarName, nil),
		"Annotation key and optional template for the annotation value, as key or key=template. Repeatable.")
	fs.DurationVar(&o.RequeueInterval, requeueIntervalFlagName, utils.WithDefaultDuration(requeueIntervalEnvVar, time.Hour),
		"Re-check each node after this interval, in addition to reacting to node events.")
	fs.IntVar(&o.MaxConcurrentReconciles, concurrencyFlagName, utils.WithDefaultInt(concurrencyEnvVarName, 10),
		"Maximum number of nodes reconciled concurrently.")
	fs.StringVar(&o.ConfigFile, configFileFlagName, utils.WithDefaultString(configFileEnvVarName, ""),
		"Path to a YAML configuration file. Flags and environment variables take precedence over it.")
	fs.StringVar(&o.MetricsBindAddress, metricsAddrFlagName, utils.WithDefaultString(metricsAddrEnvVarName, ":8080"),
		"Address the metrics endpoint binds to. Set to 0 to disable.")
	fs.StringVar(&o.HealthProbeBindAddress, probeAddrFlagName, utils.WithDefaultString(probeAddrEnvVarName, ":8081"),
		"Address the health probe endpoint binds to.")
	fs.BoolVar(&o.LeaderElect, leaderElectFlagName, utils.WithDefaultBool(leaderElectEnvVarName, false),
		"Enable leader election when running multiple replicas.")
	fs.StringVar(&o.LogLevel, logLevelFlagName, utils.WithDefaultString(logLevelEnvVarName, "info"),
		"Log level: debug, info, warn or error.")
}

func (o *Options) Parse(fs *pflag.FlagSet, args ...string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		return fmt.Errorf("parsing flags, %w", err)
	}
	if o.ConfigFile != "" {
		if err := o.mergeConfigFile(fs); err != nil {
			return fmt.Errorf("loading config file %q, %w", o.ConfigFile, err)
		}
	}
	if err := o.Validate(); err != nil {
		return fmt.Errorf("validating options, %w", err)
	}
	return nil
}

// configFile mirrors the Options fields that make sense in a file.
type configFile struct {
	Labels                  []configEntry `json:"labels,omitempty"`
	Annotations             []configEntry `json:"annotations,omitempty"`
	RequeueInterval         string        `json:"requeueInterval,omitempty"`
	MaxConcurrentReconciles *int          `json:"maxConcurrentReconciles,omitempty"`
}

type configEntry struct {
	Key      string `json:"key"`
	Template string `json:"template,omitempty"`
}

func (e configEntry) argument() string {
	if e.Template == "" {
		return e.Key
	}
	return e.Key + "=" + e.Template
}

// mergeConfigFile folds the config file into the options. File entries come
// before flag entries so that flag-configured keys win when both configure
// the same key; scalar file settings apply only when the corresponding flag
// was not set explicitly.
func (o *Options) mergeConfigFile(fs *pflag.FlagSet) error {
	raw, err := os.ReadFile(o.ConfigFile)
	if err != nil {
		return err
	}
	var cf configFile
	if err := yaml.UnmarshalStrict(raw, &cf); err != nil {
		return err
	}

	var labels []string
	for _, e := range cf.Labels {
		labels = append(labels, e.argument())
	}
	o.Labels = append(labels, o.Labels...)

	var annotations []string
	for _, e := range cf.Annotations {
		annotations = append(annotations, e.argument())
	}
	o.Annotations = append(annotations, o.Annotations...)

	if cf.RequeueInterval != "" && !fs.Changed(requeueIntervalFlagName) {
		d, err := time.ParseDuration(cf.RequeueInterval)
		if err != nil {
			return fmt.Errorf("parsing requeueInterval, %w", err)
		}
		o.RequeueInterval = d
	}
	if cf.MaxConcurrentReconciles != nil && !fs.Changed(concurrencyFlagName) {
		o.MaxConcurrentReconciles = *cf.MaxConcurrentReconciles
	}
	return nil
}

func (o *Options) ToContext(ctx context.Context) context.Context {
	return ToContext(ctx, o)
}

func ToContext(ctx context.Context, opts *Options) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

func FromContext(ctx context.Context) *Options {
	retval := ctx.Value(optionsKey{})
	if retval == nil {
		return nil
	}
	return retval.(*Options)
}
