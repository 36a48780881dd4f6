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

package nodemetadata

import (
	"github.com/prometheus/client_golang/prometheus"
	crmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	metricsNamespace = "node_provider_labeler"

	skipReasonMissingProviderID = "missing_provider_id"
	skipReasonEvaluation        = "evaluation"
)

var (
	reconciliations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "reconciliations_total",
		Help:      "Number of node reconciliation cycles started.",
	})
	patches = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "patches_total",
		Help:      "Number of node metadata patches applied.",
	})
	patchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "patch_failures_total",
		Help:      "Number of node metadata patches that failed and were retried.",
	})
	skips = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "skips_total",
		Help:      "Number of benign per-node or per-key skips, by reason.",
	}, []string{"reason"})
	reconcileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "reconcile_duration_seconds",
		Help:      "Duration of node reconciliation cycles.",
		Buckets:   []float64{0.01, 0.1, 0.25, 0.5, 1, 5, 15, 60},
	})
)

func init() {
	crmetrics.Registry.MustRegister(reconciliations, patches, patchFailures, skips, reconcileDuration)
}
