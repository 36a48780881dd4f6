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

// Package nodemetadata reconciles node labels and annotations derived from
// each node's provider id. One cycle parses the provider id, renders every
// configured template, diffs the results against the node and applies a
// minimal merge patch. Cycles are re-run on node watch events and on a
// jittered periodic requeue.
package nodemetadata

import (
	"context"
	"fmt"
	"time"

	"github.com/awslabs/operatorpkg/reasonable"
	"github.com/samber/lo"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/tools/record"
	"k8s.io/utils/clock"
	controllerruntime "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	pkgcache "github.com/jossware/node-provider-labeler/pkg/cache"
	"github.com/jossware/node-provider-labeler/pkg/metadata"
	"github.com/jossware/node-provider-labeler/pkg/providerid"
)

const (
	// FieldManager identifies this controller's patches to the API server.
	FieldManager = "node-provider-labeler"

	// requeueJitterFactor spreads the periodic re-checks of all nodes so
	// they do not stampede the API server in lockstep.
	requeueJitterFactor = 0.1
)

type Controller struct {
	kubeClient              client.Client
	recorder                record.EventRecorder
	renderers               []*metadata.Renderer
	renders                 *pkgcache.Renders
	requeueInterval         time.Duration
	maxConcurrentReconciles int
	clock                   clock.PassiveClock
}

func NewController(
	kubeClient client.Client,
	recorder record.EventRecorder,
	renderers []*metadata.Renderer,
	requeueInterval time.Duration,
	maxConcurrentReconciles int,
) *Controller {
	return &Controller{
		kubeClient:              kubeClient,
		recorder:                recorder,
		renderers:               renderers,
		renders:                 pkgcache.NewRenders(),
		requeueInterval:         requeueInterval,
		maxConcurrentReconciles: maxConcurrentReconciles,
		clock:                   clock.RealClock{},
	}
}

func (c *Controller) Reconcile(ctx context.Context, node *corev1.Node) (reconcile.Result, error) {
	start := c.clock.Now()
	defer func() {
		reconcileDuration.Observe(c.clock.Since(start).Seconds())
	}()
	reconciliations.Inc()

	// whatever this cycle decides, the node gets re-checked periodically;
	// a provider id can appear well after initial registration
	requeue := reconcile.Result{RequeueAfter: wait.Jitter(c.requeueInterval, requeueJitterFactor)}

	pid := providerid.Parse(node.Spec.ProviderID)
	if pid == nil {
		log.FromContext(ctx).V(1).Info("no usable provider id on node, skipping this cycle", "node", node.Name, "providerID", node.Spec.ProviderID)
		skips.WithLabelValues(skipReasonMissingProviderID).Inc()
		if node.Spec.ProviderID != "" {
			c.recorder.Eventf(node, corev1.EventTypeWarning, "MalformedProviderID",
				"provider id %q is not in the <provider>://<node-id> format", node.Spec.ProviderID)
		}
		return requeue, nil
	}

	if c.renders.Settled(node.Name, node.ResourceVersion, pid.String()) {
		return requeue, nil
	}

	patch := metadata.Plan(c.renderers, pid, node.Labels, node.Annotations)
	for _, skip := range patch.Skips {
		log.FromContext(ctx).V(1).Info("skipping key for this cycle",
			"node", node.Name, "key", skip.Key.String(), "domain", string(skip.Domain), "reason", skip.Err.Error())
		skips.WithLabelValues(skipReasonEvaluation).Inc()
	}
	if patch.Empty() {
		c.renders.MarkSettled(node.Name, node.ResourceVersion, pid.String())
		return requeue, nil
	}

	stored := node.DeepCopy()
	node.Labels = lo.Assign(node.Labels, patch.Labels)
	node.Annotations = lo.Assign(node.Annotations, patch.Annotations)
	log.FromContext(ctx).Info("patching node metadata",
		"node", node.Name, "labels", len(patch.Labels), "annotations", len(patch.Annotations))
	if err := c.kubeClient.Patch(ctx, node, client.MergeFrom(stored), client.FieldOwner(FieldManager)); err != nil {
		c.renders.Forget(node.Name)
		if apierrors.IsNotFound(err) {
			// the node is gone; a future watch event starts fresh
			return reconcile.Result{}, nil
		}
		// conflicts and transient API errors retry through the rate limiter
		patchFailures.Inc()
		c.recorder.Eventf(node, corev1.EventTypeWarning, "PatchFailed", "patching node metadata: %v", err)
		return reconcile.Result{}, fmt.Errorf("patching node %q, %w", node.Name, err)
	}
	patches.Inc()

	return requeue, nil
}

func (c *Controller) Register(_ context.Context, m manager.Manager) error {
	return controllerruntime.NewControllerManagedBy(m).
		Named("node.metadata").
		For(&corev1.Node{}).
		WithOptions(controller.Options{
			RateLimiter:             reasonable.RateLimiter(),
			MaxConcurrentReconciles: c.maxConcurrentReconciles,
		}).
		Complete(reconcile.AsReconciler(m.GetClient(), c))
}
