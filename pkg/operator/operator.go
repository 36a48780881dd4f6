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

package operator

import (
	"context"
	"os"

	"github.com/awslabs/operatorpkg/controller"
	"github.com/samber/lo"
	"k8s.io/client-go/tools/record"
	controllerruntime "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/jossware/node-provider-labeler/pkg/controllers/nodemetadata"
	"github.com/jossware/node-provider-labeler/pkg/metadata"
	"github.com/jossware/node-provider-labeler/pkg/operator/options"
)

// Operator wraps the controller-runtime manager together with everything
// resolved at startup: the compiled renderer set and the event recorder.
type Operator struct {
	manager.Manager

	Renderers     []*metadata.Renderer
	EventRecorder record.EventRecorder
}

// NewOperator compiles the configured templates and builds the manager.
// Template compilation happens here, before any watch starts: every
// malformed entry is reported together and the process exits without ever
// becoming ready.
func NewOperator(ctx context.Context) (context.Context, *Operator) {
	opts := options.FromContext(ctx)

	renderers, err := metadata.ParseRenderers(opts.Labels, opts.Annotations)
	if err != nil {
		log.FromContext(ctx).Error(err, "failed to compile metadata templates")
		os.Exit(1)
	}
	if len(renderers) == 0 {
		renderers = metadata.DefaultRenderers()
	}

	mgr, err := controllerruntime.NewManager(controllerruntime.GetConfigOrDie(), controllerruntime.Options{
		Metrics: metricsserver.Options{
			BindAddress: opts.MetricsBindAddress,
		},
		HealthProbeBindAddress: opts.HealthProbeBindAddress,
		LeaderElection:         opts.LeaderElect,
		LeaderElectionID:       "node-provider-labeler-leader-election",
	})
	if err != nil {
		log.FromContext(ctx).Error(err, "failed to create manager")
		os.Exit(1)
	}
	lo.Must0(mgr.AddHealthzCheck("healthz", healthz.Ping))
	lo.Must0(mgr.AddReadyzCheck("readyz", healthz.Ping))

	return ctx, &Operator{
		Manager:       mgr,
		Renderers:     renderers,
		EventRecorder: mgr.GetEventRecorderFor(nodemetadata.FieldManager),
	}
}

func (o *Operator) WithControllers(ctx context.Context, controllers ...controller.Controller) *Operator {
	for _, c := range controllers {
		lo.Must0(c.Register(ctx, o.Manager))
	}
	return o
}

func (o *Operator) Start(ctx context.Context) {
	log.FromContext(ctx).Info("starting controller manager")
	lo.Must0(o.Manager.Start(ctx))
}
