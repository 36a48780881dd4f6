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

package controllers

import (
	"context"

	"github.com/awslabs/operatorpkg/controller"
	"k8s.io/client-go/tools/record"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/jossware/node-provider-labeler/pkg/controllers/nodemetadata"
	"github.com/jossware/node-provider-labeler/pkg/metadata"
	"github.com/jossware/node-provider-labeler/pkg/operator/options"
)

func NewControllers(
	ctx context.Context,
	kubeClient client.Client,
	recorder record.EventRecorder,
	renderers []*metadata.Renderer,
) []controller.Controller {
	opts := options.FromContext(ctx)
	return []controller.Controller{
		nodemetadata.NewController(kubeClient, recorder, renderers, opts.RequeueInterval, opts.MaxConcurrentReconciles),
	}
}
