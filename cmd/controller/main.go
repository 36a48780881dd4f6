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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	uberzap "go.uber.org/zap"
	controllerruntime "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/jossware/node-provider-labeler/pkg/controllers"
	"github.com/jossware/node-provider-labeler/pkg/operator"
	"github.com/jossware/node-provider-labeler/pkg/operator/options"
)

func main() {
	opts := options.New()
	fs := pflag.NewFlagSet("node-provider-labeler", pflag.ContinueOnError)
	opts.AddFlags(fs)
	if err := opts.Parse(fs, os.Args[1:]...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	controllerruntime.SetLogger(zap.New(
		zap.Level(uberzap.NewAtomicLevelAt(opts.ZapLevel())),
	))

	ctx := opts.ToContext(controllerruntime.SetupSignalHandler())
	ctx, op := operator.NewOperator(ctx)

	op.
		WithControllers(ctx, controllers.NewControllers(
			ctx,
			op.GetClient(),
			op.EventRecorder,
			op.Renderers,
		)...).
		Start(ctx)
}
