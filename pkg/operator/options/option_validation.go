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
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

func (o *Options) Validate() error {
	return multierr.Combine(
		o.validateRequeueInterval(),
		o.validateConcurrency(),
		o.validateLogLevel(),
	)
}

func (o *Options) validateRequeueInterval() error {
	if o.RequeueInterval <= 0 {
		return fmt.Errorf("%s must be positive, got %s", requeueIntervalFlagName, o.RequeueInterval)
	}
	return nil
}

func (o *Options) validateConcurrency() error {
	if o.MaxConcurrentReconciles <= 0 {
		return fmt.Errorf("%s must be positive, got %d", concurrencyFlagName, o.MaxConcurrentReconciles)
	}
	return nil
}

func (o *Options) validateLogLevel() error {
	if _, err := zapcore.ParseLevel(o.LogLevel); err != nil {
		return fmt.Errorf("invalid %s %q, %w", logLevelFlagName, o.LogLevel, err)
	}
	return nil
}

// ZapLevel returns the configured log level. Only valid after Validate.
func (o *Options) ZapLevel() zapcore.Level {
	level, _ := zapcore.ParseLevel(o.LogLevel)
	return level
}
