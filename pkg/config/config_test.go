// SPDX-License-Identifier: Apache-2.0
/*
Copyright (C) 2024 The Falco Authors.

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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/francesco-furlan/libs/pkg/metrics"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
host_root: /host
metrics:
  resource_utilization: true
  state_counters: false
  plugins: true
  prometheus_namespace: falcosecurity
  prometheus_subsystem: engine
  const_labels:
    machine_id: abc123
`)
	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "/host", cfg.HostRoot)
	assert.False(t, cfg.Metrics.StateCounters)
	assert.Equal(t, "falcosecurity", cfg.Metrics.PrometheusNamespace)
	assert.Equal(t, "abc123", cfg.Metrics.ConstLabels["machine_id"])

	flags := cfg.Metrics.Flags()
	assert.Equal(t, metrics.ResourceUtilization|metrics.Plugins, flags)

	conv := cfg.Metrics.PrometheusConverter()
	assert.Equal(t, "falcosecurity", conv.Namespace)
	assert.Equal(t, "engine", conv.Subsystem)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "host_root: ''\n")
	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Empty(t, cfg.HostRoot)
	// all metric groups default to enabled
	assert.Equal(t, metrics.ResourceUtilization|metrics.StateCounters|metrics.Plugins, cfg.Metrics.Flags())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
