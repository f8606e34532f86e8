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

// Package config loads the engine-instance configuration.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/francesco-furlan/libs/pkg/metrics"
)

// Config is the top-level engine configuration.
type Config struct {
	// HostRoot prefixes every host-wide path the engine reads (e.g.
	// "/proc/meminfo"); it is what lets a containerized engine observe
	// the underlying host through a bind mount.
	HostRoot string `mapstructure:"host_root"`

	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig selects which metric groups the collector snapshots and
// how the Prometheus converter qualifies them.
type MetricsConfig struct {
	ResourceUtilization bool `mapstructure:"resource_utilization"`
	StateCounters       bool `mapstructure:"state_counters"`
	Plugins             bool `mapstructure:"plugins"`

	PrometheusNamespace string            `mapstructure:"prometheus_namespace"`
	PrometheusSubsystem string            `mapstructure:"prometheus_subsystem"`
	ConstLabels         map[string]string `mapstructure:"const_labels"`
}

// Flags returns the metric groups enabled by this configuration.
func (c *MetricsConfig) Flags() metrics.Flags {
	var f metrics.Flags
	if c.ResourceUtilization {
		f |= metrics.ResourceUtilization
	}
	if c.StateCounters {
		f |= metrics.StateCounters
	}
	if c.Plugins {
		f |= metrics.Plugins
	}
	return f
}

// PrometheusConverter builds the converter matching this configuration.
func (c *MetricsConfig) PrometheusConverter() metrics.PrometheusConverter {
	return metrics.PrometheusConverter{
		Namespace:   c.PrometheusNamespace,
		Subsystem:   c.PrometheusSubsystem,
		ConstLabels: c.ConstLabels,
	}
}

// Load reads the configuration from the YAML file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("host_root", "")
	v.SetDefault("metrics.resource_utilization", true)
	v.SetDefault("metrics.state_counters", true)
	v.SetDefault("metrics.plugins", true)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
