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

package plugins

import (
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/francesco-furlan/libs/pkg/plugintable"
	"github.com/francesco-furlan/libs/pkg/sdk"
	"github.com/francesco-furlan/libs/pkg/state"
)

// Registry tracks the plugins loaded into one engine instance and hands
// each of them a table API bound to the instance's shared table
// registry. Its lifetime, like the table registry's, is bound to the
// engine instance; there is no process-wide registry.
type Registry struct {
	tables  *state.Registry
	plugins map[string]Plugin
	apis    map[string]*plugintable.API
	order   []Plugin
}

func NewRegistry(tables *state.Registry) *Registry {
	return &Registry{
		tables:  tables,
		plugins: make(map[string]Plugin),
		apis:    make(map[string]*plugintable.API),
	}
}

// Register validates config against the plugin's init schema (if the
// plugin declares one), initializes the plugin, registers the tables it
// owns, and returns the table API the plugin can use from now on.
func (r *Registry) Register(p Plugin, config string) (*plugintable.API, error) {
	name := p.Info().Name
	if name == "" {
		return nil, errors.New("plugin declares an empty name")
	}
	if _, ok := r.plugins[name]; ok {
		return nil, fmt.Errorf("a plugin is already registered with name %q", name)
	}

	config, err := validateInitConfig(p, config)
	if err != nil {
		return nil, fmt.Errorf("invalid config for plugin %q: %s", name, err.Error())
	}
	if err := p.Init(config); err != nil {
		return nil, fmt.Errorf("initialization failed for plugin %q: %s", name, err.Error())
	}

	api := plugintable.NewAPI(r.tables, p)
	if tp, ok := p.(TableProvider); ok {
		for _, in := range tp.Tables() {
			if api.AddTable(in) != sdk.ResultSuccess {
				return nil, fmt.Errorf("can't register table %q of plugin %q: %s", in.Name, name, lastErrorString(p))
			}
		}
	}

	r.plugins[name] = p
	r.apis[name] = api
	r.order = append(r.order, p)
	return api, nil
}

// Plugins returns the registered plugins in registration order.
func (r *Registry) Plugins() []Plugin {
	return r.order
}

// Destroy tears down every registered plugin that has cleanup to do.
func (r *Registry) Destroy() {
	for _, p := range r.order {
		if d, ok := p.(Destroyer); ok {
			d.Destroy()
		}
	}
}

func validateInitConfig(p Plugin, config string) (string, error) {
	s, ok := p.(InitSchema)
	if !ok || s.InitSchema() == nil {
		return config, nil
	}
	if len(config) == 0 {
		config = "{}"
	}
	schema := gojsonschema.NewStringLoader(s.InitSchema().Schema)
	document := gojsonschema.NewStringLoader(config)
	result, err := gojsonschema.Validate(schema, document)
	if err != nil {
		return "", err
	}
	if !result.Valid() {
		// return first error
		return "", errors.New(result.Errors()[0].Description())
	}
	return config, nil
}

func lastErrorString(p Plugin) string {
	if err := p.LastError(); err != nil {
		return err.Error()
	}
	return "unknown error"
}
