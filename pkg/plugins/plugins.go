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

// Package plugins defines what an in-process plugin looks like to the
// engine and the registry that tracks the loaded ones. A plugin is the
// owner of every boundary call it makes: its last-error slot is where
// failed table operations leave their message.
package plugins

import (
	"github.com/francesco-furlan/libs/pkg/sdk"
)

// Info holds the general metadata a plugin declares about itself.
type Info struct {
	Name        string
	Description string
	Contact     string
	Version     string
}

// Plugin is the interface every plugin must implement to be registered
// in the engine.
type Plugin interface {
	sdk.LastError
	Info() *Info
	Init(config string) error
	// (optional): InitSchema, TableProvider, Destroyer
}

// InitSchema is optionally implemented by plugins whose init
// configuration must be validated against a schema before Init runs.
type InitSchema interface {
	InitSchema() *sdk.SchemaInfo
}

// TableProvider is optionally implemented by plugins that own state
// tables of their own and want them registered in the engine at
// initialization time.
type TableProvider interface {
	// Tables returns the boundary description of every table the
	// plugin owns.
	Tables() []*sdk.TableInput
}

// Destroyer is optionally implemented by plugins with cleanup to do at
// engine teardown.
type Destroyer interface {
	Destroy()
}

// BaseLastError is an embeddable implementation of sdk.LastError.
type BaseLastError struct {
	lastErr error
}

func (b *BaseLastError) LastError() error {
	return b.lastErr
}

func (b *BaseLastError) SetLastError(err error) {
	b.lastErr = err
}

// BasePlugin is a convenience type for plugin authors, meant to be
// embedded in plugin implementations.
type BasePlugin struct {
	BaseLastError
}
