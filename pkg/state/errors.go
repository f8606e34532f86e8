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

package state

import "errors"

// The error kinds produced by state tables and their adapters. Callers
// classify failures with errors.Is; every error returned by this package
// and by pkg/plugintable wraps exactly one of these.
//
// ErrNotFound and ErrUnsupported are ordinary recoverable conditions.
// ErrSchema, ErrType, and ErrOwnership indicate a caller bug: the failed
// call leaves the table untouched, but the caller is expected to have
// validated its preconditions rather than retry.
var (
	// ErrSchema indicates an invalid field definition, such as a
	// dynamic field colliding with an existing static field.
	ErrSchema = errors.New("schema definition error")

	// ErrType indicates that a requested field or key type does not
	// match the declared one.
	ErrType = errors.New("incompatible data types")

	// ErrNotFound indicates an unknown table name, field name, or
	// entry key.
	ErrNotFound = errors.New("not found")

	// ErrOwnership indicates a misuse of the single-owner entry
	// discipline, such as inserting the same entry twice.
	ErrOwnership = errors.New("entry ownership violation")

	// ErrBoundary indicates that a call into foreign code returned its
	// failure sentinel; the wrapped message is the one retrieved from
	// the foreign owner's last-error slot.
	ErrBoundary = errors.New("table boundary error")

	// ErrUnsupported indicates an operation that the specific backing
	// implementation legitimately does not offer.
	ErrUnsupported = errors.New("operation not supported")
)
