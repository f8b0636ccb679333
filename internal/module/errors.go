// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package module

import (
	"github.com/samber/oops"
)

// Error codes for module discovery and lifecycle failures.
const (
	CodeModuleNotFound      = "MODULE_NOT_FOUND"
	CodeInstantiationFailed = "MODULE_INSTANTIATION_FAILED"
	CodeActivationFailed    = "MODULE_ACTIVATION_FAILED"
	CodeInvalidManifest     = "INVALID_MANIFEST"
)

// ErrModuleNotFound creates an error for a name no source provides.
func ErrModuleNotFound(name string) error {
	return oops.In("module").
		Code(CodeModuleNotFound).
		With("module", name).
		Errorf("module %q not found", name)
}

// ErrInstantiation wraps a failing factory.
func ErrInstantiation(name string, cause error) error {
	return oops.In("module").
		Code(CodeInstantiationFailed).
		With("module", name).
		Wrapf(cause, "instantiate module %q", name)
}

// ErrActivation wraps a failing OnLoad.
func ErrActivation(name string, cause error) error {
	return oops.In("module").
		Code(CodeActivationFailed).
		With("module", name).
		Wrapf(cause, "activate module %q", name)
}

func errManifest(format string, args ...any) error {
	return oops.In("module").
		Code(CodeInvalidManifest).
		Errorf(format, args...)
}
