// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package music

import "github.com/samber/oops"

// Error codes for adapter failures.
const (
	CodeAdapterRejected = "ADAPTER_REJECTED"
	CodeAdapterFailed   = "ADAPTER_FAILED"
)

// ErrAdapterRejected reports that a primary adapter could not resolve a link.
func ErrAdapterRejected(adapter, url string, cause error) error {
	b := oops.In("music").
		Code(CodeAdapterRejected).
		With("adapter", adapter).
		With("url", url)
	if cause == nil {
		return b.Errorf("%s does not handle %s", adapter, url)
	}
	return b.Wrapf(cause, "%s could not resolve link", adapter)
}

// ErrAdapterFailed reports a failed secondary search.
func ErrAdapterFailed(adapter string, cause error) error {
	return oops.In("music").
		Code(CodeAdapterFailed).
		With("adapter", adapter).
		Wrapf(cause, "%s search failed", adapter)
}
