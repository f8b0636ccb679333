// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package loader

import "github.com/samber/oops"

var errNilModule = oops.In("loader").Errorf("factory returned a nil module")

func errNameMismatch(got string) error {
	return oops.In("loader").
		With("got", got).
		Hint("a module's Name must match its manifest name").
		Errorf("factory produced module %q", got)
}
