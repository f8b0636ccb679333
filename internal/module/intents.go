// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package module

import (
	"context"
	"sort"
)

// Intents returns the sorted union of the gateway intents declared by the
// source's manifests. No module code runs.
func Intents(ctx context.Context, src Source) ([]string, error) {
	entries, err := src.Entries(ctx)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	for _, e := range entries {
		for _, intent := range e.Manifest.Intents {
			set[intent] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for intent := range set {
		out = append(out, intent)
	}
	sort.Strings(out)
	return out, nil
}
