// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package deezer recognises Deezer track links.
package deezer

import "github.com/onebot-dev/onebot/internal/music"

// HostPatterns are the hosts serving Deezer track pages.
var HostPatterns = []string{"deezer.com", "*.deezer.com"}

// New creates the Deezer adapter over client.
func New(client music.Client) (*music.LinkAdapter, error) {
	return music.NewLinkAdapter(music.KindDeezer, HostPatterns, music.PathID("track"), client)
}
