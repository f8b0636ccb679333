// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package spotify recognises Spotify track links.
package spotify

import "github.com/onebot-dev/onebot/internal/music"

// HostPatterns are the hosts serving Spotify track pages.
var HostPatterns = []string{"open.spotify.com", "play.spotify.com"}

// New creates the Spotify adapter over client.
func New(client music.Client) (*music.LinkAdapter, error) {
	return music.NewLinkAdapter(music.KindSpotify, HostPatterns, music.PathID("track"), client)
}
