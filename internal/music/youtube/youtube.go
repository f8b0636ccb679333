// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package youtube recognises YouTube and YouTube Music video links.
package youtube

import (
	"net/url"
	"strings"

	"github.com/onebot-dev/onebot/internal/music"
)

// HostPatterns are the hosts serving YouTube videos.
var HostPatterns = []string{"youtube.com", "*.youtube.com", "youtu.be"}

// New creates the YouTube adapter over client.
func New(client music.Client) (*music.LinkAdapter, error) {
	return music.NewLinkAdapter(music.KindYouTube, HostPatterns, VideoID, client)
}

// VideoID extracts the video id from watch, shorts, and youtu.be links.
func VideoID(u *url.URL) (string, bool) {
	if strings.EqualFold(u.Hostname(), "youtu.be") {
		id := strings.Trim(u.Path, "/")
		return id, id != "" && !strings.Contains(id, "/")
	}
	if strings.TrimSuffix(u.Path, "/") == "/watch" {
		id := u.Query().Get("v")
		return id, id != ""
	}
	return music.PathID("shorts")(u)
}
