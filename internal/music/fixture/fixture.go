// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package fixture serves music metadata from a YAML catalog. It stands in
// for the real backend clients in local runs and tests.
package fixture

import (
	"context"
	"os"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/onebot-dev/onebot/internal/music"
)

// Track is one catalog entry.
type Track struct {
	ID     string `yaml:"id"`
	Title  string `yaml:"title"`
	Artist string `yaml:"artist"`
	URL    string `yaml:"url"`

	DurationMs      int                  `yaml:"duration_ms,omitempty"`
	DurationSeconds int                  `yaml:"duration_seconds,omitempty"`
	AlbumImageURL   string               `yaml:"album_image_url,omitempty"`
	ArtistImageURL  string               `yaml:"artist_image_url,omitempty"`
	CoverURL        string               `yaml:"cover_url,omitempty"`
	Genres          []string             `yaml:"genres,omitempty"`
	Features        *music.AudioFeatures `yaml:"features,omitempty"`
}

// Catalog is the decoded fixture file.
//
//	spotify:
//	  - id: 4cOdK2wGLETKBW3PvgPWqT
//	    title: Never Gonna Give You Up
//	    artist: Rick Astley
//	    url: https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT
//	    duration_ms: 213573
//	youtube: [...]
//	deezer: [...]
//	failures:
//	  deezer: rate limited
type Catalog struct {
	Spotify  []Track           `yaml:"spotify"`
	YouTube  []Track           `yaml:"youtube"`
	Deezer   []Track           `yaml:"deezer"`
	Failures map[string]string `yaml:"failures,omitempty"`
}

// Parse decodes a catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, oops.In("fixture").Wrapf(err, "decode music fixtures")
	}
	return &c, nil
}

// Load reads a catalog from path. An empty path yields an empty catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return &Catalog{}, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
	if err != nil {
		return nil, oops.In("fixture").With("path", path).Wrapf(err, "read music fixtures")
	}
	return Parse(data)
}

// Client returns a music.Client over the tracks of kind.
func (c *Catalog) Client(kind music.Kind) music.Client {
	var tracks []Track
	switch kind {
	case music.KindSpotify:
		tracks = c.Spotify
	case music.KindYouTube:
		tracks = c.YouTube
	case music.KindDeezer:
		tracks = c.Deezer
	}
	return &client{kind: kind, tracks: tracks, failure: c.Failures[strings.ToLower(kind.String())]}
}

type client struct {
	kind    music.Kind
	tracks  []Track
	failure string
}

func (c *client) Lookup(_ context.Context, id string) (music.Song, error) {
	if c.failure != "" {
		return music.Song{}, oops.In("fixture").With("adapter", c.kind.String()).Errorf("%s", c.failure)
	}
	for _, t := range c.tracks {
		if t.ID == id {
			return c.song(t), nil
		}
	}
	return music.Song{}, oops.In("fixture").With("adapter", c.kind.String()).With("id", id).Errorf("track not found")
}

// Search matches tracks whose title and artist both occur in query,
// ignoring case.
func (c *client) Search(ctx context.Context, query string) ([]music.Song, error) {
	if c.failure != "" {
		return nil, oops.In("fixture").With("adapter", c.kind.String()).Errorf("%s", c.failure)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var out []music.Song
	for _, t := range c.tracks {
		if strings.Contains(q, strings.ToLower(t.Title)) && strings.Contains(q, strings.ToLower(t.Artist)) {
			out = append(out, c.song(t))
		}
	}
	return out, nil
}

func (c *client) song(t Track) music.Song {
	s := music.Song{Kind: c.kind, Title: t.Title, Artist: t.Artist, URL: t.URL}
	switch c.kind {
	case music.KindSpotify:
		s.Spotify = &music.SpotifyExtras{
			DurationMs:    t.DurationMs,
			AlbumImageURL: t.AlbumImageURL,
			Genres:        t.Genres,
			Features:      t.Features,
		}
	case music.KindYouTube:
		s.YouTube = &music.YouTubeExtras{
			DurationSeconds: t.DurationSeconds,
			AlbumImageURL:   t.AlbumImageURL,
			ArtistImageURL:  t.ArtistImageURL,
		}
	case music.KindDeezer:
		s.Deezer = &music.DeezerExtras{
			DurationSeconds: t.DurationSeconds,
			CoverURL:        t.CoverURL,
		}
	}
	return s
}
