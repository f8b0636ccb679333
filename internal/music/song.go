// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package music resolves shared music links through one primary adapter,
// corroborates them across the other adapters concurrently, and merges the
// answers into a single composite record.
package music

// Kind identifies an adapter's backend. Merge precedence is expressed in
// terms of kinds, never adapter display names.
type Kind int

// Supported backends, in default registration order.
const (
	KindUnknown Kind = iota
	KindSpotify
	KindYouTube
	KindDeezer
)

func (k Kind) String() string {
	switch k {
	case KindSpotify:
		return "Spotify"
	case KindYouTube:
		return "YouTube"
	case KindDeezer:
		return "Deezer"
	default:
		return "Unknown"
	}
}

// Song is one backend's view of a track. Exactly one of the extras is set,
// matching Kind, when the backend supplies more than identity fields.
type Song struct {
	Kind   Kind   `json:"kind"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	URL    string `json:"url"`

	Spotify *SpotifyExtras `json:"spotify,omitempty"`
	YouTube *YouTubeExtras `json:"youtube,omitempty"`
	Deezer  *DeezerExtras  `json:"deezer,omitempty"`
}

// SpotifyExtras are the fields only Spotify provides.
type SpotifyExtras struct {
	DurationMs    int            `json:"duration_ms"`
	AlbumImageURL string         `json:"album_image_url,omitempty"`
	Genres        []string       `json:"genres,omitempty"`
	Features      *AudioFeatures `json:"features,omitempty"`
}

// AudioFeatures are Spotify's track analysis values. The ratio fields are
// in [0,1]; Popularity is in [0,100].
type AudioFeatures struct {
	Acousticness     float64 `json:"acousticness" yaml:"acousticness"`
	Danceability     float64 `json:"danceability" yaml:"danceability"`
	Energy           float64 `json:"energy" yaml:"energy"`
	Instrumentalness float64 `json:"instrumentalness" yaml:"instrumentalness"`
	Tempo            float64 `json:"tempo" yaml:"tempo"`
	Loudness         float64 `json:"loudness" yaml:"loudness"`
	Popularity       float64 `json:"popularity" yaml:"popularity"`
}

// YouTubeExtras are the fields only YouTube provides.
type YouTubeExtras struct {
	DurationSeconds int    `json:"duration_seconds"`
	AlbumImageURL   string `json:"album_image_url,omitempty"`
	ArtistImageURL  string `json:"artist_image_url,omitempty"`
}

// DeezerExtras are the fields only Deezer provides.
type DeezerExtras struct {
	DurationSeconds int    `json:"duration_seconds"`
	CoverURL        string `json:"cover_url,omitempty"`
}
