// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package music

import "math"

// Outcome classifies one adapter's contribution.
type Outcome int

// Adapter outcomes.
const (
	OutcomeFound Outcome = iota
	OutcomeNoResult
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNoResult:
		return "no_result"
	default:
		return "error"
	}
}

// Result is one adapter's entry in a Composite.
type Result struct {
	Adapter string
	Kind    Kind
	Outcome Outcome
	Song    Song   // set when Outcome is OutcomeFound
	Error   string // set when Outcome is OutcomeError
}

// Composite is the merged view of a song across adapters.
type Composite struct {
	Title  string
	Artist string

	// Results holds one entry per adapter in registration order, the
	// primary included.
	Results []Result

	DurationSeconds int
	Thumbnail       string
	ArtistIcon      string
	Genres          []string
	Features        *AudioFeatures
}

// Merge builds the composite record. Identity comes from primary. Every
// other field is chosen by backend kind with a fixed priority, so the
// completion order of the secondary searches never matters:
//
//	duration    Spotify ms (rounded to seconds), YouTube, Deezer, else 0
//	thumbnail   Spotify album, YouTube album, Deezer cover
//	artist icon YouTube
//	genres      Spotify
//	features    Spotify
func Merge(primary Song, results []Result) Composite {
	c := Composite{
		Title:   primary.Title,
		Artist:  primary.Artist,
		Results: results,
	}

	byKind := map[Kind]Song{primary.Kind: primary}
	for _, r := range results {
		if r.Outcome != OutcomeFound {
			continue
		}
		if _, seen := byKind[r.Kind]; !seen {
			byKind[r.Kind] = r.Song
		}
	}

	sp := byKind[KindSpotify].Spotify
	yt := byKind[KindYouTube].YouTube
	dz := byKind[KindDeezer].Deezer

	switch {
	case sp != nil && sp.DurationMs > 0:
		c.DurationSeconds = int(math.Round(float64(sp.DurationMs) / 1000))
	case yt != nil && yt.DurationSeconds > 0:
		c.DurationSeconds = yt.DurationSeconds
	case dz != nil && dz.DurationSeconds > 0:
		c.DurationSeconds = dz.DurationSeconds
	}

	switch {
	case sp != nil && sp.AlbumImageURL != "":
		c.Thumbnail = sp.AlbumImageURL
	case yt != nil && yt.AlbumImageURL != "":
		c.Thumbnail = yt.AlbumImageURL
	case dz != nil && dz.CoverURL != "":
		c.Thumbnail = dz.CoverURL
	}

	if yt != nil {
		c.ArtistIcon = yt.ArtistImageURL
	}
	if sp != nil {
		c.Genres = sp.Genres
		c.Features = sp.Features
	}
	return c
}
