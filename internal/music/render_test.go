// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package music_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onebot-dev/onebot/internal/gateway"
	"github.com/onebot-dev/onebot/internal/music"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", music.FormatDuration(0))
	assert.Equal(t, "3:05", music.FormatDuration(185))
	assert.Equal(t, "61:40", music.FormatDuration(3700))
}

func TestProvisionalEmbed(t *testing.T) {
	e := music.ProvisionalEmbed(music.Song{Title: "X", Artist: "Y"})
	assert.Equal(t, gateway.ColorYellow, e.Color)
	assert.Equal(t, "X", e.Title)
	assert.Equal(t, "Y", e.Author)
	assert.Equal(t, music.LoadingText, e.Description)
}

func TestFinalEmbed(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	c := music.Composite{
		Title: "X", Artist: "Y",
		Results: []music.Result{
			{Adapter: "Spotify", Outcome: music.OutcomeFound, Song: music.Song{URL: "https://open.spotify.com/track/1"}},
			{Adapter: "YouTube", Outcome: music.OutcomeNoResult},
			{Adapter: "Deezer", Outcome: music.OutcomeError, Error: "rate limited"},
		},
		DurationSeconds: 200,
		Thumbnail:       "https://img/a.jpg",
		ArtistIcon:      "https://img/b.jpg",
		Genres:          []string{"rock", "pop"},
	}

	e := music.FinalEmbed(c, now)
	assert.Equal(t, gateway.ColorGreen, e.Color)
	assert.Equal(t, now, e.Timestamp)
	assert.Equal(t, "https://img/a.jpg", e.Thumbnail)
	assert.Equal(t, "https://img/b.jpg", e.AuthorIcon)

	lines := strings.Split(strings.TrimSpace(e.Description), "\n")
	assert.Equal(t, []string{
		"[Spotify](https://open.spotify.com/track/1)",
		"**YouTube**: No results found",
		"**Deezer**: rate limited",
	}, lines)

	require.Len(t, e.Fields, 2)
	assert.Equal(t, gateway.Field{Name: "Genres", Value: "rock, pop", Inline: true}, e.Fields[0])
	assert.Equal(t, gateway.Field{Name: "Duration", Value: "3:20", Inline: true}, e.Fields[1])
}

func TestFinalEmbed_NoGenresField(t *testing.T) {
	e := music.FinalEmbed(music.Composite{Title: "X"}, time.Now())
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "Duration", e.Fields[0].Name)
	assert.NotContains(t, e.Description, "```ansi")
}

func TestFeatureTable(t *testing.T) {
	table := music.FeatureTable(music.AudioFeatures{
		Acousticness:     0.1,
		Danceability:     0.5,
		Energy:           0.9,
		Instrumentalness: 0,
		Tempo:            168,
		Loudness:         -6.9,
		Popularity:       25,
	})

	assert.True(t, strings.HasPrefix(table, "```ansi\n"))
	assert.True(t, strings.HasSuffix(table, "```"))
	for _, label := range []string{"Features", "Acousticness", "Danceability", "Energy", "Instrumentalness", "Tempo", "Loudness", "Popularity"} {
		assert.Contains(t, table, label)
	}

	// low values blue, middle white, high red
	assert.Contains(t, table, "\x1b[34m10.0 ")
	assert.Contains(t, table, "\x1b[37m50.0 ")
	assert.Contains(t, table, "\x1b[31m90.0 ")
	assert.Contains(t, table, "\x1b[31m168.0")
	assert.Contains(t, table, "\x1b[34m-6.9 ")
	assert.Contains(t, table, "BPM")
	assert.Contains(t, table, "dB")
}
