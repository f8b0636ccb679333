// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package music

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/onebot-dev/onebot/internal/gateway"
)

// LoadingText is the description of the provisional embed.
const LoadingText = "Loading song information..."

// ProvisionalEmbed is sent as soon as the primary adapter has resolved a link.
func ProvisionalEmbed(song Song) gateway.Embed {
	return gateway.Embed{
		Author:      song.Artist,
		Title:       song.Title,
		Color:       gateway.ColorYellow,
		Description: LoadingText,
	}
}

// FinalEmbed renders the composite record. Every adapter gets a line: a
// link when it found the song, "No results found" when its search came back
// empty, and its error message when it failed.
func FinalEmbed(c Composite, now time.Time) gateway.Embed {
	var desc strings.Builder
	for _, r := range c.Results {
		switch r.Outcome {
		case OutcomeFound:
			fmt.Fprintf(&desc, "[%s](%s)\n", r.Adapter, r.Song.URL)
		case OutcomeNoResult:
			fmt.Fprintf(&desc, "**%s**: No results found\n", r.Adapter)
		case OutcomeError:
			fmt.Fprintf(&desc, "**%s**: %s\n", r.Adapter, r.Error)
		}
	}
	if c.Features != nil {
		desc.WriteString("\n")
		desc.WriteString(FeatureTable(*c.Features))
	}

	e := gateway.Embed{
		Author:      c.Artist,
		AuthorIcon:  c.ArtistIcon,
		Title:       c.Title,
		Color:       gateway.ColorGreen,
		Description: desc.String(),
		Thumbnail:   c.Thumbnail,
		Timestamp:   now,
	}
	if len(c.Genres) > 0 {
		e.Fields = append(e.Fields, gateway.Field{Name: "Genres", Value: strings.Join(c.Genres, ", "), Inline: true})
	}
	e.Fields = append(e.Fields, gateway.Field{Name: "Duration", Value: FormatDuration(c.DurationSeconds), Inline: true})
	return e
}

// FormatDuration renders seconds as m:ss.
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ansi returns a color that renders even when stdout is not a terminal;
// the output is embedded in chat messages, not printed.
func ansi(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

var (
	headerColor = ansi(color.FgWhite, color.Bold)
	titleColor  = ansi(color.FgHiGreen)
	unitColor   = ansi(color.FgHiBlack)
	lowColor    = ansi(color.FgBlue)
	midColor    = ansi(color.FgWhite)
	highColor   = ansi(color.FgRed)
)

// valueColor buckets a 0-100 style value: below 33 blue, below 66 white,
// otherwise red.
func valueColor(v float64) *color.Color {
	switch {
	case v < 33:
		return lowColor
	case v < 66:
		return midColor
	default:
		return highColor
	}
}

func tableRow(title string, value float64, unit string) string {
	return "\n" +
		titleColor.Sprint(fmt.Sprintf("%-20s", title)) + " " +
		valueColor(value).Sprint(fmt.Sprintf("%-5.1f", value)) + " " +
		unitColor.Sprint(unit)
}

// FeatureTable renders audio features as an ANSI code block.
func FeatureTable(f AudioFeatures) string {
	var b strings.Builder
	b.WriteString("```ansi\n")
	b.WriteString(headerColor.Sprint("Features"))
	b.WriteString("\n")
	b.WriteString(tableRow("Acousticness", f.Acousticness*100, "%"))
	b.WriteString(tableRow("Danceability", f.Danceability*100, "%"))
	b.WriteString(tableRow("Energy", f.Energy*100, "%"))
	b.WriteString(tableRow("Instrumentalness", f.Instrumentalness*100, "%"))
	b.WriteString("\n")
	b.WriteString(tableRow("Tempo", f.Tempo, "BPM"))
	b.WriteString(tableRow("Loudness", f.Loudness, "dB"))
	b.WriteString(tableRow("Popularity", f.Popularity, "%"))
	b.WriteString("```")
	return b.String()
}
