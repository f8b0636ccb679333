// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package music_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onebot-dev/onebot/internal/music"
	"github.com/onebot-dev/onebot/internal/music/deezer"
	"github.com/onebot-dev/onebot/internal/music/spotify"
	"github.com/onebot-dev/onebot/internal/music/youtube"
	"github.com/onebot-dev/onebot/pkg/errutil"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Lookup(ctx context.Context, id string) (music.Song, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(music.Song), args.Error(1)
}

func (m *mockClient) Search(ctx context.Context, query string) ([]music.Song, error) {
	args := m.Called(ctx, query)
	songs, _ := args.Get(0).([]music.Song)
	return songs, args.Error(1)
}

func TestAdapters_ShouldProcess(t *testing.T) {
	sp, err := spotify.New(&mockClient{})
	require.NoError(t, err)
	yt, err := youtube.New(&mockClient{})
	require.NoError(t, err)
	dz, err := deezer.New(&mockClient{})
	require.NoError(t, err)

	tests := []struct {
		link    string
		adapter music.Adapter
		want    bool
	}{
		{"https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT", sp, true},
		{"https://open.spotify.com/intl-de/track/4cOdK2wGLETKBW3PvgPWqT?si=x", sp, true},
		{"https://open.spotify.com/album/1", sp, false},
		{"https://spotify.com.evil.example/track/1", sp, false},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", yt, true},
		{"https://music.youtube.com/watch?v=dQw4w9WgXcQ&list=x", yt, true},
		{"https://m.youtube.com/shorts/abc", yt, true},
		{"https://youtu.be/dQw4w9WgXcQ", yt, true},
		{"https://www.youtube.com/channel/abc", yt, false},
		{"https://a.b.youtube.com/watch?v=x", yt, false},
		{"https://www.deezer.com/fr/track/3135556", dz, true},
		{"https://deezer.com/track/3135556", dz, true},
		{"https://www.deezer.com/playlist/1", dz, false},
		{"ftp://open.spotify.com/track/1", sp, false},
		{"not a url", yt, false},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.adapter.ShouldProcess(tt.link))
		})
	}
}

func TestLinkAdapter_URLInfo(t *testing.T) {
	client := &mockClient{}
	client.On("Lookup", mock.Anything, "dQw4w9WgXcQ").
		Return(music.Song{Title: "Never Gonna Give You Up", Artist: "Rick Astley"}, nil)

	yt, err := youtube.New(client)
	require.NoError(t, err)

	song, err := yt.URLInfo(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, music.KindYouTube, song.Kind)
	assert.Equal(t, "Rick Astley", song.Artist)
	client.AssertExpectations(t)

	_, err = yt.URLInfo(context.Background(), "https://open.spotify.com/track/1")
	errutil.AssertErrorCode(t, err, music.CodeAdapterRejected)
}

func TestLinkAdapter_URLInfoClientError(t *testing.T) {
	client := &mockClient{}
	client.On("Lookup", mock.Anything, "42").Return(music.Song{}, errors.New("404"))

	dz, err := deezer.New(client)
	require.NoError(t, err)

	_, err = dz.URLInfo(context.Background(), "https://www.deezer.com/track/42")
	errutil.AssertErrorCode(t, err, music.CodeAdapterRejected)
	errutil.AssertErrorContext(t, err, "adapter", "Deezer")
}

func TestLinkAdapter_Search(t *testing.T) {
	client := &mockClient{}
	client.On("Search", mock.Anything, "X Y").Return([]music.Song{{Title: "X"}}, nil).Once()
	client.On("Search", mock.Anything, "bad").Return(nil, errors.New("quota")).Once()

	sp, err := spotify.New(client)
	require.NoError(t, err)

	songs, err := sp.Search(context.Background(), "X Y")
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, music.KindSpotify, songs[0].Kind)

	_, err = sp.Search(context.Background(), "bad")
	errutil.AssertErrorCode(t, err, music.CodeAdapterFailed)
}

func TestNewLinkAdapter_BadPattern(t *testing.T) {
	_, err := music.NewLinkAdapter(music.KindDeezer, []string{"["}, music.PathID("track"), &mockClient{})
	assert.Error(t, err)
}
