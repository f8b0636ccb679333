// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package music

import (
	"context"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Adapter resolves and searches one music backend.
type Adapter interface {
	// Name is the display name shown in rendered output.
	Name() string
	Kind() Kind
	// ShouldProcess reports whether link belongs to this backend.
	ShouldProcess(link string) bool
	// URLInfo resolves link to full metadata.
	URLInfo(ctx context.Context, link string) (Song, error)
	// Search returns candidate matches; an empty result is not an error.
	Search(ctx context.Context, query string) ([]Song, error)
}

// Client is the network side of a backend. Real HTTP clients live outside
// this repository; fixture.Catalog provides one for local runs and tests.
type Client interface {
	Lookup(ctx context.Context, id string) (Song, error)
	Search(ctx context.Context, query string) ([]Song, error)
}

// IDFunc extracts the backend's track id from a parsed link.
type IDFunc func(u *url.URL) (id string, ok bool)

// LinkAdapter is an Adapter that recognises links by host glob and path.
type LinkAdapter struct {
	kind   Kind
	hosts  []glob.Glob
	id     IDFunc
	client Client
}

// Compile-time interface check.
var _ Adapter = (*LinkAdapter)(nil)

// NewLinkAdapter builds an adapter for kind. hostPatterns are gobwas/glob
// patterns with '.' as separator, so "*.youtube.com" matches one label.
func NewLinkAdapter(kind Kind, hostPatterns []string, id IDFunc, client Client) (*LinkAdapter, error) {
	a := &LinkAdapter{kind: kind, id: id, client: client}
	for _, p := range hostPatterns {
		g, err := glob.Compile(p, '.')
		if err != nil {
			return nil, oops.In("music").With("adapter", kind.String()).With("pattern", p).Wrapf(err, "compile host pattern")
		}
		a.hosts = append(a.hosts, g)
	}
	return a, nil
}

// Name implements Adapter.
func (a *LinkAdapter) Name() string { return a.kind.String() }

// Kind implements Adapter.
func (a *LinkAdapter) Kind() Kind { return a.kind }

// ShouldProcess implements Adapter.
func (a *LinkAdapter) ShouldProcess(link string) bool {
	_, ok := a.match(link)
	return ok
}

func (a *LinkAdapter) match(link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	for _, g := range a.hosts {
		if g.Match(host) {
			return a.id(u)
		}
	}
	return "", false
}

// URLInfo implements Adapter.
func (a *LinkAdapter) URLInfo(ctx context.Context, link string) (Song, error) {
	id, ok := a.match(link)
	if !ok {
		return Song{}, ErrAdapterRejected(a.Name(), link, nil)
	}
	song, err := a.client.Lookup(ctx, id)
	if err != nil {
		return Song{}, ErrAdapterRejected(a.Name(), link, err)
	}
	song.Kind = a.kind
	return song, nil
}

// Search implements Adapter.
func (a *LinkAdapter) Search(ctx context.Context, query string) ([]Song, error) {
	songs, err := a.client.Search(ctx, query)
	if err != nil {
		return nil, ErrAdapterFailed(a.Name(), err)
	}
	for i := range songs {
		songs[i].Kind = a.kind
	}
	return songs, nil
}

// PathID returns an IDFunc that takes the path segment following marker,
// skipping an optional locale prefix such as "/intl-de" or "/fr".
func PathID(marker string) IDFunc {
	return func(u *url.URL) (string, bool) {
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := 0; i+1 < len(parts); i++ {
			if parts[i] == marker && parts[i+1] != "" {
				return parts[i+1], true
			}
		}
		return "", false
	}
}
