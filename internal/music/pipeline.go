// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package music

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/onebot-dev/onebot/internal/fanout"
	"github.com/onebot-dev/onebot/internal/gateway"
	"github.com/onebot-dev/onebot/pkg/errutil"
)

var tracer = otel.Tracer("onebot/music")

// DefaultAdapterTimeout bounds each adapter call, the primary lookup and
// every secondary search alike.
const DefaultAdapterTimeout = 10 * time.Second

var linkPattern = regexp.MustCompile(`https?://\S+`)

// FindLink returns the first http(s) link in text.
func FindLink(text string) (string, bool) {
	link := linkPattern.FindString(text)
	return link, link != ""
}

// Pipeline turns a detected link into a rendered composite message.
type Pipeline struct {
	adapters []Adapter
	gw       gateway.Gateway
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithAdapterTimeout bounds each secondary search. Zero disables the bound.
func WithAdapterTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.timeout = d
	}
}

// WithLogger sets the logger. Adapter diagnostics carry an adapter attribute.
func WithLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithClock sets the embed timestamp source.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NewPipeline creates a pipeline over adapters in registration order.
func NewPipeline(adapters []Adapter, gw gateway.Gateway, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		adapters: adapters,
		gw:       gw,
		timeout:  DefaultAdapterTimeout,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Adapters returns the adapters in registration order.
func (p *Pipeline) Adapters() []Adapter {
	return p.adapters
}

// HandleMessage runs the pipeline for the first link in an inbound message.
// Messages from bots and messages without a recognised link are ignored.
func (p *Pipeline) HandleMessage(ctx context.Context, msg gateway.Message) {
	if msg.AuthorBot {
		return
	}
	link, ok := FindLink(msg.Content)
	if !ok {
		return
	}
	// Failures are already reported by Process; nothing reaches the chat.
	_, _ = p.Process(ctx, msg.ChannelID, link) //nolint:errcheck // logged in Process
}

// Primary returns the first adapter, in registration order, that claims link.
func (p *Pipeline) Primary(link string) (Adapter, bool) {
	for _, a := range p.adapters {
		if a.ShouldProcess(link) {
			return a, true
		}
	}
	return nil, false
}

// Process resolves link and posts the composite to channelID. It reports
// whether any adapter claimed the link. When none does nothing is invoked
// and nothing is sent. A primary failure is logged against that adapter
// and returned; nothing is sent in that case either.
func (p *Pipeline) Process(ctx context.Context, channelID, link string) (handled bool, err error) {
	primary, ok := p.Primary(link)
	if !ok {
		return false, nil
	}

	start := time.Now()
	ctx, span := tracer.Start(ctx, "music.pipeline",
		trace.WithAttributes(
			attribute.String("music.primary", primary.Name()),
			attribute.String("channel.id", channelID),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		recordPipeline(time.Since(start))
	}()

	alog := p.logger.With("adapter", primary.Name())

	info := fanout.Run(ctx, []Adapter{primary}, fanout.Options{Timeout: p.timeout},
		func(ctx context.Context, a Adapter) (Song, error) {
			return a.URLInfo(ctx, link)
		})
	song, err := info[0].Value, info[0].Err
	if err != nil {
		recordAdapterCall(primary.Name(), "primary", OutcomeError.String())
		errutil.LogErrorContext(ctx, alog, "link resolution failed", err)
		return true, err
	}
	song.Kind = primary.Kind()
	if song.URL == "" {
		song.URL = link
	}
	recordAdapterCall(primary.Name(), "primary", OutcomeFound.String())

	ref, err := p.gw.Send(ctx, channelID, gateway.Outgoing{Embeds: []gateway.Embed{ProvisionalEmbed(song)}})
	if err != nil {
		p.logger.WarnContext(ctx, "sending provisional song embed failed", "channel_id", channelID, "error", err)
		return true, err
	}

	composite := Merge(song, p.search(ctx, primary, song))

	final := gateway.Outgoing{Embeds: []gateway.Embed{FinalEmbed(composite, p.now())}}
	if err := p.gw.Edit(ctx, ref, final); err != nil {
		p.logger.WarnContext(ctx, "editing song embed failed", "channel_id", channelID, "error", err)
		return true, err
	}
	return true, nil
}

// search queries every adapter except primary concurrently and returns one
// Result per adapter in registration order, with primary's own entry in
// its position.
func (p *Pipeline) search(ctx context.Context, primary Adapter, song Song) []Result {
	query := song.Title + " " + song.Artist

	var secondaries []Adapter
	var slots []int
	results := make([]Result, len(p.adapters))
	for i, a := range p.adapters {
		if a == primary {
			results[i] = Result{Adapter: a.Name(), Kind: a.Kind(), Outcome: OutcomeFound, Song: song}
			continue
		}
		secondaries = append(secondaries, a)
		slots = append(slots, i)
	}

	found := fanout.Run(ctx, secondaries, fanout.Options{Timeout: p.timeout},
		func(ctx context.Context, a Adapter) ([]Song, error) {
			return a.Search(ctx, query)
		})

	for i, a := range secondaries {
		r := Result{Adapter: a.Name(), Kind: a.Kind()}
		switch res := found[i]; {
		case res.Err != nil:
			r.Outcome = OutcomeError
			r.Error = errorText(res.Err)
			errutil.LogErrorContext(ctx, p.logger.With("adapter", a.Name()), "song search failed", res.Err)
		case len(res.Value) == 0 || res.Value[0].URL == "":
			// a hit with no link cannot be rendered
			r.Outcome = OutcomeNoResult
		default:
			r.Outcome = OutcomeFound
			r.Song = res.Value[0]
			r.Song.Kind = a.Kind()
		}
		p.logger.DebugContext(ctx, "song search finished", "adapter", a.Name(), "results", len(found[i].Value))
		recordAdapterCall(a.Name(), "search", r.Outcome.String())
		results[slots[i]] = r
	}
	return results
}

// errorText is the message shown inline for a failed search.
func errorText(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Timed out"
	}
	return err.Error()
}
