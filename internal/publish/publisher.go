package publish

import (
	"log/slog"
	"strconv"
	"time"
)

// publisher implements spec.md §4.4: on every completed segment it times
// the gap since the previous completion, updates the HLS and buffer
// rings, regenerates the M3U8 text, and reports the latest values back to
// the Session for its readonly accessors.
type publisher struct {
	opts Options

	hlsRing    *ring[HLSEntry]
	bufferRing *ring[[]byte]

	playlist string

	lastInstant     time.Time
	haveLastInstant bool
	lastDuration    float64 // -1 sentinel until first segment
	lastTimestampMs int64   // -1 sentinel until first event

	log *slog.Logger
}

func newPublisher(opts Options) *publisher {
	p := &publisher{
		opts:            opts,
		lastDuration:    -1,
		lastTimestampMs: -1,
		log:             slog.With("component", "fmp4-publisher"),
	}
	if n := opts.resolvedHLSListSize(); n > 0 {
		p.hlsRing = newRing[HLSEntry](n)
	}
	if n := opts.resolvedBufferListSize(); n > 0 {
		p.bufferRing = newRing[[]byte](n)
	}
	return p
}

func (p *publisher) reset() {
	if p.hlsRing != nil {
		p.hlsRing = newRing[HLSEntry](p.opts.resolvedHLSListSize())
	}
	if p.bufferRing != nil {
		p.bufferRing = newRing[[]byte](p.opts.resolvedBufferListSize())
	}
	p.playlist = ""
	p.haveLastInstant = false
	p.lastDuration = -1
	p.lastTimestampMs = -1
}

// onInitialized marks t_prev at init-parse completion (spec.md §3: "the
// duration of the very first segment is measured from the moment the
// init blob was parsed") and seeds the base playlist.
func (p *publisher) onInitialized() {
	now := time.Now()
	p.lastInstant = now
	p.haveLastInstant = true
	p.lastTimestampMs = now.UnixMilli()

	if p.opts.hlsEnabled() {
		p.playlist = buildPlaylist(p.opts.HLSBase, nil)
	}
}

// publishedSegment is what a completed segment looks like once the
// publisher has finished with it; Session uses it to update its own
// latest-segment accessor.
type publishedSegment struct {
	Sequence string
	Data     []byte
	Duration float64
}

// onSegment runs spec.md §4.4 steps 1-4 and returns the values needed for
// steps 5-7 (pushed-stream delivery, the per-segment callback, and the
// 'segment' event), which the Session performs since it owns the
// dispatcher and the registered callback.
func (p *publisher) onSegment(seq int, data []byte) publishedSegment {
	now := time.Now()
	var duration float64
	if p.haveLastInstant {
		duration = now.Sub(p.lastInstant).Seconds()
	}
	p.lastInstant = now
	p.haveLastInstant = true
	p.lastTimestampMs = now.UnixMilli()
	p.lastDuration = duration

	sequence := strconv.Itoa(seq)

	if p.opts.hlsEnabled() {
		p.hlsRing.push(HLSEntry{Sequence: sequence, Data: data, Duration: duration})
		p.playlist = buildPlaylist(p.opts.HLSBase, p.hlsRing.snapshot())
	}
	if p.opts.bufferEnabled() {
		p.bufferRing.push(data)
	}

	p.log.Debug("segment published", "sequence", sequence, "duration", duration, "bytes", len(data))

	return publishedSegment{Sequence: sequence, Data: data, Duration: duration}
}

func (p *publisher) m3u8() string {
	if p.playlist == "" {
		return ""
	}
	return p.playlist
}

func (p *publisher) getHlsSegment(seq string) []byte {
	if p.hlsRing == nil {
		return nil
	}
	for _, e := range p.hlsRing.snapshot() {
		if e.Sequence == seq {
			return e.Data
		}
	}
	return nil
}

func (p *publisher) bufferList() [][]byte {
	if p.bufferRing == nil {
		return nil
	}
	items := p.bufferRing.snapshot()
	if len(items) == 0 {
		return nil
	}
	return items
}

// ringStats reports current occupancy and capacity of both rings for the
// metrics collector; a ring that is disabled reports zero capacity.
type ringStats struct {
	HLSLen, HLSCap       int
	BufferLen, BufferCap int
}

func (p *publisher) stats() ringStats {
	var s ringStats
	if p.hlsRing != nil {
		s.HLSLen, s.HLSCap = p.hlsRing.len(), p.hlsRing.cap()
	}
	if p.bufferRing != nil {
		s.BufferLen, s.BufferCap = p.bufferRing.len(), p.bufferRing.cap()
	}
	return s
}

func (p *publisher) bufferListConcat() []byte {
	items := p.bufferList()
	if items == nil {
		return nil
	}
	var total int
	for _, b := range items {
		total += len(b)
	}
	out := make([]byte, 0, total)
	for _, b := range items {
		out = append(out, b...)
	}
	return out
}
