package publish

import (
	"log/slog"
	"sync"

	"github.com/shapedtime/fmp4segmenter/internal/fmp4"
)

// Session is the public façade spec.md §4.5 describes: it owns an
// fmp4.Parser for box/segment reconstruction and a publisher for the HLS
// ring, buffer ring, and playlist text, and serialises access to both so
// that an HTTP delivery layer can read accessors concurrently with an
// ingest goroutine calling Write (spec.md §5 requires only that a single
// instance not be *written* from multiple goroutines; this adds the
// locking an ambient multi-goroutine deployment actually needs).
type Session struct {
	mu sync.Mutex

	opts     Options
	parser   *fmp4.Parser
	pub      *publisher
	dispatch *dispatcher

	latestSegment []byte

	log *slog.Logger
}

// New constructs a Session in its post-construction state (S_FTYP).
func New(opts Options) *Session {
	s := &Session{
		opts:     opts,
		parser:   fmp4.NewParser(),
		pub:      newPublisher(opts),
		dispatch: newDispatcher(),
		log:      slog.With("component", "fmp4-session"),
	}

	s.parser.OnInitialized = func(initBlob []byte, mime string) {
		s.pub.onInitialized()
		if s.dispatch.hasListeners(EventInitialized) {
			s.dispatch.emit(Event{Kind: EventInitialized})
		}
	}

	s.parser.OnSegment = func(seq int, data []byte) {
		s.pub.onSegment(seq, data)
		s.latestSegment = data

		if s.opts.OnSegment != nil {
			s.opts.OnSegment(data)
		}

		// Step 5 (push to any pushed-stream subscriber) and step 7 (fire
		// the 'segment' event) share one dispatch: a Subscription is
		// just another EventSegment listener (see subscription.go).
		if s.dispatch.hasListeners(EventSegment) {
			s.dispatch.emit(Event{Kind: EventSegment, Segment: data})
		}
	}

	return s
}

// Write feeds chunk to the parser. Any fatal error also fires the 'error'
// event before being returned.
func (s *Session) Write(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if perr := s.parser.Write(chunk); perr != nil {
		if s.dispatch.hasListeners(EventError) {
			s.dispatch.emit(Event{Kind: EventError, Err: perr})
		}
		return perr
	}
	return nil
}

// Flush resets all state to post-construction; options are retained.
func (s *Session) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.parser.Flush()
	s.pub.reset()
	s.latestSegment = nil
}

// Mime returns the latest MIME string, or "" if unset.
func (s *Session) Mime() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser.Mime()
}

// Initialization returns the init blob (ftyp‖moov), or nil if unset.
func (s *Session) Initialization() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser.Initialization()
}

// Segment returns the bytes of the most recently published segment, or
// nil.
func (s *Session) Segment() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestSegment
}

// Timestamp returns the wall-clock millisecond instant of the latest
// event (init or segment), or -1 before either has happened.
func (s *Session) Timestamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pub.lastTimestampMs
}

// Duration returns the duration in seconds of the latest segment, or -1.
func (s *Session) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pub.lastDuration
}

// Sequence returns the most recently assigned sequence number, or -1.
func (s *Session) Sequence() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser.Sequence()
}

// M3U8 returns the current playlist text, or "" if HLS is disabled or no
// init has been parsed yet.
func (s *Session) M3U8() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pub.m3u8()
}

// BufferList returns a snapshot of the buffer ring, or nil if empty or
// disabled.
func (s *Session) BufferList() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pub.bufferList()
}

// BufferListConcat returns the concatenation of the buffer ring, or nil.
func (s *Session) BufferListConcat() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pub.bufferListConcat()
}

// BufferConcat returns Initialization()‖BufferListConcat(), or nil if
// either is missing.
func (s *Session) BufferConcat() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	init := s.parser.Initialization()
	tail := s.pub.bufferListConcat()
	if init == nil || tail == nil {
		return nil
	}
	out := make([]byte, 0, len(init)+len(tail))
	out = append(out, init...)
	out = append(out, tail...)
	return out
}

// GetHlsSegment returns the segment bytes for the given sequence string,
// or nil if it is not currently held in the HLS ring.
func (s *Session) GetHlsSegment(seq string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pub.getHlsSegment(seq)
}

// Subscribe registers fn for the given event kind and returns a function
// that unregisters it.
func (s *Session) Subscribe(kind EventKind, fn func(Event)) (unsubscribe func()) {
	return s.dispatch.subscribe(kind, fn)
}

// RingStats reports current occupancy and capacity of the HLS and buffer
// rings, for lazy collection by an external metrics collector.
func (s *Session) RingStats() (hlsLen, hlsCap, bufferLen, bufferCap int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.pub.stats()
	return st.HLSLen, st.HLSCap, st.BufferLen, st.BufferCap
}

// NewSubscription returns a pull-iterator handle on the pushed segment
// stream (spec.md §9 Design Notes). bufferSize bounds how many segments
// may queue before a slow consumer starts missing them.
func (s *Session) NewSubscription(bufferSize int) *Subscription {
	return newSubscription(s.dispatch, bufferSize)
}
