package publish

const (
	minRingSize     = 2
	maxRingSize     = 10
	defaultHLSSize  = 4
)

// Options configures a Session, mirroring the construction options in
// spec.md §6.
type Options struct {
	// HLSBase is the non-empty filename stem used for generated playlist
	// URIs. A non-empty value enables HLS output.
	HLSBase string
	// HLSListSize bounds the HLS ring, clamped to [2, 10]. Zero means
	// "use the default", which is 4 when HLSBase is set and irrelevant
	// otherwise.
	HLSListSize int
	// BufferListSize bounds the independent buffer ring, clamped to
	// [2, 10]. Nil disables buffering entirely — there is no default,
	// unlike HLSListSize (spec.md §9 Open Questions calls this asymmetry
	// out explicitly as intentional).
	BufferListSize *int
	// OnSegment is invoked with the raw segment bytes after every
	// publication, in addition to any 'segment' event subscribers.
	OnSegment func(data []byte)
}

func (o Options) hlsEnabled() bool {
	return o.HLSBase != ""
}

func (o Options) resolvedHLSListSize() int {
	if !o.hlsEnabled() {
		return 0
	}
	n := o.HLSListSize
	if n == 0 {
		n = defaultHLSSize
	}
	return clampRingSize(n)
}

func (o Options) bufferEnabled() bool {
	return o.BufferListSize != nil
}

func (o Options) resolvedBufferListSize() int {
	if !o.bufferEnabled() {
		return 0
	}
	return clampRingSize(*o.BufferListSize)
}

func clampRingSize(n int) int {
	if n < minRingSize {
		return minRingSize
	}
	if n > maxRingSize {
		return maxRingSize
	}
	return n
}
