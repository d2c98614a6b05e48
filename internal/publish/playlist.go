package publish

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HLSEntry is one {sequence, segment-bytes, duration} triple held in the
// HLS ring (spec.md §3).
type HLSEntry struct {
	Sequence string
	Data     []byte
	Duration float64
}

// buildPlaylist regenerates the M3U8 text for the given HLS ring contents,
// following the grammar in spec.md §6 exactly: LF line endings,
// TARGETDURATION rounded from the last entry's duration, MEDIA-SEQUENCE
// from the oldest entry still in the ring.
func buildPlaylist(hlsBase string, entries []HLSEntry) string {
	var targetDuration int
	var mediaSequence int64

	if len(entries) > 0 {
		targetDuration = int(math.Round(entries[len(entries)-1].Duration))
		if seq, err := strconv.ParseInt(entries[0].Sequence, 10, 64); err == nil {
			mediaSequence = seq
		}
	}

	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:7\n")
	b.WriteString("#EXT-X-ALLOW-CACHE:NO\n")
	fmt.Fprintf(&b, "#EXT-X-TARGETDURATION:%d\n", targetDuration)
	fmt.Fprintf(&b, "#EXT-X-MEDIA-SEQUENCE:%d\n", mediaSequence)
	fmt.Fprintf(&b, "#EXT-X-MAP:URI=\"init-%s.mp4\"\n", hlsBase)

	for _, e := range entries {
		fmt.Fprintf(&b, "#EXTINF:%.6f,\n", e.Duration)
		fmt.Fprintf(&b, "%s%s.m4s\n", hlsBase, e.Sequence)
	}

	return b.String()
}
