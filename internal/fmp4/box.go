package fmp4

import "encoding/binary"

// boxHeaderSize is the size of an ISO/BMFF box header: a 32-bit big-endian
// length followed by a 4-character ASCII type. This package never deals
// with the 64-bit largesize extension — spec.md §6 notes the target
// encoder doesn't produce it.
const boxHeaderSize = 8

type feedOutcome int

const (
	feedIncomplete feedOutcome = iota
	feedComplete
	feedMismatch
	feedOversized
)

// boxAccumulator reads an ISO/BMFF box header (4-byte length, 4-byte type)
// of a single expected type from byte fragments that may arrive across
// several writes, and reports whether a complete box has been assembled.
//
// It never copies on the fast path where a box arrives whole in one feed;
// once fragments start accumulating across calls it owns a growing buffer,
// which is unavoidable since the caller's chunk is not retained past the
// call that delivered it.
type boxAccumulator struct {
	data     []byte
	declared uint64 // 0 until the header has fully arrived
}

func (a *boxAccumulator) reset() {
	a.data = nil
	a.declared = 0
}

// feed appends chunk to the accumulator and reports the box status.
//
//   - feedIncomplete: header or body hasn't fully arrived; call again
//     with more data later. box/rest are nil.
//   - feedComplete: box holds exactly one full box (header included);
//     rest holds whatever followed it in the fed bytes.
//   - feedMismatch: the 4-character type doesn't match wantType, or the
//     declared length is smaller than a bare header.
//   - feedOversized: ceiling is non-zero and the declared length exceeds
//     it. Reserved for box types that are "expected small" (spec.md §4.2)
//     and therefore have no legitimate reason to declare a huge length;
//     pass ceiling=0 to disable the check for types allowed to be large.
func (a *boxAccumulator) feed(chunk []byte, wantType string, ceiling uint64) (outcome feedOutcome, box, rest []byte) {
	// Nothing buffered yet: inspect the caller's chunk in place and copy
	// it only if the box turns out to be incomplete.
	buf := chunk
	if len(a.data) > 0 {
		a.data = append(a.data, chunk...)
		buf = a.data
	}

	if a.declared == 0 {
		if len(buf) < boxHeaderSize {
			if len(a.data) == 0 {
				a.data = append([]byte(nil), buf...)
			}
			return feedIncomplete, nil, nil
		}
		if string(buf[4:8]) != wantType {
			return feedMismatch, nil, nil
		}
		size := uint64(binary.BigEndian.Uint32(buf[0:4]))
		if size < boxHeaderSize {
			return feedMismatch, nil, nil
		}
		if ceiling > 0 && size > ceiling {
			return feedOversized, nil, nil
		}
		a.declared = size
	}

	if uint64(len(buf)) < a.declared {
		if len(a.data) == 0 {
			a.data = append([]byte(nil), buf...)
		}
		return feedIncomplete, nil, nil
	}
	return feedComplete, buf[:a.declared], buf[a.declared:]
}
