package fmp4

import "encoding/binary"

// makeBox builds a length-prefixed, type-tagged ISO/BMFF box, mirroring
// internal/streaming/mp4_test.go's makeAtomWithData fixture builder.
func makeBox(boxType string, payload []byte) []byte {
	size := boxHeaderSize + len(payload)
	buf := make([]byte, size)
	binary.BigEndian.PutUint32(buf[0:4], uint32(size))
	copy(buf[4:8], boxType)
	copy(buf[8:], payload)
	return buf
}

func makeFtyp() []byte {
	return makeBox("ftyp", []byte("isom\x00\x00\x02\x00isomiso2avc1mp41"))
}

// makeMoov builds a synthetic moov payload containing the textual avcC
// marker (plus the 3 config bytes the spec locates by offset) and,
// optionally, the mp4a marker.
func makeMoov(avcConfig [3]byte, withAvcC, withMp4a bool) []byte {
	var payload []byte
	payload = append(payload, []byte("trak....mdia....minf....stbl....stsd....")...)
	if withAvcC {
		payload = append(payload, []byte("avcC")...)
		payload = append(payload, make([]byte, 1)...) // configurationVersion
		payload = append(payload, avcConfig[:]...)
		payload = append(payload, []byte("trailingavcCdata")...)
	}
	if withMp4a {
		payload = append(payload, []byte("mp4a")...)
		payload = append(payload, make([]byte, 8)...)
	}
	return makeBox("moov", payload)
}

func makeMoof(seq uint32) []byte {
	payload := make([]byte, 4)
	binary.BigEndian.PutUint32(payload, seq)
	return makeBox("moof", payload)
}

func makeMdat(payload []byte) []byte {
	return makeBox("mdat", payload)
}
