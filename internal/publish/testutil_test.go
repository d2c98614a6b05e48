package publish

import "encoding/binary"

func makeBox(boxType string, payload []byte) []byte {
	size := 8 + len(payload)
	buf := make([]byte, size)
	binary.BigEndian.PutUint32(buf[0:4], uint32(size))
	copy(buf[4:8], boxType)
	copy(buf[8:], payload)
	return buf
}

func makeFtyp() []byte {
	return makeBox("ftyp", []byte("isom\x00\x00\x02\x00isomiso2avc1mp41"))
}

func makeMoov() []byte {
	payload := append([]byte("avcC"), make([]byte, 1)...) // configurationVersion
	payload = append(payload, 0x4D, 0x40, 0x1F)
	return makeBox("moov", payload)
}

func makeSegment(seq int, payloadSize int) []byte {
	moofPayload := make([]byte, 4)
	binary.BigEndian.PutUint32(moofPayload, uint32(seq))
	moof := makeBox("moof", moofPayload)
	mdat := makeBox("mdat", make([]byte, payloadSize))
	return append(moof, mdat...)
}
