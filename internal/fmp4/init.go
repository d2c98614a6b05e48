package fmp4

import (
	"bytes"
	"encoding/hex"
	"strings"
)

const (
	avcCMarker        = "avcC"
	mp4aMarker        = "mp4a"
	avcConfigSkip     = 5 // 4-byte "avcC" tag + 1-byte configurationVersion, see spec.md §4.3
	avcConfigHexBytes = 3
)

// buildMime extracts the AVC configuration bytes and the mp4a marker from
// an init blob (ftyp‖moov) by textual search, matching the canonical
// ffmpeg init-segment layout rather than walking the box tree. spec.md
// §4.3 and §9 both call this out explicitly as load-bearing behaviour to
// preserve, not an implementation shortcut to clean up.
func buildMime(initBlob []byte) (string, *ParseError) {
	audioSuffix := ""
	if bytes.Contains(initBlob, []byte(mp4aMarker)) {
		audioSuffix = ", mp4a.40.2"
	}

	idx := bytes.Index(initBlob, []byte(avcCMarker))
	if idx < 0 {
		return "", newParseError(KindMissingCodec, "no avcC marker in moov")
	}

	start := idx + avcConfigSkip
	end := start + avcConfigHexBytes
	if end > len(initBlob) {
		return "", newParseError(KindMissingCodec, "avcC marker truncated before config bytes")
	}

	hexDigits := strings.ToUpper(hex.EncodeToString(initBlob[start:end]))
	return `video/mp4; codecs="avc1.` + hexDigits + audioSuffix + `"`, nil
}
