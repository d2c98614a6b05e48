package ingest

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/shapedtime/fmp4segmenter/internal/publish"
)

func makeBox(boxType string, payload []byte) []byte {
	size := 8 + len(payload)
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[0:4], uint32(size))
	copy(buf[4:8], boxType)
	return append(buf, payload...)
}

func makeStream(segCount int) []byte {
	ftyp := makeBox("ftyp", []byte("isom"))
	moov := makeBox("moov", append([]byte("avcC"), make([]byte, 8)...))
	var out []byte
	out = append(out, ftyp...)
	out = append(out, moov...)
	for i := 0; i < segCount; i++ {
		out = append(out, makeBox("moof", []byte{byte(i)})...)
		out = append(out, makeBox("mdat", make([]byte, 8))...)
	}
	return out
}

func TestRunFeedsSessionUntilEOF(t *testing.T) {
	session := publish.New(publish.Options{HLSBase: "s", HLSListSize: 4})
	ig := NewIngestor(session, time.Minute)

	var bytesRead int
	ig.OnBytes = func(n int) { bytesRead += n }

	stream := makeStream(3)
	err := ig.Run(context.Background(), bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if bytesRead != len(stream) {
		t.Errorf("bytesRead = %d, want %d", bytesRead, len(stream))
	}
	if session.Sequence() != 2 {
		t.Errorf("Sequence() = %d, want 2", session.Sequence())
	}
	if ig.State() != StateActive {
		t.Errorf("State() = %v, want active", ig.State())
	}
}

func TestRunPropagatesContextCancellation(t *testing.T) {
	session := publish.New(publish.Options{})
	ig := NewIngestor(session, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ig.Run(ctx, bytes.NewReader(makeStream(1)))
	if err != context.Canceled {
		t.Fatalf("Run err = %v, want context.Canceled", err)
	}
}

func TestIdleCheckTransitionsToIdle(t *testing.T) {
	session := publish.New(publish.Options{})
	ig := NewIngestor(session, 10*time.Millisecond)
	ig.checkInterval = 5 * time.Millisecond
	ig.markActive()

	ig.Start()
	defer ig.Stop()

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		if ig.State() == StateIdle {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("source never transitioned to idle")
}
