package fmp4

import (
	"bytes"
	"testing"
)

func TestParserAccessorsBeforeInit(t *testing.T) {
	p := NewParser()
	if p.Mime() != "" {
		t.Errorf("Mime() = %q, want \"\"", p.Mime())
	}
	if p.Initialization() != nil {
		t.Errorf("Initialization() = %v, want nil", p.Initialization())
	}
	if p.Sequence() != -1 {
		t.Errorf("Sequence() = %d, want -1", p.Sequence())
	}
}

func TestParserLifecycle(t *testing.T) {
	ftyp, moov, segs := buildStream(2)
	p := NewParser()

	var initCount int
	var lastMime string
	p.OnInitialized = func(blob []byte, mime string) {
		initCount++
		lastMime = mime
	}

	var segCount int
	p.OnSegment = func(seq int, data []byte) {
		segCount++
	}

	stream := append(append([]byte{}, ftyp...), moov...)
	for _, s := range segs {
		stream = append(stream, s...)
	}

	if err := p.Write(stream); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if initCount != 1 {
		t.Errorf("initCount = %d, want 1", initCount)
	}
	if lastMime == "" {
		t.Errorf("mime not populated")
	}
	if segCount != 2 {
		t.Errorf("segCount = %d, want 2", segCount)
	}
	if p.Sequence() != 1 {
		t.Errorf("Sequence() = %d, want 1", p.Sequence())
	}
	if !bytes.Equal(p.Initialization(), append(append([]byte{}, ftyp...), moov...)) {
		t.Errorf("Initialization() mismatch")
	}
}

func TestParserFlushResetsState(t *testing.T) {
	ftyp, moov, segs := buildStream(1)
	p := NewParser()
	stream := append(append([]byte{}, ftyp...), moov...)
	stream = append(stream, segs[0]...)

	if err := p.Write(stream); err != nil {
		t.Fatalf("Write: %v", err)
	}
	p.Flush()

	if p.Mime() != "" || p.Initialization() != nil || p.Sequence() != -1 {
		t.Fatalf("state not reset after Flush")
	}

	if err := p.Write(stream); err != nil {
		t.Fatalf("Write after flush: %v", err)
	}
	if p.Sequence() != 0 {
		t.Errorf("Sequence() after re-feed = %d, want 0", p.Sequence())
	}
}

func TestParserZeroByteWriteIgnored(t *testing.T) {
	p := NewParser()
	if err := p.Write(nil); err != nil {
		t.Fatalf("Write(nil): %v", err)
	}
	if err := p.Write([]byte{}); err != nil {
		t.Fatalf("Write([]byte{}): %v", err)
	}
}
