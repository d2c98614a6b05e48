package fmp4

import "log/slog"

// Parser reconstructs the initialization blob and media segments of a
// fragmented MP4 byte stream (spec.md §1–§4). It has no opinion about HLS,
// ring buffers, or playlists — see internal/publish for the layer that
// adds those on top. Write is synchronous: callbacks registered via
// OnInitialized/OnSegment fire before Write returns, in the order spec.md
// §5 requires (initialized once, then segment per completed fragment,
// monotone in sequence).
type Parser struct {
	asm *assembler

	mime     string
	initBlob []byte

	// OnInitialized fires exactly once per session, right after the init
	// blob and MIME string are available.
	OnInitialized func(initBlob []byte, mime string)
	// OnSegment fires once per completed moof+mdat pair, in sequence order.
	OnSegment func(seq int, data []byte)

	log *slog.Logger
}

// NewParser creates a parser in its initial S_FTYP state.
func NewParser() *Parser {
	return &Parser{
		asm: newAssembler(),
		log: slog.With("component", "fmp4-parser"),
	}
}

// Write feeds chunk to the state machine. Zero-byte writes are ignored
// (spec.md §4.2). A non-nil error is fatal; the parser's internal state is
// undefined until Flush (spec.md §7).
func (p *Parser) Write(chunk []byte) *ParseError {
	if len(chunk) == 0 {
		return nil
	}
	if err := p.asm.feed(chunk, p); err != nil {
		p.log.Error("parse failed", "kind", err.Kind.String(), "msg", err.Msg)
		return err
	}
	return nil
}

// Flush discards all in-flight state and resets the sequence counter,
// matching a fresh construction (spec.md §3 "Session lifecycle").
func (p *Parser) Flush() {
	p.asm.reset()
	p.mime = ""
	p.initBlob = nil
}

// Mime returns the latest MIME string, or "" if the init segment hasn't
// been parsed yet.
func (p *Parser) Mime() string {
	return p.mime
}

// Initialization returns the init blob (ftyp‖moov), or nil if absent.
func (p *Parser) Initialization() []byte {
	return p.initBlob
}

// Sequence returns the most recently assigned sequence number, or -1
// before any segment has been published.
func (p *Parser) Sequence() int {
	return p.asm.nextSeq - 1
}

// onInit implements segmentHooks.
func (p *Parser) onInit(initBlob []byte) *ParseError {
	mime, err := buildMime(initBlob)
	if err != nil {
		return err
	}
	p.initBlob = initBlob
	p.mime = mime
	p.log.Info("initialization parsed", "mime", mime, "bytes", len(initBlob))
	if p.OnInitialized != nil {
		p.OnInitialized(initBlob, mime)
	}
	return nil
}

// onSegment implements segmentHooks.
func (p *Parser) onSegment(seq int, data []byte) {
	p.log.Debug("segment assembled", "sequence", seq, "bytes", len(data))
	if p.OnSegment != nil {
		p.OnSegment(seq, data)
	}
}
