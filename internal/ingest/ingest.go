package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/shapedtime/fmp4segmenter/internal/publish"
)

// SourceState tracks whether a byte source is currently producing data.
type SourceState string

const (
	StateActive SourceState = "active"
	StateIdle   SourceState = "idle"
)

const defaultChunkSize = 64 * 1024

// Ingestor drives a chunked byte source (an ffmpeg subprocess's stdout, or
// any io.Reader) into a publish.Session, and tracks the source's liveness
// so an operator can tell a stalled encoder from a quiet one.
type Ingestor struct {
	mu         sync.RWMutex
	session    *publish.Session
	lastAccess time.Time
	state      SourceState

	idleTimeout   time.Duration
	checkInterval time.Duration
	chunkSize     int

	stopChan chan struct{}
	stopped  bool
	log      *slog.Logger

	// OnBytes, if set, is called with the size of every chunk read from
	// the source before it is written to the session.
	OnBytes func(n int)
}

// NewIngestor creates an ingestor over session. idleTimeout is how long
// without a read before the source is considered idle.
func NewIngestor(session *publish.Session, idleTimeout time.Duration) *Ingestor {
	return &Ingestor{
		session:       session,
		state:         StateIdle,
		idleTimeout:   idleTimeout,
		checkInterval: 5 * time.Second,
		chunkSize:     defaultChunkSize,
		stopChan:      make(chan struct{}),
		log:           slog.With("component", "ingestor"),
	}
}

// Start begins the background idle-check goroutine.
func (ig *Ingestor) Start() {
	ig.log.Info("ingestor started", "idle_timeout_seconds", ig.idleTimeout.Seconds())
	go ig.idleCheckLoop()
}

// Stop halts the background idle-check goroutine.
func (ig *Ingestor) Stop() {
	ig.mu.Lock()
	if ig.stopped {
		ig.mu.Unlock()
		return
	}
	ig.stopped = true
	ig.mu.Unlock()

	close(ig.stopChan)
	ig.log.Info("ingestor stopped")
}

// Run reads from src in chunkSize pieces and feeds each into the session
// until src returns io.EOF, ctx is cancelled, or a fatal parse error
// occurs. A fatal parse error is returned to the caller; the session
// itself has already fired an 'error' event for any subscriber.
func (ig *Ingestor) Run(ctx context.Context, src io.Reader) error {
	buf := make([]byte, ig.chunkSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := src.Read(buf)
		if n > 0 {
			ig.markActive()
			if ig.OnBytes != nil {
				ig.OnBytes(n)
			}
			if werr := ig.session.Write(buf[:n]); werr != nil {
				ig.log.Error("fatal parse error", "error", werr)
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (ig *Ingestor) markActive() {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	ig.lastAccess = time.Now()
	if ig.state == StateIdle {
		ig.state = StateActive
		ig.log.Info("source activated")
	}
}

func (ig *Ingestor) idleCheckLoop() {
	ticker := time.NewTicker(ig.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ig.stopChan:
			return
		case <-ticker.C:
			ig.checkIdle()
		}
	}
}

func (ig *Ingestor) checkIdle() {
	ig.mu.Lock()
	defer ig.mu.Unlock()

	if ig.state != StateActive {
		return
	}
	if time.Since(ig.lastAccess) >= ig.idleTimeout {
		ig.state = StateIdle
		ig.log.Info("source idle", "idle_for_seconds", ig.idleTimeout.Seconds())
	}
}

// State returns the current producer liveness state.
func (ig *Ingestor) State() SourceState {
	ig.mu.RLock()
	defer ig.mu.RUnlock()
	return ig.state
}

// Stats returns ingest statistics for monitoring.
func (ig *Ingestor) Stats() map[string]any {
	ig.mu.RLock()
	defer ig.mu.RUnlock()
	return map[string]any{
		"state":                string(ig.state),
		"idle_timeout_seconds": ig.idleTimeout.Seconds(),
	}
}
