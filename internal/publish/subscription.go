package publish

import "sync"

// Subscription is the pull-iterator counterpart to Session.Subscribe,
// supplementing the push-callback model with a channel a consumer can
// range over (spec.md §9 Design Notes: "ports should expose both a
// push-callback model and a pull-iterator model; the underlying state
// machine is identical"). It rides on the same dispatcher as the
// push-callback 'segment' event — this is simply a second subscriber,
// matching how the HLS ring and buffer ring are each just another
// consumer of the same publish step (spec.md §4.4).
type Subscription struct {
	ch     chan []byte
	cancel func()
}

// Segments returns the channel of published segment byte-blobs. It is
// closed when the Subscription is cancelled.
func (s *Subscription) Segments() <-chan []byte {
	return s.ch
}

// Cancel stops delivery and closes the channel. Safe to call more than
// once.
func (s *Subscription) Cancel() {
	s.cancel()
}

// newSubscription wires a buffered channel into d's 'segment' event
// stream. bufferSize bounds how many unconsumed segments may queue before
// a slow reader starts dropping them — matching the "pushed stream" being
// a best-effort fan-out, not a backpressure mechanism (spec.md does not
// describe the core blocking on slow consumers).
func newSubscription(d *dispatcher, bufferSize int) *Subscription {
	ch := make(chan []byte, bufferSize)
	var closeOnce sync.Once

	unsubscribe := d.subscribe(EventSegment, func(ev Event) {
		select {
		case ch <- ev.Segment:
		default:
			// Slow consumer: drop rather than block the publisher.
		}
	})

	sub := &Subscription{ch: ch}
	sub.cancel = func() {
		closeOnce.Do(func() {
			unsubscribe()
			close(ch)
		})
	}
	return sub
}
