/*

Package emitter implements a minimal topic-based callback registry: the
outbound contract of the demo parser.

Emit is synchronous from the emitter's point of view; listeners that want
asynchronous handling fan out themselves. A panicking listener never
propagates back into the emitting code.

The package is NOT safe for concurrent use; the parser owns its emitter.

*/
package emitter

import (
	"log"

	"github.com/google/uuid"
)

// Handler is a subscription callback. The payload type is fixed per topic
// but opaque to the emitter.
type Handler func(payload interface{})

type listener struct {
	id      string
	handler Handler

	// remaining invocations; < 0 means unlimited
	remaining int
}

// Emitter dispatches payloads to the ordered listeners of a topic.
type Emitter struct {
	listeners map[string][]*listener
}

// New returns an empty Emitter.
func New() *Emitter {
	return &Emitter{listeners: make(map[string][]*listener)}
}

// On subscribes the handler to the topic and returns the subscription id.
func (e *Emitter) On(topic string, h Handler) string {
	return e.OnLimited(topic, -1, h)
}

// OnLimited subscribes the handler to the topic for at most limit
// invocations; the subscription is removed afterwards.
func (e *Emitter) OnLimited(topic string, limit int, h Handler) string {
	l := &listener{
		id:        uuid.NewString(),
		handler:   h,
		remaining: limit,
	}
	e.listeners[topic] = append(e.listeners[topic], l)
	return l.id
}

// Off removes the subscription with the given id from the topic.
// It reports whether a subscription was removed.
func (e *Emitter) Off(topic, id string) bool {
	ls := e.listeners[topic]
	for i, l := range ls {
		if l.id == id {
			e.listeners[topic] = append(ls[:i], ls[i+1:]...)
			return true
		}
	}
	return false
}

// Emit hands the payload to every listener of the topic, in subscription
// order. Exhausted limited subscriptions are removed.
func (e *Emitter) Emit(topic string, payload interface{}) {
	ls := e.listeners[topic]
	if len(ls) == 0 {
		return
	}

	kept := ls[:0]
	for _, l := range ls {
		if l.remaining == 0 {
			continue
		}
		if l.remaining > 0 {
			l.remaining--
		}
		invoke(topic, l.handler, payload)
		if l.remaining != 0 {
			kept = append(kept, l)
		}
	}
	e.listeners[topic] = kept
}

// invoke shields the emitting code from listener panics.
func invoke(topic string, h Handler, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("emitter: listener panic on %q: %v", topic, r)
		}
	}()
	h(payload)
}
