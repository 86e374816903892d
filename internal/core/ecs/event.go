package ecs

import (
	"reflect"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"

	"forgekernel/internal/core/ecs/value"
)

// EventHandler receives a dispatched event's payload. Returning
// stop=true short-circuits the remaining handlers in this dispatch's
// priority chain (DESIGN.md Open Question decision #2).
type EventHandler func(r *Registry, payload any) (stop bool, err error)

type eventSub struct {
	token    HandlerToken
	priority Priority
	handler  EventHandler
}

// Stats mirrors the teacher's EventBusStats shape (subscription and
// dispatch counters), extended with the queued-event counters the
// background-thread funnel in SPEC_FULL.md §5 needs.
type Stats struct {
	Subscriptions int
	Published     uint64
	Dispatched    uint64
	Queued        uint64
	HandlerErrors uint64
}

type queuedEvent struct {
	name    string
	payload any
}

// EventManager is the runtime's name-keyed, priority-ordered event bus.
// Unlike a closed enum of event types, names are registered lazily the
// first time a handler subscribes, per spec.md §4.3.
type EventManager struct {
	mu       sync.RWMutex
	subs     map[string][]eventSub
	payload  map[string]reflect.Type // optional, for PublishValue's mapstructure decode
	queue    chan queuedEvent
	stats    Stats
	recurse  int
	maxDepth int
}

// NewEventManager builds an event manager whose cross-thread queue is a
// channel buffered to 4096 events; Enqueue blocks while it is full,
// until Drain frees room (Open Question decision #1).
func NewEventManager() *EventManager {
	return &EventManager{
		subs:     make(map[string][]eventSub),
		payload:  make(map[string]reflect.Type),
		queue:    make(chan queuedEvent, 4096),
		maxDepth: 64,
	}
}

// RegisterPayloadType associates name with T's Go type so PublishValue
// can mapstructure-decode a structured-value payload into a concrete
// *T before dispatch. Registration is optional: Publish and PublishRaw
// work without it.
func RegisterPayloadType[T any](em *EventManager, name string) {
	var zero T
	em.mu.Lock()
	defer em.mu.Unlock()
	em.payload[name] = reflect.TypeOf(zero)
}

// Subscribe installs handler under name at priority, returning a token
// Unsubscribe can later use. name need not have been published or
// registered yet.
func (em *EventManager) Subscribe(name string, priority Priority, handler EventHandler) HandlerToken {
	em.mu.Lock()
	defer em.mu.Unlock()
	token := newToken()
	em.subs[name] = append(em.subs[name], eventSub{token: token, priority: priority, handler: handler})
	sort.SliceStable(em.subs[name], func(i, j int) bool {
		return em.subs[name][i].priority < em.subs[name][j].priority
	})
	em.stats.Subscriptions++
	return token
}

// Unsubscribe removes the handler installed under token for name.
func (em *EventManager) Unsubscribe(name string, token HandlerToken) {
	em.mu.Lock()
	defer em.mu.Unlock()
	subs := em.subs[name]
	for i, s := range subs {
		if s.token == token {
			em.subs[name] = append(subs[:i], subs[i+1:]...)
			em.stats.Subscriptions--
			return
		}
	}
}

// Publish dispatches payload to name's handlers synchronously, in
// priority order, stopping early if a handler returns stop=true. It is
// safe to call from within a handler up to maxDepth nested levels, past
// which it returns HookRecursionLimitErr.
func (em *EventManager) Publish(r *Registry, name string, payload any) error {
	em.mu.Lock()
	em.recurse++
	depth := em.recurse
	em.stats.Published++
	subs := append([]eventSub(nil), em.subs[name]...)
	em.mu.Unlock()
	defer func() {
		em.mu.Lock()
		em.recurse--
		em.mu.Unlock()
	}()
	if depth > em.maxDepth {
		return HookRecursionLimitErr(em.maxDepth)
	}
	for _, s := range subs {
		em.mu.Lock()
		em.stats.Dispatched++
		em.mu.Unlock()
		stop, err := s.handler(r, payload)
		if err != nil {
			em.mu.Lock()
			em.stats.HandlerErrors++
			em.mu.Unlock()
			return err
		}
		if stop {
			break
		}
	}
	return nil
}

// PublishValue decodes a structured-value payload into name's
// registered Go type (via RegisterPayloadType) using mapstructure, then
// publishes the decoded pointer. If name has no registered payload type
// the raw value.Value is published unchanged.
func (em *EventManager) PublishValue(r *Registry, name string, payload value.Value) error {
	em.mu.RLock()
	t, ok := em.payload[name]
	em.mu.RUnlock()
	if !ok {
		return em.Publish(r, name, payload)
	}
	target := reflect.New(t).Interface()
	if err := mapstructure.Decode(payload.ToAny(), target); err != nil {
		return MalformedBytesErr("event payload decode: " + err.Error())
	}
	return em.Publish(r, name, target)
}

// Enqueue hands name/payload to the background queue for this event
// manager, safe to call from any goroutine. Drain moves queued events
// onto the synchronous dispatch path once per tick.
func (em *EventManager) Enqueue(name string, payload any) {
	em.mu.Lock()
	em.stats.Queued++
	em.mu.Unlock()
	em.queue <- queuedEvent{name: name, payload: payload}
}

// Drain dispatches every event currently sitting in the background
// queue, in FIFO arrival order, stopping at the first handler error.
// Called once per tick per SPEC_FULL.md §5's funnel-then-drain model.
func (em *EventManager) Drain(r *Registry) error {
	for {
		select {
		case ev := <-em.queue:
			if err := em.Publish(r, ev.name, ev.payload); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// StatsSnapshot returns a copy of the current counters.
func (em *EventManager) StatsSnapshot() Stats {
	em.mu.RLock()
	defer em.mu.RUnlock()
	return em.stats
}
