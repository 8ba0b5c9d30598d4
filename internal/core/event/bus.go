package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted in tick N are readable
// in tick N+1. SwapBuffers() is called at tick start by EventDispatchSystem.
// Event types are dispatched in the order they were first emitted, so log
// output for a replayed session is stable.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	order    []reflect.Type
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer (will be readable next tick).
func Emit[T any](b *Bus, event T) {
	t := typeOf[T]()
	if _, seen := b.back[t]; !seen {
		if _, known := b.front[t]; !known {
			b.order = append(b.order, t)
		}
	}
	b.back[t] = append(b.back[t], event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at tick start.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
func (b *Bus) DispatchAll() {
	for _, t := range b.order {
		events := b.front[t]
		if len(events) == 0 {
			continue
		}
		handlers := b.handlers[t]
		for _, ev := range events {
			for _, h := range handlers {
				h(ev)
			}
		}
	}
}
