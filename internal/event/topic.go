// Package event provides typed publish/subscribe topics.
//
// A Topic fans a value out to every subscriber in subscription order.
// Subscribe returns a handle that removes exactly that subscription, so
// the same function may be subscribed twice and removed independently.
package event

import "sync"

// Handler receives published values
type Handler[T any] func(T)

// Topic is a named list of subscribers for values of type T.
// The zero value is ready to use.
type Topic[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription[T]
}

type subscription[T any] struct {
	id uint64
	fn Handler[T]
}

// Unsubscribe removes a subscription; calling it more than once is harmless
type Unsubscribe func()

// Subscribe adds fn to the topic
func (t *Topic[T]) Subscribe(fn Handler[T]) Unsubscribe {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.subs = append(t.subs, subscription[T]{id: id, fn: fn})
	var once sync.Once
	return func() {
		once.Do(func() { t.remove(id) })
	}
}

func (t *Topic[T]) remove(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s.id == id {
			t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
			return
		}
	}
}

// Publish calls every subscriber with v. Subscribers added or removed
// while publishing take effect on the next Publish.
func (t *Topic[T]) Publish(v T) {
	t.mu.Lock()
	subs := make([]subscription[T], len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// HasSubscribers reports whether anyone listens
func (t *Topic[T]) HasSubscribers() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs) > 0
}

// Clear removes every subscriber
func (t *Topic[T]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = nil
}
