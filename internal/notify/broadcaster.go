package notify

import (
	"sync"

	"github.com/wonny/themescreen/internal/contracts"
)

// Listener receives every published event
type Listener func(event string, payload interface{})

type subscription struct {
	id       uint64
	listener Listener
}

// Broadcaster fans events out to in-process subscribers.
// Delivery is synchronous and in subscription order; late subscribers see no replay.
// ⭐ SSOT: 실시간 이벤트 팬아웃은 여기서만
type Broadcaster struct {
	mu     sync.Mutex
	subs   []subscription
	nextID uint64
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

var _ contracts.EventPublisher = (*Broadcaster)(nil)

// Subscribe registers l and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (b *Broadcaster) Subscribe(l Listener) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, listener: l})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Broadcaster) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			// copy-on-write so an in-flight Publish keeps its own slice
			next := make([]subscription, 0, len(b.subs)-1)
			next = append(next, b.subs[:i]...)
			b.subs = append(next, b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers event to every listener subscribed at the time of the call.
// Listeners may subscribe or unsubscribe from inside the callback.
// A nil Broadcaster drops the event.
func (b *Broadcaster) Publish(event string, payload interface{}) {
	if b == nil {
		return
	}
	b.mu.Lock()
	subs := b.subs
	b.mu.Unlock()

	for _, s := range subs {
		s.listener(event, payload)
	}
}

// Len returns the number of active subscribers
func (b *Broadcaster) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
