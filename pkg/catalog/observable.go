package catalog

import (
	"sync"

	"github.com/glorpus-work/romcat/pkg/model"
)

// subscriberBuffer is the number of undelivered states kept per subscriber.
// A subscriber that falls further behind loses the oldest states; the
// latest state is always delivered.
const subscriberBuffer = 8

// observable holds the latest refresh state and fans transitions out to
// subscribers.
type observable struct {
	mu     sync.RWMutex
	latest model.State
	subs   map[int]chan model.State
	nextID int
}

func newObservable() *observable {
	return &observable{
		latest: model.Idle(),
		subs:   make(map[int]chan model.State),
	}
}

func (o *observable) get() model.State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.latest
}

func (o *observable) publish(s model.State) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.latest = s
	for _, ch := range o.subs {
		deliver(ch, s)
	}
}

// deliver sends s without blocking, evicting the oldest pending state when
// the buffer is full.
func deliver(ch chan model.State, s model.State) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// subscribe registers a subscriber that first receives the current state.
func (o *observable) subscribe() (<-chan model.State, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextID
	o.nextID++
	ch := make(chan model.State, subscriberBuffer)
	ch <- o.latest
	o.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.subs, id)
			close(ch)
		})
	}
}
