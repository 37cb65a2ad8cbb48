package telegram

import "sync"

// lanes serializes work per identity while keeping different identities
// concurrent. A lane is created on first use and reaped once drained; two
// updates from the same identity always run in arrival order.
type lanes struct {
	mu sync.Mutex
	m  map[int64]*lane
	wg sync.WaitGroup
}

type lane struct {
	ch      chan func()
	pending int
}

func newLanes() *lanes {
	return &lanes{m: make(map[int64]*lane)}
}

func (x *lanes) enqueue(identity int64, fn func()) {
	x.mu.Lock()
	l, ok := x.m[identity]
	if !ok {
		l = &lane{ch: make(chan func(), 64)}
		x.m[identity] = l
		x.wg.Add(1)
		go x.run(identity, l)
	}
	l.pending++
	x.mu.Unlock()

	l.ch <- fn
}

func (x *lanes) run(identity int64, l *lane) {
	defer x.wg.Done()

	for fn := range l.ch {
		fn()

		x.mu.Lock()
		l.pending--
		if l.pending == 0 {
			delete(x.m, identity)
			x.mu.Unlock()
			return
		}
		x.mu.Unlock()
	}
}

// wait blocks until every lane has drained. Used on shutdown after the
// update channel is closed.
func (x *lanes) wait() {
	x.wg.Wait()
}
