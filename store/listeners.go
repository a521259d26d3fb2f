package store

import "sync"

// Listeners is a registry of change callbacks. Engine implementations embed it
// to provide OnValueChanged, and call Notify after each mutation.
type Listeners struct {
	mx     sync.RWMutex
	nextID uint64
	fns    map[uint64]func(key string)
	order  []uint64
}

// OnValueChanged registers fn and returns a handle to remove it.
func (l *Listeners) OnValueChanged(fn func(key string)) Listener {
	l.mx.Lock()
	defer l.mx.Unlock()

	if l.fns == nil {
		l.fns = make(map[uint64]func(key string))
	}
	l.nextID++
	id := l.nextID
	l.fns[id] = fn
	l.order = append(l.order, id)

	return &listener{id: id, reg: l}
}

// Notify calls every registered listener with key, in registration order.
// Listeners may add or remove registrations while being notified; changes take
// effect on the next call to Notify.
func (l *Listeners) Notify(key string) {
	l.mx.RLock()
	fns := make([]func(key string), 0, len(l.order))
	for _, id := range l.order {
		fns = append(fns, l.fns[id])
	}
	l.mx.RUnlock()

	for _, fn := range fns {
		fn(key)
	}
}

// Len returns the number of registered listeners.
func (l *Listeners) Len() int {
	l.mx.RLock()
	defer l.mx.RUnlock()
	return len(l.order)
}

func (l *Listeners) remove(id uint64) {
	l.mx.Lock()
	defer l.mx.Unlock()

	if _, ok := l.fns[id]; !ok {
		return
	}
	delete(l.fns, id)
	for i, oid := range l.order {
		if oid == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

type listener struct {
	id   uint64
	reg  *Listeners
	once sync.Once
}

func (ln *listener) Remove() {
	ln.once.Do(func() { ln.reg.remove(ln.id) })
}
