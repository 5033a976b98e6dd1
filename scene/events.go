// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

// EventKinds enumerate the change notifications emitted by the [Store].
type EventKinds int32

const (
	ObjectAdded EventKinds = iota
	ObjectChanged
	ObjectRemoved
	GroupAdded
	GroupChanged
	GroupRemoved
	LightAdded
	LightChanged
	LightRemoved
	SelectionChanged
	Restored

	// ObjectsReplaced, GroupsReplaced and LightsReplaced signal wholesale
	// slice replacement from an inbound remote snapshot.
	ObjectsReplaced
	GroupsReplaced
	LightsReplaced
)

// Event is one store change notification.  LocalID identifies the entity
// for entity-scoped kinds.  Remote is set on changes caused by applying
// an inbound remote snapshot, so write-back listeners can skip them.
type Event struct {
	Kind    EventKinds
	LocalID string
	Remote  bool
}

// Listener receives store change events.  Listeners run after the store
// mutation completes and must not assume they run on any particular
// goroutine.
type Listener func(ev Event)

// OnChange registers a change listener, returning a func that removes it.
func (st *Store) OnChange(fn Listener) func() {
	st.mu.Lock()
	defer st.mu.Unlock()
	id := st.nextListener
	st.nextListener++
	if st.listeners == nil {
		st.listeners = map[int]Listener{}
	}
	st.listeners[id] = fn
	return func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		delete(st.listeners, id)
	}
}

// notify delivers an event to all listeners.  Called without the store
// lock held.
func (st *Store) notify(evs ...Event) {
	st.mu.Lock()
	fns := make([]Listener, 0, len(st.listeners))
	for _, fn := range st.listeners {
		fns = append(fns, fn)
	}
	st.mu.Unlock()
	for _, fn := range fns {
		for _, ev := range evs {
			fn(ev)
		}
	}
}
