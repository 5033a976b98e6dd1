// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

//////////////////////////////////////////////////////////////////
//  Groups

// AddGroup adds an empty group with the given name, returning its
// local id.  New groups start visible, unlocked, and expanded.
func (st *Store) AddGroup(name string) string {
	st.mu.Lock()
	gp := &Group{
		ID:       st.newID(),
		Name:     name,
		Expanded: true,
		Visible:  true,
	}
	st.groups = append(st.groups, gp)
	st.mu.Unlock()
	st.notify(Event{Kind: GroupAdded, LocalID: gp.ID})
	return gp.ID
}

// RemoveGroup deletes the group.  Member objects survive and become
// ungrouped.  A locked group is not removed.
func (st *Store) RemoveGroup(id string) bool {
	st.mu.Lock()
	gp := st.group(id)
	if gp == nil || gp.Locked {
		st.mu.Unlock()
		return false
	}
	evs := []Event{{Kind: GroupRemoved, LocalID: id}}
	for _, oid := range gp.ObjectIDs {
		if ob := st.object(oid); ob != nil {
			ob.GroupID = ""
			evs = append(evs, Event{Kind: ObjectChanged, LocalID: oid})
		}
	}
	st.groups = deleteByID(st.groups, id, func(gp *Group) string { return gp.ID })
	st.mu.Unlock()
	st.notify(evs...)
	return true
}

// RenameGroup sets the group's display name.
func (st *Store) RenameGroup(id, name string) bool {
	return st.updateGroup(id, func(gp *Group) {
		gp.Name = name
	})
}

// ToggleGroupVisible flips the group's visibility and applies the new
// state to every member object, locked members included.
func (st *Store) ToggleGroupVisible(id string) bool {
	st.mu.Lock()
	gp := st.group(id)
	if gp == nil || gp.Locked {
		st.mu.Unlock()
		return false
	}
	gp.Visible = !gp.Visible
	evs := []Event{{Kind: GroupChanged, LocalID: id}}
	for _, oid := range gp.ObjectIDs {
		if ob := st.object(oid); ob != nil && ob.Visible != gp.Visible {
			ob.Visible = gp.Visible
			evs = append(evs, Event{Kind: ObjectChanged, LocalID: oid})
		}
	}
	st.mu.Unlock()
	st.notify(evs...)
	return true
}

// ToggleGroupLock flips the group's lock.  The group's own lock does
// not block this, mirroring [Store.ToggleObjectLock].
func (st *Store) ToggleGroupLock(id string) bool {
	st.mu.Lock()
	gp := st.group(id)
	if gp == nil {
		st.mu.Unlock()
		return false
	}
	gp.Locked = !gp.Locked
	st.mu.Unlock()
	st.notify(Event{Kind: GroupChanged, LocalID: id})
	return true
}

// ToggleGroupExpanded flips the group's tree-view expansion state.
// Expansion is pure UI state: the lock does not block it and it is not
// recorded in history.
func (st *Store) ToggleGroupExpanded(id string) bool {
	st.mu.Lock()
	gp := st.group(id)
	if gp == nil {
		st.mu.Unlock()
		return false
	}
	gp.Expanded = !gp.Expanded
	st.mu.Unlock()
	st.notify(Event{Kind: GroupChanged, LocalID: id})
	return true
}

func (st *Store) updateGroup(id string, fn func(gp *Group)) bool {
	st.mu.Lock()
	gp := st.group(id)
	if gp == nil || gp.Locked {
		st.mu.Unlock()
		return false
	}
	fn(gp)
	st.mu.Unlock()
	st.notify(Event{Kind: GroupChanged, LocalID: id})
	return true
}

//////////////////////////////////////////////////////////////////
//  Membership

// AddObjectToGroup moves the object into the group, removing it from
// any previous group first.  Both sides of the membership link are
// updated atomically.  Blocked if the object is locked, its current
// group is locked, or the target group is locked.
func (st *Store) AddObjectToGroup(objID, groupID string) bool {
	st.mu.Lock()
	ob := st.object(objID)
	gp := st.group(groupID)
	if ob == nil || gp == nil || st.locked(ob) || gp.Locked {
		st.mu.Unlock()
		return false
	}
	if ob.GroupID == groupID {
		st.mu.Unlock()
		return true
	}
	var evs []Event
	if prev := st.group(ob.GroupID); prev != nil {
		prev.ObjectIDs = deleteString(prev.ObjectIDs, objID)
		evs = append(evs, Event{Kind: GroupChanged, LocalID: prev.ID})
	}
	ob.GroupID = groupID
	gp.ObjectIDs = append(gp.ObjectIDs, objID)
	evs = append(evs,
		Event{Kind: ObjectChanged, LocalID: objID},
		Event{Kind: GroupChanged, LocalID: groupID})
	st.mu.Unlock()
	st.notify(evs...)
	return true
}

// RemoveObjectFromGroup makes the object ungrouped, updating both
// sides of the membership link.
func (st *Store) RemoveObjectFromGroup(objID string) bool {
	st.mu.Lock()
	ob := st.object(objID)
	if ob == nil || ob.GroupID == "" || st.locked(ob) {
		st.mu.Unlock()
		return false
	}
	gpID := ob.GroupID
	st.unlinkFromGroup(ob)
	st.mu.Unlock()
	st.notify(
		Event{Kind: ObjectChanged, LocalID: objID},
		Event{Kind: GroupChanged, LocalID: gpID})
	return true
}

// MoveObjectsToGroup moves every given object into the group in one
// pass, skipping ids blocked by the lock cascade.  It returns the
// number of objects actually moved.  groupID may be empty to ungroup.
func (st *Store) MoveObjectsToGroup(objIDs []string, groupID string) int {
	st.mu.Lock()
	var gp *Group
	if groupID != "" {
		gp = st.group(groupID)
		if gp == nil || gp.Locked {
			st.mu.Unlock()
			return 0
		}
	}
	moved := 0
	var evs []Event
	for _, oid := range objIDs {
		ob := st.object(oid)
		if ob == nil || st.locked(ob) || ob.GroupID == groupID {
			continue
		}
		if prev := st.group(ob.GroupID); prev != nil {
			prev.ObjectIDs = deleteString(prev.ObjectIDs, oid)
			evs = append(evs, Event{Kind: GroupChanged, LocalID: prev.ID})
		}
		ob.GroupID = groupID
		if gp != nil {
			gp.ObjectIDs = append(gp.ObjectIDs, oid)
		}
		moved++
		evs = append(evs, Event{Kind: ObjectChanged, LocalID: oid})
	}
	if gp != nil && moved > 0 {
		evs = append(evs, Event{Kind: GroupChanged, LocalID: groupID})
	}
	st.mu.Unlock()
	st.notify(evs...)
	return moved
}

// unlinkFromGroup drops the object from its containing group's member
// list and clears its GroupID.  Caller holds the store lock.
func (st *Store) unlinkFromGroup(ob *Object) {
	if ob.GroupID == "" {
		return
	}
	if gp := st.group(ob.GroupID); gp != nil {
		gp.ObjectIDs = deleteString(gp.ObjectIDs, ob.ID)
	}
	ob.GroupID = ""
}

func deleteString(sl []string, s string) []string {
	for i, el := range sl {
		if el == s {
			return append(sl[:i], sl[i+1:]...)
		}
	}
	return sl
}
