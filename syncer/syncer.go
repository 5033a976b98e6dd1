// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syncer keeps the local scene store and the persistence
// gateway converged, local-first: every local mutation applies
// immediately and a write-back follows asynchronously.  A failed
// write-back is logged and the local state stands; there is no
// rollback or retry.  Inbound gateway snapshots replace whole entity
// slices, which can overwrite a local edit whose write-back has not
// landed yet.  That race is accepted.
package syncer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"sceneforge/gateway"
	"sceneforge/scene"
)

// bindKey keys the id binding maps by collection plus id.
type bindKey struct {
	coll gateway.Collection
	id   string
}

// Controller drives write-backs and inbound snapshot application for
// one (owner, project) scope.  It owns the binding between local ids
// and persisted ids: local ids never leave the process, persisted ids
// never enter history snapshots, and the binding map re-attaches
// persisted ids after undo and redo.
type Controller struct {
	st    *scene.Store
	gw    gateway.Gateway
	scope gateway.Scope
	log   *slog.Logger
	newID func() string

	mu       sync.Mutex
	toRemote map[bindKey]string
	toLocal  map[bindKey]string

	// muted holds inbound snapshots while one of our own write-backs
	// is executing: in-process gateways publish the echo before the
	// write call returns, which is before the id binding is recorded.
	// Held snapshots (latest per collection) apply after the write.
	muted   bool
	pending map[gateway.Collection][]gateway.Stored

	// work serializes gateway write-backs so they land in the order
	// the local edits happened.
	work chan func(ctx context.Context)
	wg   sync.WaitGroup

	pendingN int
	failN    int
	lastErr  error

	offStore func()
	offGw    []func()
	cancel   context.CancelFunc
	done     chan struct{}
}

// Option configures a [Controller].
type Option func(co *Controller)

// WithLogger sets the write-back failure logger.
func WithLogger(lg *slog.Logger) Option {
	return func(co *Controller) {
		co.log = lg
	}
}

// WithIDSource sets the generator for local ids assigned to inbound
// records, for deterministic tests.
func WithIDSource(fn func() string) Option {
	return func(co *Controller) {
		co.newID = fn
	}
}

// New returns a controller for the given store, gateway and scope.
// Call [Controller.Start] to begin syncing.
func New(st *scene.Store, gw gateway.Gateway, scope gateway.Scope, opts ...Option) *Controller {
	co := &Controller{
		st:       st,
		gw:       gw,
		scope:    scope,
		log:      slog.Default(),
		newID:    uuid.NewString,
		toRemote: map[bindKey]string{},
		toLocal:  map[bindKey]string{},
		work:     make(chan func(ctx context.Context), 256),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(co)
	}
	return co
}

// Start loads the initial remote state into the store, subscribes both
// directions, and launches the write-back worker.  Stop with
// [Controller.Close].
func (co *Controller) Start(ctx context.Context) error {
	ctx, co.cancel = context.WithCancel(ctx)

	// groups before objects so membership links resolve on first apply
	offG, err := co.gw.Subscribe(ctx, co.scope, gateway.Groups, co.applyGroups)
	if err != nil {
		return err
	}
	co.offGw = append(co.offGw, offG)
	offO, err := co.gw.Subscribe(ctx, co.scope, gateway.Objects, co.applyObjects)
	if err != nil {
		co.unsubscribe()
		return err
	}
	co.offGw = append(co.offGw, offO)
	offL, err := co.gw.Subscribe(ctx, co.scope, gateway.Lights, co.applyLights)
	if err != nil {
		co.unsubscribe()
		return err
	}
	co.offGw = append(co.offGw, offL)

	co.offStore = co.st.OnChange(co.onStoreEvent)

	go func() {
		defer close(co.done)
		for fn := range co.work {
			co.setMuted(true)
			fn(ctx)
			co.setMuted(false)
			co.flushPending()
			co.finish()
		}
	}()
	return nil
}

func (co *Controller) setMuted(m bool) {
	co.mu.Lock()
	co.muted = m
	co.mu.Unlock()
}

// holdInbound buffers the snapshot while muted, latest per collection.
func (co *Controller) holdInbound(coll gateway.Collection, recs []gateway.Stored) bool {
	co.mu.Lock()
	defer co.mu.Unlock()
	if !co.muted {
		return false
	}
	if co.pending == nil {
		co.pending = map[gateway.Collection][]gateway.Stored{}
	}
	co.pending[coll] = recs
	return true
}

// flushPending applies snapshots held during a write-back, groups
// first so membership links resolve.
func (co *Controller) flushPending() {
	co.mu.Lock()
	pend := co.pending
	co.pending = nil
	co.mu.Unlock()
	if recs, ok := pend[gateway.Groups]; ok {
		co.applyGroups(recs)
	}
	if recs, ok := pend[gateway.Objects]; ok {
		co.applyObjects(recs)
	}
	if recs, ok := pend[gateway.Lights]; ok {
		co.applyLights(recs)
	}
}

// Close stops syncing: unsubscribes both directions, drains pending
// write-backs, and releases the worker.
func (co *Controller) Close() {
	if co.offStore != nil {
		co.offStore()
		co.offStore = nil
	}
	co.unsubscribe()
	co.wg.Wait()
	close(co.work)
	<-co.done
	if co.cancel != nil {
		co.cancel()
	}
}

// Wait blocks until every queued write-back has been attempted.
func (co *Controller) Wait() {
	co.wg.Wait()
}

func (co *Controller) unsubscribe() {
	for _, off := range co.offGw {
		off()
	}
	co.offGw = nil
}

// enqueue schedules one write-back on the serial worker, blocking when
// the queue is full so edit order is preserved.  The worker never
// enqueues (inbound events are marked remote and skipped), so this
// cannot deadlock.
func (co *Controller) enqueue(fn func(ctx context.Context)) {
	co.mu.Lock()
	co.pendingN++
	co.mu.Unlock()
	co.wg.Add(1)
	co.work <- fn
}

func (co *Controller) finish() {
	co.mu.Lock()
	co.pendingN--
	co.mu.Unlock()
	co.wg.Done()
}

// Status is a point-in-time view of the write-back pipeline.
type Status struct {

	// Pending counts write-backs queued or executing.
	Pending int

	// Failures counts write-backs that have failed since Start.
	Failures int

	// LastErr is the most recent write-back failure, nil if none.
	LastErr error
}

// Status reports the current write-back pipeline state.
func (co *Controller) Status() Status {
	co.mu.Lock()
	defer co.mu.Unlock()
	return Status{Pending: co.pendingN, Failures: co.failN, LastErr: co.lastErr}
}

//////////////////////////////////////////////////////////////////
//  Binding

// bind records the local / persisted id pair for a collection.
func (co *Controller) bind(coll gateway.Collection, localID, remoteID string) {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.toRemote[bindKey{coll, localID}] = remoteID
	co.toLocal[bindKey{coll, remoteID}] = localID
}

func (co *Controller) unbind(coll gateway.Collection, localID string) {
	co.mu.Lock()
	defer co.mu.Unlock()
	if rid, ok := co.toRemote[bindKey{coll, localID}]; ok {
		delete(co.toLocal, bindKey{coll, rid})
	}
	delete(co.toRemote, bindKey{coll, localID})
}

// remoteID returns the persisted id bound to the local id, or "".
func (co *Controller) remoteID(coll gateway.Collection, localID string) string {
	if localID == "" {
		return ""
	}
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.toRemote[bindKey{coll, localID}]
}

// localID returns the local id bound to the persisted id, or "".
func (co *Controller) localID(coll gateway.Collection, remoteID string) string {
	if remoteID == "" {
		return ""
	}
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.toLocal[bindKey{coll, remoteID}]
}

// bindInbound returns the local id for an inbound record, minting and
// binding a fresh one for records seen for the first time.
func (co *Controller) bindInbound(coll gateway.Collection, remoteID string) string {
	co.mu.Lock()
	defer co.mu.Unlock()
	if lid, ok := co.toLocal[bindKey{coll, remoteID}]; ok {
		return lid
	}
	lid := co.newID()
	co.toLocal[bindKey{coll, remoteID}] = lid
	co.toRemote[bindKey{coll, lid}] = remoteID
	return lid
}

//////////////////////////////////////////////////////////////////
//  Outbound

// onStoreEvent queues the write-back matching one local store change.
// Events marked remote originate from inbound snapshot application and
// must not echo back out.
func (co *Controller) onStoreEvent(ev scene.Event) {
	if ev.Remote {
		return
	}
	id := ev.LocalID
	switch ev.Kind {
	case scene.ObjectAdded:
		co.enqueue(func(ctx context.Context) { co.createObject(ctx, id) })
	case scene.ObjectChanged:
		co.enqueue(func(ctx context.Context) { co.updateObject(ctx, id) })
	case scene.ObjectRemoved:
		co.enqueue(func(ctx context.Context) { co.deleteEntity(ctx, gateway.Objects, id) })
	case scene.GroupAdded:
		co.enqueue(func(ctx context.Context) { co.createGroup(ctx, id) })
	case scene.GroupChanged:
		co.enqueue(func(ctx context.Context) { co.updateGroup(ctx, id) })
	case scene.GroupRemoved:
		co.enqueue(func(ctx context.Context) { co.deleteEntity(ctx, gateway.Groups, id) })
	case scene.LightAdded:
		co.enqueue(func(ctx context.Context) { co.createLight(ctx, id) })
	case scene.LightChanged:
		co.enqueue(func(ctx context.Context) { co.updateLight(ctx, id) })
	case scene.LightRemoved:
		co.enqueue(func(ctx context.Context) { co.deleteEntity(ctx, gateway.Lights, id) })
	case scene.Restored:
		co.enqueue(co.reconcile)
	}
}

func (co *Controller) createObject(ctx context.Context, id string) {
	ob := co.st.ObjectByID(id)
	if ob == nil {
		return
	}
	doc, err := co.encodeObject(ob)
	if err != nil {
		co.logFail("create", gateway.Objects, id, err)
		return
	}
	rid, err := co.gw.Create(ctx, co.scope, gateway.Objects, doc)
	if err != nil {
		co.logFail("create", gateway.Objects, id, err)
		return
	}
	co.bind(gateway.Objects, id, rid)
	co.st.SetObjectRemoteID(id, rid)
}

func (co *Controller) updateObject(ctx context.Context, id string) {
	ob := co.st.ObjectByID(id)
	if ob == nil {
		return
	}
	rid := co.remoteID(gateway.Objects, id)
	if rid == "" {
		// create still unresolved or failed; nothing to attach to
		return
	}
	doc, err := co.encodeObject(ob)
	if err != nil {
		co.logFail("update", gateway.Objects, id, err)
		return
	}
	if err := co.gw.Update(ctx, co.scope, gateway.Objects, rid, doc); err != nil {
		co.logFail("update", gateway.Objects, id, err)
	}
}

func (co *Controller) createGroup(ctx context.Context, id string) {
	gp := co.st.GroupByID(id)
	if gp == nil {
		return
	}
	doc, err := co.encodeGroup(gp)
	if err != nil {
		co.logFail("create", gateway.Groups, id, err)
		return
	}
	rid, err := co.gw.Create(ctx, co.scope, gateway.Groups, doc)
	if err != nil {
		co.logFail("create", gateway.Groups, id, err)
		return
	}
	co.bind(gateway.Groups, id, rid)
	co.st.SetGroupRemoteID(id, rid)
}

func (co *Controller) updateGroup(ctx context.Context, id string) {
	gp := co.st.GroupByID(id)
	if gp == nil {
		return
	}
	rid := co.remoteID(gateway.Groups, id)
	if rid == "" {
		return
	}
	doc, err := co.encodeGroup(gp)
	if err != nil {
		co.logFail("update", gateway.Groups, id, err)
		return
	}
	if err := co.gw.Update(ctx, co.scope, gateway.Groups, rid, doc); err != nil {
		co.logFail("update", gateway.Groups, id, err)
	}
}

func (co *Controller) createLight(ctx context.Context, id string) {
	lt := co.st.LightByID(id)
	if lt == nil {
		return
	}
	doc, err := co.encodeLight(lt)
	if err != nil {
		co.logFail("create", gateway.Lights, id, err)
		return
	}
	rid, err := co.gw.Create(ctx, co.scope, gateway.Lights, doc)
	if err != nil {
		co.logFail("create", gateway.Lights, id, err)
		return
	}
	co.bind(gateway.Lights, id, rid)
	co.st.SetLightRemoteID(id, rid)
}

func (co *Controller) updateLight(ctx context.Context, id string) {
	lt := co.st.LightByID(id)
	if lt == nil {
		return
	}
	rid := co.remoteID(gateway.Lights, id)
	if rid == "" {
		return
	}
	doc, err := co.encodeLight(lt)
	if err != nil {
		co.logFail("update", gateway.Lights, id, err)
		return
	}
	if err := co.gw.Update(ctx, co.scope, gateway.Lights, rid, doc); err != nil {
		co.logFail("update", gateway.Lights, id, err)
	}
}

func (co *Controller) deleteEntity(ctx context.Context, coll gateway.Collection, id string) {
	rid := co.remoteID(coll, id)
	if rid == "" {
		return
	}
	if err := co.gw.Delete(ctx, co.scope, coll, rid); err != nil {
		co.logFail("delete", coll, id, err)
		return
	}
	co.unbind(coll, id)
}

// reconcile pushes the local state after a history restore.  Restored
// entities get their persisted ids re-attached from the binding map
// (snapshots predate id resolution, so the map is authoritative):
// bound entities update their existing record, unbound ones create a
// fresh one.  Entities absent from the restored state are not deleted
// remotely; a later redo must be able to re-attach their persisted id
// rather than mint a new record.
func (co *Controller) reconcile(ctx context.Context) {
	for _, ob := range co.st.Objects() {
		rid := co.remoteID(gateway.Objects, ob.ID)
		co.st.SetObjectRemoteID(ob.ID, rid)
		if rid == "" {
			co.createObject(ctx, ob.ID)
		} else {
			co.updateObject(ctx, ob.ID)
		}
	}
	for _, gp := range co.st.Groups() {
		rid := co.remoteID(gateway.Groups, gp.ID)
		co.st.SetGroupRemoteID(gp.ID, rid)
		if rid == "" {
			co.createGroup(ctx, gp.ID)
		} else {
			co.updateGroup(ctx, gp.ID)
		}
	}
	for _, lt := range co.st.Lights() {
		rid := co.remoteID(gateway.Lights, lt.ID)
		co.st.SetLightRemoteID(lt.ID, rid)
		if rid == "" {
			co.createLight(ctx, lt.ID)
		} else {
			co.updateLight(ctx, lt.ID)
		}
	}
}

func (co *Controller) logFail(op string, coll gateway.Collection, id string, err error) {
	co.mu.Lock()
	co.failN++
	co.lastErr = err
	co.mu.Unlock()
	co.log.Error("write-back failed; local state retained",
		"op", op, "collection", string(coll), "localID", id, "err", err)
}

//////////////////////////////////////////////////////////////////
//  Inbound

func (co *Controller) applyObjects(recs []gateway.Stored) {
	if co.holdInbound(gateway.Objects, recs) {
		return
	}
	objs := make([]*scene.Object, 0, len(recs))
	for _, rec := range recs {
		ob, err := co.decodeObject(rec)
		if err != nil {
			co.log.Error("skipping undecodable object record", "remoteID", rec.ID, "err", err)
			continue
		}
		objs = append(objs, ob)
	}
	co.st.ReplaceObjects(objs)
}

func (co *Controller) applyGroups(recs []gateway.Stored) {
	if co.holdInbound(gateway.Groups, recs) {
		return
	}
	gps := make([]*scene.Group, 0, len(recs))
	for _, rec := range recs {
		gp, err := co.decodeGroup(rec)
		if err != nil {
			co.log.Error("skipping undecodable group record", "remoteID", rec.ID, "err", err)
			continue
		}
		gps = append(gps, gp)
	}
	co.st.ReplaceGroups(gps)
}

func (co *Controller) applyLights(recs []gateway.Stored) {
	if co.holdInbound(gateway.Lights, recs) {
		return
	}
	lts := make([]*scene.Light, 0, len(recs))
	for _, rec := range recs {
		lt, err := co.decodeLight(rec)
		if err != nil {
			co.log.Error("skipping undecodable light record", "remoteID", rec.ID, "err", err)
			continue
		}
		lts = append(lts, lt)
	}
	co.st.ReplaceLights(lts)
}
