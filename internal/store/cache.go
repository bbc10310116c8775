package store

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"attendcore/internal/metrics"
)

// defaultReplicaTimeout bounds every remote-mirror call so a slow or
// unreachable replica can never stall the enrollment path.
const defaultReplicaTimeout = 3 * time.Second

// Cache serves a process-wide copy-on-write snapshot of the reference set.
//
// Readers load the snapshot pointer once and scan a consistent view; writes
// go to durable storage first, mirror to the replica best-effort, then
// invalidate by swapping the pointer to nil so the next reader rebuilds.
// A reader can never observe a partially rebuilt set.
type Cache struct {
	durable ReferenceStore
	replica Replica // nil when no remote mirror is configured

	snap atomic.Pointer[Snapshot]
	// gen is bumped by every invalidation. A rebuild only publishes its
	// snapshot when the generation it started from is still current, so an
	// invalidation landing mid-rebuild is never lost.
	gen            atomic.Uint64
	rebuildMu      sync.Mutex
	replicaTimeout time.Duration
}

// NewCache creates a cache over the durable store. The replica may be nil.
func NewCache(durable ReferenceStore, replica Replica) *Cache {
	return &Cache{
		durable:        durable,
		replica:        replica,
		replicaTimeout: defaultReplicaTimeout,
	}
}

// Snapshot returns the current snapshot, rebuilding it from durable storage
// if it has been invalidated. Only one rebuild runs at a time; concurrent
// readers either get the previous snapshot or wait for the fresh one.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := c.snap.Load(); snap != nil {
		return snap, nil
	}

	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	// Another rebuild may have finished while we waited for the lock.
	if snap := c.snap.Load(); snap != nil {
		return snap, nil
	}

	for {
		gen := c.gen.Load()

		refs, err := c.durable.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading references: %w", err)
		}

		// A write that committed after our read has bumped the generation;
		// the refs we hold may predate it, so read again.
		if c.gen.Load() != gen {
			continue
		}

		snap := NewSnapshot(refs)
		c.snap.Store(snap)
		return snap, nil
	}
}

// Enroll upserts the reference in durable storage, mirrors it to the remote
// replica best-effort and invalidates the snapshot so the next lookup sees
// the new reference.
func (c *Cache) Enroll(ctx context.Context, ref Reference) error {
	if ref.UpdatedAt.IsZero() {
		ref.UpdatedAt = time.Now()
	}
	if err := c.durable.Upsert(ctx, ref); err != nil {
		return fmt.Errorf("storing reference for student %d: %w", ref.StudentID, err)
	}

	c.mirror(ctx, func(mctx context.Context) error {
		return c.replica.PutReference(mctx, ref)
	}, ref.StudentID, "put")

	c.Invalidate()
	return nil
}

// Delete removes the reference from durable storage, mirrors the deletion
// and invalidates the snapshot.
func (c *Cache) Delete(ctx context.Context, studentID int64) error {
	if err := c.durable.Delete(ctx, studentID); err != nil {
		return fmt.Errorf("deleting reference for student %d: %w", studentID, err)
	}

	c.mirror(ctx, func(mctx context.Context) error {
		return c.replica.DeleteReference(mctx, studentID)
	}, studentID, "delete")

	c.Invalidate()
	return nil
}

// Invalidate drops the snapshot. The next Snapshot call rebuilds from
// durable storage. Bumping the generation first makes an in-flight rebuild
// discard its (possibly stale) read instead of publishing over this
// invalidation.
func (c *Cache) Invalidate() {
	c.gen.Add(1)
	c.snap.Store(nil)
}

// mirror runs a replica call with a bounded timeout. Replica failures are
// logged and counted but never fail the local operation.
func (c *Cache) mirror(ctx context.Context, call func(context.Context) error, studentID int64, op string) {
	if c.replica == nil {
		return
	}

	mctx, cancel := context.WithTimeout(ctx, c.replicaTimeout)
	defer cancel()

	if err := call(mctx); err != nil {
		metrics.ReplicaFailures.Inc()
		log.Printf("warning: replica %s failed for student %d (%s): %v", op, studentID, c.replica.Name(), err)
	}
}
