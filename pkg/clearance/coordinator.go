package clearance

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Coordinator serializes the window-sensitive rules (frequency cap and
// cooldown) per (organization, phone) target. The lock is held only while
// those rules evaluate, bounding the check-then-act race to the narrow
// read-then-decide window instead of serializing whole evaluations.
//
// The Coordinator also owns the reservation ledger: when an evaluation
// passes the window rules while holding the lock, it records a short-lived
// reservation for the target. The frequency rule counts live reservations
// on top of recorded history, so a second evaluation observes the first
// allow before the caller has recorded the attempt. Reservations are
// settled when the attempt is recorded, or lapse at their TTL.
type Coordinator struct {
	mu           sync.Mutex
	locks        map[string]*targetLock
	reservations map[string][]reservation
	ttl          time.Duration
	clock        Clock
	metrics      CoordinatorMetrics
}

// CoordinatorMetrics receives lock contention telemetry. A nil metrics
// sink disables recording.
type CoordinatorMetrics interface {
	RecordLockWait(wait time.Duration)
	RecordLockTimeout()
}

// targetLock is a channel-based mutex with a reference count so that idle
// entries can be removed from the lock table.
type targetLock struct {
	ch   chan struct{}
	refs int
}

// reservation marks one unsettled allow for a target.
type reservation struct {
	id      string
	expires time.Time
}

// NewCoordinator creates a coordinator whose reservations lapse after ttl.
// A nil clock defaults to the system clock.
func NewCoordinator(ttl time.Duration, clock Clock) *Coordinator {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Coordinator{
		locks:        make(map[string]*targetLock),
		reservations: make(map[string][]reservation),
		ttl:          ttl,
		clock:        clock,
	}
}

// SetMetrics attaches a telemetry sink for lock contention. Call it
// before the coordinator is in use.
func (c *Coordinator) SetMetrics(m CoordinatorMetrics) {
	c.metrics = m
}

// Acquire takes the per-target lock, waiting at most wait. On success it
// returns a release function that must be called exactly once. On timeout
// it returns a LockTimeoutError; on context expiry it returns the context
// error. Either failure routes the evaluation to the fail-closed boundary.
func (c *Coordinator) Acquire(ctx context.Context, orgID, phone string, wait time.Duration) (func(), error) {
	key := targetKey(orgID, phone)

	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &targetLock{ch: make(chan struct{}, 1)}
		c.locks[key] = l
	}
	l.refs++
	c.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	started := c.clock.Now()

	select {
	case l.ch <- struct{}{}:
		if c.metrics != nil {
			c.metrics.RecordLockWait(c.clock.Now().Sub(started))
		}
		var once sync.Once
		release := func() {
			once.Do(func() {
				<-l.ch
				c.unref(key, l)
			})
		}
		return release, nil

	case <-timer.C:
		c.unref(key, l)
		if c.metrics != nil {
			c.metrics.RecordLockTimeout()
		}
		return nil, &LockTimeoutError{OrganizationID: orgID, Phone: phone, Wait: wait}

	case <-ctx.Done():
		c.unref(key, l)
		return nil, ctx.Err()
	}
}

// unref drops one reference to a target lock, removing it from the table
// when idle.
func (c *Coordinator) unref(key string, l *targetLock) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l.refs--
	if l.refs <= 0 {
		delete(c.locks, key)
	}
}

// Reserve records one unsettled allow for a target and returns the
// reservation id. Call it while holding the target's lock.
func (c *Coordinator) Reserve(orgID, phone string) string {
	key := targetKey(orgID, phone)
	id := uuid.New().String()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.reservations[key] = append(c.pruneLocked(key), reservation{
		id:      id,
		expires: c.clock.Now().Add(c.ttl),
	})
	return id
}

// Cancel removes a reservation by id, for evaluations that reserved and
// then blocked on a later rule. Unknown ids are ignored.
func (c *Coordinator) Cancel(orgID, phone, id string) {
	key := targetKey(orgID, phone)

	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.pruneLocked(key)
	for i, res := range live {
		if res.id == id {
			live = append(live[:i], live[i+1:]...)
			break
		}
	}
	c.storeLocked(key, live)
}

// Settle removes the oldest live reservation for a target. Callers invoke
// it when the attempt the reservation covered is recorded in history, so
// the attempt is not counted twice.
func (c *Coordinator) Settle(orgID, phone string) {
	key := targetKey(orgID, phone)

	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.pruneLocked(key)
	if len(live) > 0 {
		live = live[1:]
	}
	c.storeLocked(key, live)
}

// Active returns the number of live reservations for a target. It
// implements ReservationCounter for the frequency rule.
func (c *Coordinator) Active(orgID, phone string) int {
	key := targetKey(orgID, phone)

	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.pruneLocked(key)
	c.storeLocked(key, live)
	return len(live)
}

// LedgerSize returns the total number of live reservations across all
// targets, for metrics.
func (c *Coordinator) LedgerSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	total := 0
	for _, entries := range c.reservations {
		for _, res := range entries {
			if res.expires.After(now) {
				total++
			}
		}
	}
	return total
}

// pruneLocked returns the target's reservations with expired entries
// dropped. Caller must hold c.mu.
func (c *Coordinator) pruneLocked(key string) []reservation {
	now := c.clock.Now()
	entries := c.reservations[key]

	live := entries[:0]
	for _, res := range entries {
		if res.expires.After(now) {
			live = append(live, res)
		}
	}
	return live
}

// storeLocked writes back a target's reservations, removing empty slots
// from the ledger. Caller must hold c.mu.
func (c *Coordinator) storeLocked(key string, live []reservation) {
	if len(live) == 0 {
		delete(c.reservations, key)
		return
	}
	c.reservations[key] = live
}

// targetKey builds the lock-table key for an (organization, phone) pair.
func targetKey(orgID, phone string) string {
	return orgID + "/" + phone
}
