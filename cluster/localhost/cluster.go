// Package localhost provides a cluster running entirely on the local machine. Every slot
// gets its own account alias pointing at the same host, so callers written against
// remote clusters can run unchanged. The cluster is safe for concurrent use.
package localhost

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	vendor "github.com/anandvarma/namegen"
	"github.com/gammadia/hostpool/cluster"
	"github.com/gammadia/hostpool/remoteaccount"
	"github.com/samber/lo"
)

var gen = vendor.New()

type Cluster struct {
	name     string
	config   Config
	capacity *int
	factory  remoteaccount.Factory
	log      *slog.Logger

	mutex       sync.Mutex
	nextID      int
	outstanding map[int]*cluster.Slot
	closed      bool
	listeners   map[chan cluster.Event]struct{}
}

// Cluster implements cluster.Cluster
var _ cluster.Cluster = (*Cluster)(nil)

func New(config Config) (*Cluster, error) {
	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("invalid cluster config: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := gen.Get()
	c := &Cluster{
		name:    name,
		config:  config,
		factory: config.AccountFactory,
		log:     logger.With("cluster", name),

		outstanding: make(map[int]*cluster.Slot),
		listeners:   make(map[chan cluster.Event]struct{}),
	}
	if config.NumNodes != nil {
		c.capacity = lo.ToPtr(*config.NumNodes)
	}
	if c.factory == nil {
		c.factory = remoteaccount.LinuxFactory(logger.With("component", "account"))
	}

	c.log.Debug("Cluster created", "size", c.sizeString(), "hostname", config.Hostname, "port", config.Port)
	return c, nil
}

func (c *Cluster) Name() string {
	return c.name
}

// Size returns the number of slots of the cluster, or cluster.Unlimited.
func (c *Cluster) Size() int {
	if c.capacity == nil {
		return cluster.Unlimited
	}
	return *c.capacity
}

// Bounded reports whether the cluster was created with a fixed number of slots.
func (c *Cluster) Bounded() bool {
	return c.capacity != nil
}

func (c *Cluster) NumAvailable(os remoteaccount.OS) (int, error) {
	if os != remoteaccount.Linux {
		return 0, fmt.Errorf("%w '%s'", cluster.ErrUnsupportedPlatform, os)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.availableLocked(), nil
}

func (c *Cluster) Alloc(spec cluster.NodeSpec) ([]*cluster.Slot, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	slots, err := c.allocLocked(spec)
	if err != nil {
		c.log.Warn("Allocation rejected", "spec", spec.String(), "requested", spec.Total(), "error", err)
		c.emitLocked(cluster.EventAllocationRejected{
			Cluster:   c.name,
			Spec:      spec.String(),
			Requested: spec.Total(),
			Reason:    err.Error(),
		})
		return nil, err
	}

	available := c.availableLocked()
	for _, slot := range slots {
		c.emitLocked(cluster.EventSlotAllocated{
			Cluster:   c.name,
			Slot:      slot.ID,
			Account:   slot.Account.Name(),
			Available: available,
		})
	}
	if len(slots) > 0 {
		c.log.Debug("Allocated slots", "count", len(slots), "first", slots[0].ID, "last", slots[len(slots)-1].ID, "available", available)
	}
	return slots, nil
}

func (c *Cluster) allocLocked(spec cluster.NodeSpec) ([]*cluster.Slot, error) {
	if c.closed {
		return nil, cluster.ErrClosed
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	for os, count := range spec {
		if os != remoteaccount.Linux && count > 0 {
			return nil, fmt.Errorf("%w '%s'", cluster.ErrUnsupportedPlatform, os)
		}
	}

	requested := spec[remoteaccount.Linux]
	if available := c.availableLocked(); requested > available {
		return nil, fmt.Errorf("%w: requested %d, available %d", cluster.ErrCapacityExceeded, requested, available)
	}
	// Ids stay below cluster.Unlimited so nextID never wraps
	if left := cluster.Unlimited - 1 - c.nextID; requested > left {
		return nil, fmt.Errorf("%w: requested %d, only %d slot ids left", cluster.ErrCapacityExceeded, requested, left)
	}

	var slots []*cluster.Slot
	for range requested {
		id := c.nextID
		c.nextID += 1

		account, err := c.factory(c.accountConfig(id))
		if err != nil {
			for _, slot := range slots {
				_ = slot.Account.Close()
			}
			return nil, fmt.Errorf("failed to create account for slot %d: %w", id, err)
		}

		slots = append(slots, &cluster.Slot{ID: id, Account: account, Cluster: c.name})
	}

	for _, slot := range slots {
		c.outstanding[slot.ID] = slot
	}
	return slots, nil
}

func (c *Cluster) accountConfig(id int) remoteaccount.SSHConfig {
	return remoteaccount.SSHConfig{
		Host:         fmt.Sprintf("localhost%d", id),
		Hostname:     c.config.Hostname,
		User:         c.config.User,
		Port:         c.config.Port,
		IdentityFile: c.config.IdentityFile,
	}
}

// FreeSingle returns a slot to the cluster and closes its account. The slot is
// reclaimed even when closing the account fails, in which case the returned error
// wraps cluster.ErrAccountClose.
func (c *Cluster) FreeSingle(slot *cluster.Slot) error {
	c.mutex.Lock()
	if err := c.checkReleaseLocked(slot); err != nil {
		c.mutex.Unlock()
		c.log.Warn("Release rejected", "slot", slot.String(), "error", err)
		return err
	}

	delete(c.outstanding, slot.ID)
	available := c.availableLocked()
	c.emitLocked(cluster.EventSlotFreed{Cluster: c.name, Slot: slot.ID, Available: available})
	c.mutex.Unlock()

	c.log.Debug("Freed slot", "slot", slot.ID, "available", available)

	if err := slot.Account.Close(); err != nil {
		c.log.Warn("Failed to close account", "slot", slot.ID, "account", slot.Account.Name(), "error", err)
		return fmt.Errorf("%w for slot %d: %w", cluster.ErrAccountClose, slot.ID, err)
	}
	return nil
}

func (c *Cluster) checkReleaseLocked(slot *cluster.Slot) error {
	if slot == nil || slot.Cluster != c.name || slot.ID < 0 || slot.ID >= c.nextID {
		return fmt.Errorf("%w: %s", cluster.ErrUnknownSlot, slot.String())
	}

	owned, ok := c.outstanding[slot.ID]
	if !ok {
		return fmt.Errorf("%w: %s", cluster.ErrDoubleRelease, slot.String())
	}
	if owned != slot {
		return fmt.Errorf("%w: %s does not match the issued slot", cluster.ErrUnknownSlot, slot.String())
	}
	if c.capacity != nil && c.availableLocked()+1 > *c.capacity {
		return fmt.Errorf("%w: %d slots available out of %d", cluster.ErrOverRelease, c.availableLocked(), *c.capacity)
	}
	return nil
}

func (c *Cluster) Free(slots []*cluster.Slot) error {
	var errs []error
	for _, slot := range slots {
		if err := c.FreeSingle(slot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InUse returns the allocated slots, ordered by id.
func (c *Cluster) InUse() []*cluster.Slot {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	slots := lo.Values(c.outstanding)
	slices.SortFunc(slots, func(a, b *cluster.Slot) int {
		return a.ID - b.ID
	})
	return slots
}

// Close frees every allocated slot. The cluster rejects allocations afterwards.
func (c *Cluster) Close() error {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return nil
	}
	c.closed = true

	slots := lo.Values(c.outstanding)
	clear(c.outstanding)
	for channel := range c.listeners {
		close(channel)
	}
	clear(c.listeners)
	c.mutex.Unlock()

	c.log.Debug("Closing cluster", "outstanding", len(slots))

	var errs []error
	for _, slot := range slots {
		if err := slot.Account.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%w for slot %d: %w", cluster.ErrAccountClose, slot.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Cluster) availableLocked() int {
	if c.capacity == nil {
		return cluster.Unlimited
	}
	return *c.capacity - len(c.outstanding)
}

func (c *Cluster) sizeString() string {
	if c.capacity == nil {
		return "unlimited"
	}
	return fmt.Sprint(*c.capacity)
}
