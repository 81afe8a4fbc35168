package localhost

import (
	"testing"

	"github.com/gammadia/hostpool/cluster"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(events <-chan cluster.Event) []cluster.Event {
	var result []cluster.Event
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return result
			}
			result = append(result, event)
		default:
			return result
		}
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	c, _ := newTestCluster(t, lo.ToPtr(2))
	events, unsubscribe := c.Subscribe()
	defer unsubscribe()

	slots, err := c.Alloc(linux(2))
	require.NoError(t, err)
	_, err = c.Alloc(linux(1))
	require.Error(t, err)
	require.NoError(t, c.FreeSingle(slots[1]))

	assert.Equal(t, []cluster.Event{
		cluster.EventSlotAllocated{Cluster: c.Name(), Slot: 0, Account: "localhost0", Available: 0},
		cluster.EventSlotAllocated{Cluster: c.Name(), Slot: 1, Account: "localhost1", Available: 0},
		cluster.EventAllocationRejected{Cluster: c.Name(), Spec: "linux:1", Requested: 1, Reason: "not enough slots available: requested 1, available 0"},
		cluster.EventSlotFreed{Cluster: c.Name(), Slot: 1, Available: 1},
	}, drain(events))
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	c, _ := newTestCluster(t, lo.ToPtr(2))
	events, unsubscribe := c.Subscribe()

	unsubscribe()
	unsubscribe()

	_, err := c.Alloc(linux(1))
	require.NoError(t, err)

	_, ok := <-events
	assert.False(t, ok)
}

func TestCloseClosesSubscriptions(t *testing.T) {
	c, _ := newTestCluster(t, lo.ToPtr(2))
	events, unsubscribe := c.Subscribe()

	require.NoError(t, c.Close())
	unsubscribe()

	_, ok := <-events
	assert.False(t, ok)

	late, _ := c.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestFullSubscriberDropsEvents(t *testing.T) {
	c, _ := newTestCluster(t, nil)
	events, unsubscribe := c.Subscribe()
	defer unsubscribe()

	_, err := c.Alloc(linux(2000))
	require.NoError(t, err)

	assert.Len(t, drain(events), 1024)
}
