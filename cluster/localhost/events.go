package localhost

import "github.com/gammadia/hostpool/cluster"

// Subscribe returns a channel receiving the events of the cluster, and a function
// to stop listening. Events are dropped when the channel buffer is full. The channel
// is closed by the returned function or when the cluster is closed.
func (c *Cluster) Subscribe() (<-chan cluster.Event, func()) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	channel := make(chan cluster.Event, 1024)
	if c.closed {
		close(channel)
		return channel, func() {}
	}
	c.listeners[channel] = struct{}{}

	return channel, func() {
		c.mutex.Lock()
		defer c.mutex.Unlock()

		if _, ok := c.listeners[channel]; ok {
			delete(c.listeners, channel)
			close(channel)
		}
	}
}

func (c *Cluster) emitLocked(event cluster.Event) {
	for channel := range c.listeners {
		select {
		case channel <- event:
		default:
			c.log.Debug("Cluster listener queue full, dropping event")
		}
	}
}
