package cluster

import (
	"fmt"

	"github.com/gammadia/hostpool/remoteaccount"
)

// Slot is one allocated unit of a cluster. The account is owned by the slot until
// the slot is freed.
type Slot struct {
	ID      int
	Account remoteaccount.RemoteAccount
	// Cluster is the name of the cluster which issued the slot
	Cluster string
}

func (s *Slot) String() string {
	if s == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s/%d", s.Cluster, s.ID)
}
