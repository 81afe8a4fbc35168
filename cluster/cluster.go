// Package cluster defines the capability surface shared by node pools, whether their
// nodes are local or remote.
package cluster

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/gammadia/hostpool/remoteaccount"
	"github.com/samber/lo"
)

// Unlimited is the size reported by pools without a configured capacity.
const Unlimited = math.MaxInt

type Cluster interface {
	// Size is the total number of slots in the cluster.
	Size() int
	// Alloc allocates all the slots described by spec, or none of them.
	Alloc(spec NodeSpec) ([]*Slot, error)
	NumAvailable(os remoteaccount.OS) (int, error)
	FreeSingle(slot *Slot) error
	// Free releases every slot, continuing past failures.
	Free(slots []*Slot) error
}

// NodeSpec is the number of slots requested per operating system.
type NodeSpec map[remoteaccount.OS]int

// Total is the number of slots requested across all operating systems.
func (ns NodeSpec) Total() int {
	return lo.Sum(lo.Values(ns))
}

func (ns NodeSpec) Validate() error {
	for os, count := range ns {
		if count < 0 {
			return fmt.Errorf("%w: negative count %d for '%s'", ErrInvalidNodeSpec, count, os)
		}
	}
	return nil
}

func (ns NodeSpec) String() string {
	keys := lo.Keys(ns)
	slices.Sort(keys)
	return strings.Join(lo.Map(keys, func(os remoteaccount.OS, _ int) string {
		return fmt.Sprintf("%s:%d", os, ns[os])
	}), ",")
}
