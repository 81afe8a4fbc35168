package cluster

type Event interface{}

type EventSlotAllocated struct {
	Cluster   string
	Slot      int
	Account   string
	Available int
}

type EventSlotFreed struct {
	Cluster   string
	Slot      int
	Available int
}

type EventAllocationRejected struct {
	Cluster   string
	Spec      string
	Requested int
	Reason    string
}
