package network

// IdentityAllocator issues strictly increasing node ids. Ids are never reused,
// even after the node that held one is removed.
type IdentityAllocator struct {
	next int
}

// NewIdentityAllocator returns an allocator whose first id is start.
func NewIdentityAllocator(start int) *IdentityAllocator {
	return &IdentityAllocator{next: start}
}

// Next returns a fresh id.
func (a *IdentityAllocator) Next() int {
	id := a.next
	a.next++
	return id
}

// Peek returns the id the next call to Next will hand out.
func (a *IdentityAllocator) Peek() int {
	return a.next
}
