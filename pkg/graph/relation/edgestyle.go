package relation

// NumBuckets is the number of cyclic edge style buckets. High-fan-out
// sources cycle their individual edges through this many visual styles
// instead of getting one distinct style per edge.
const NumBuckets = 4

// Assigner distributes individual-target edge emissions over the cyclic
// style buckets. It is a pure counter: it knows nothing about colors,
// only which document-wide edge sequence numbers landed in which bucket.
//
// The bucket index is the running count of individual-edge emissions for
// the current source modulo NumBuckets; StartSource resets the count to 0
// when a new source's run begins.
type Assigner struct {
	buckets [NumBuckets][]int
	run     int
}

// NewAssigner returns an empty assigner.
func NewAssigner() *Assigner { return &Assigner{} }

// StartSource resets the per-source running count. Call it before
// recording the first individual edge of each source.
func (a *Assigner) StartSource() { a.run = 0 }

// Record assigns the next individual edge to a bucket and returns the
// bucket index. seq is the document-wide sequence number of the emitted
// edge, as counted by the diagram emitter.
func (a *Assigner) Record(seq int) int {
	idx := a.run % NumBuckets
	a.buckets[idx] = append(a.buckets[idx], seq)
	a.run++
	return idx
}

// Buckets returns the edge sequence numbers per bucket. The returned
// slices are the assigner's own; callers must not modify them.
func (a *Assigner) Buckets() [NumBuckets][]int { return a.buckets }
