package jsonpath

// capacityManager tracks growth/shrink bookkeeping for StreamBuffer per
// spec §4.5: growth is demand-driven and doubling-bounded, shrink is
// only eligible once enough growth operations have accumulated and
// occupancy has dropped, which avoids thrashing the underlying slice
// under bursty chunk arrival.
type capacityManager struct {
	initialCapacity     int
	maxCapacity         int
	growthOperations    int
	lastShrinkSize      int
	hysteresisThreshold int
}

func newCapacityManager(initial, max, hysteresis int) *capacityManager {
	return &capacityManager{
		initialCapacity:     initial,
		maxCapacity:         max,
		hysteresisThreshold: hysteresis,
	}
}

func (c *capacityManager) nextCapacity(current, needed int) int {
	next := current
	if next == 0 {
		next = c.initialCapacity
	}
	for next < needed {
		next *= 2
		c.growthOperations++
	}
	if c.maxCapacity > 0 && next > c.maxCapacity {
		next = c.maxCapacity
	}
	return next
}

func (c *capacityManager) canShrink(size, capacity int) bool {
	if c.growthOperations < c.hysteresisThreshold {
		return false
	}
	if capacity == 0 {
		return false
	}
	occupancy := float64(size) / float64(capacity)
	return occupancy < 0.25
}

// BufferStats is the observable snapshot spec §4.5 requires for tests.
type BufferStats struct {
	Size              int
	Capacity          int
	TotalBytesProcessed int
	UtilizationRatio  float64
	GrowthOperations  int
	CanShrink         bool
}

// StreamBuffer is a growable byte window: transport chunks are appended
// at the tail, parsers scan and consume from the head. Grounded in the
// teacher's channel-based pull loop (stream.go's Write) generalized
// from "read one chunk, write it out" to "accumulate bytes, let a
// scanner consume a prefix of them at its own pace".
type StreamBuffer struct {
	data   []byte
	cursor int // read position; bytes before cursor are already consumed

	totalProcessed int
	manager        *capacityManager
}

// NewStreamBuffer returns a buffer with the given initial/max capacity
// and hysteresis threshold for the shrink policy (spec §4.5).
func NewStreamBuffer(initialCapacity, maxCapacity, hysteresisThreshold int) *StreamBuffer {
	return &StreamBuffer{
		data:    make([]byte, 0, initialCapacity),
		manager: newCapacityManager(initialCapacity, maxCapacity, hysteresisThreshold),
	}
}

// Append copies b into the buffer's tail, growing the backing slice
// through the capacity manager when needed.
func (b *StreamBuffer) Append(chunk []byte) {
	needed := len(b.data) + len(chunk)
	if needed > cap(b.data) {
		newCap := b.manager.nextCapacity(cap(b.data), needed)
		grown := make([]byte, len(b.data), newCap)
		copy(grown, b.data)
		b.data = grown
	}
	b.data = append(b.data, chunk...)
}

// Consume advances the read cursor by n bytes, compacting the buffer
// when the manager's shrink policy allows it. A cursor advance never
// shrinks immediately — it only makes the buffer eligible; the actual
// compaction check happens here, once per consume, matching spec
// §4.5's "defers to the manager's next policy check".
func (b *StreamBuffer) Consume(n int) {
	b.cursor += n
	if b.cursor > len(b.data) {
		b.cursor = len(b.data)
	}
	b.totalProcessed += n

	remaining := len(b.data) - b.cursor
	if b.manager.canShrink(remaining, cap(b.data)) {
		compact := make([]byte, remaining, b.manager.initialCapacity)
		copy(compact, b.data[b.cursor:])
		b.data = compact
		b.cursor = 0
		b.manager.lastShrinkSize = remaining
		b.manager.growthOperations = 0
	} else if b.cursor > 0 && b.cursor == len(b.data) {
		// Fully drained: reclaim without waiting on hysteresis — there
		// is nothing to preserve, so this isn't the oscillation case
		// the policy guards against.
		b.data = b.data[:0]
		b.cursor = 0
	}
}

// AsBytes returns the currently readable slice (from the cursor to the
// end of appended data). The caller must not retain it across a
// subsequent Append/Consume call.
func (b *StreamBuffer) AsBytes() []byte {
	return b.data[b.cursor:]
}

// GetByteAt returns the byte at readable offset i (0 is the first
// unconsumed byte) and whether i was in range.
func (b *StreamBuffer) GetByteAt(i int) (byte, bool) {
	idx := b.cursor + i
	if idx < 0 || idx >= len(b.data) {
		return 0, false
	}
	return b.data[idx], true
}

// Len returns the number of currently readable bytes.
func (b *StreamBuffer) Len() int { return len(b.data) - b.cursor }

// IsEmpty reports whether there are no readable bytes left.
func (b *StreamBuffer) IsEmpty() bool { return b.Len() == 0 }

// FindObjectBoundaries performs the lightweight brace-balance scan from
// spec §4.5, honoring string/escape state, and returns the readable
// offsets (relative to AsBytes, i.e. 0-based from the cursor) of every
// top-level object close.
func (b *StreamBuffer) FindObjectBoundaries() []int {
	buf := b.AsBytes()
	var closes []int
	depth := 0
	inString := false
	escaped := false
	for i, c := range buf {
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				closes = append(closes, i)
			}
		}
	}
	return closes
}

// Stats returns the observable capacity/utilization snapshot.
func (b *StreamBuffer) Stats() BufferStats {
	capacity := cap(b.data)
	var utilization float64
	if capacity > 0 {
		utilization = float64(len(b.data)) / float64(capacity)
	}
	return BufferStats{
		Size:                b.Len(),
		Capacity:            capacity,
		TotalBytesProcessed: b.totalProcessed,
		UtilizationRatio:    utilization,
		GrowthOperations:    b.manager.growthOperations,
		CanShrink:           b.manager.canShrink(b.Len(), capacity),
	}
}
