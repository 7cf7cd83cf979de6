package engine

// clock is the Revision Clock: a monotonically increasing counter
// advanced only by the input write path, and only while
// Database.activeCount == 0 (Invariant 1, §3). It is guarded entirely by
// Database.mu; it has no lock of its own.
type clock struct {
	current Revision
}

func (c *clock) advance() Revision {
	c.current++
	return c.current
}
