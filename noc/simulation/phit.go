// Package simulation implements a cycle-accurate simulator for
// credit-based, virtual-channel network fabrics. Components exchange phits
// over connections, one value per connection per cycle, and a tick-polled
// convergence loop settles each cycle to a fixed point.
package simulation

// Phit is the smallest unit transferred over a connection in one cycle.
// The zero value is a bubble: an explicit "no data this cycle" phit.
type Phit struct {
	Valid bool

	// Data is the payload carried by the phit.
	Data uint64

	// DestinationIndex names the sink interface the phit is headed to.
	// Routers use it to look the next hop up in the routing table.
	DestinationIndex int

	// VC is the virtual channel the phit occupies on its current
	// connection.
	VC int
}

// Credit is the reverse-channel counterpart of a Phit. It grants the
// upstream sender Count units of downstream buffer space on one VC. The
// zero value is an explicit "no credit this cycle".
type Credit struct {
	Valid bool
	Count int
}

// Timed pairs a wire value with the cycle at which it was last written.
// The value is meaningful only when Cycle equals the simulator's current
// cycle; a stale stamp means the wire has not been driven yet this cycle.
type Timed[V any] struct {
	Cycle int64
	Value V
}

// TimedPhit is a cycle-stamped data phit.
type TimedPhit = Timed[Phit]

// TimedCredit is a cycle-stamped credit phit.
type TimedCredit = Timed[Credit]
