package simulation

import "github.com/sarchlab/fabricsim/noc/topology"

// A propagator is a simulation component that settles its wire values for
// the current cycle in two phases. Both operations report whether they
// completed for the cycle; an incomplete component is simply retried on a
// later tick, so correctness never depends on visitation order.
type propagator interface {
	// TryForwardPropagation moves data phits toward their sinks.
	TryForwardPropagation(s *Simulator) bool

	// TryReversePropagation moves credit phits back toward the sources.
	TryReversePropagation(s *Simulator) bool
}

// componentBase carries the state every component shares: its identity and
// the last cycle at which each propagation direction completed. The driver
// only re-asks a component for a direction it has not finished this cycle.
type componentBase struct {
	id topology.ComponentID

	forwardPropagatedCycle int64
	reversePropagatedCycle int64
}

func makeComponentBase(id topology.ComponentID, cycle int64) componentBase {
	return componentBase{
		id:                     id,
		forwardPropagatedCycle: cycle,
		reversePropagatedCycle: cycle,
	}
}

// ID returns the topological component this simulation object models.
func (c *componentBase) ID() topology.ComponentID {
	return c.id
}

// tick offers the component one chance to make forward and reverse
// progress. It returns true once both directions have completed for the
// current cycle. Forward is always attempted before reverse within a tick,
// which components rely on for their once-per-cycle credit bookkeeping.
func (c *componentBase) tick(s *Simulator, p propagator) bool {
	cycle := s.CurrentCycle()

	converged := true
	if c.forwardPropagatedCycle != cycle {
		if p.TryForwardPropagation(s) {
			c.forwardPropagatedCycle = cycle
		} else {
			converged = false
		}
	}
	if c.reversePropagatedCycle != cycle {
		if p.TryReversePropagation(s) {
			c.reversePropagatedCycle = cycle
		} else {
			converged = false
		}
	}

	return converged
}

// creditState is a cycle-stamped pending credit update. Stamping with the
// cycle the update was received guards against applying it twice.
type creditState struct {
	cycle  int64
	credit int
}
