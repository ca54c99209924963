package simulation

import (
	"fmt"

	"github.com/sarchlab/fabricsim/noc/topology"
)

// UnsupportedComponentKindError reports a topology component the simulator
// has no model for.
type UnsupportedComponentKindError struct {
	ID   topology.ComponentID
	Kind topology.ComponentKind
}

func (e *UnsupportedComponentKindError) Error() string {
	return fmt.Sprintf(
		"unsupported network component kind %s for component %d",
		e.Kind, e.ID)
}

// VCRangeError reports the use of a virtual channel index beyond a
// component's configured VC count.
type VCRangeError struct {
	VC      int
	VCCount int
}

func (e *VCRangeError) Error() string {
	return fmt.Sprintf(
		"unable to send phit to vc index %d, max %d", e.VC, e.VCCount)
}

// ComponentNotFoundError reports a lookup of a component that has no
// simulation object of the requested type.
type ComponentNotFoundError struct {
	ID topology.ComponentID
}

func (e *ComponentNotFoundError) Error() string {
	return fmt.Sprintf("unable to find sim object for component %d", e.ID)
}

// ConvergenceError reports that a cycle failed to reach a fixed point
// within the tick budget. It is fatal to the run: it signals either a
// combinational cycle in the modeled fabric or an inadequate budget.
type ConvergenceError struct {
	Cycle int64
	Ticks int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf(
		"simulator unable to converge after %d ticks for cycle %d",
		e.Ticks, e.Cycle)
}
