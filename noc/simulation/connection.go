package simulation

import "github.com/sarchlab/fabricsim/noc/topology"

// connectionState holds the per-cycle wire values of one topological
// connection: a single forward data slot and one reverse credit slot per
// virtual channel. By construction each slot has exactly one writer per
// propagation phase per cycle, so components may share the table without
// coordination.
type connectionState struct {
	id topology.ConnectionID

	forward TimedPhit
	reverse []TimedCredit
}

// ConnectionSnapshot is a read-only copy of one connection's wire state,
// exposed for diagnostics and monitoring only.
type ConnectionSnapshot struct {
	ID      topology.ConnectionID
	Forward TimedPhit
	Reverse []TimedCredit
}
