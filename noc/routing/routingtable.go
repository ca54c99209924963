// Package routing provides the precomputed routing tables routers consult
// during arbitration.
package routing

import (
	"fmt"

	"github.com/sarchlab/fabricsim/noc/topology"
)

// PortAndVC names an output port together with the virtual channel to use
// on it.
type PortAndVC struct {
	Port topology.PortID
	VC   int
}

// Table maps (input port, virtual channel, destination) to the output port
// and VC a phit must take next. Tables are precomputed before simulation;
// a missing entry indicates a malformed program, not a runtime condition.
type Table interface {
	// OutputFor finds the next hop for a phit that arrived on the given
	// input port and VC and is headed to the given destination index.
	OutputFor(input topology.PortID, vc, destination int) (PortAndVC, error)

	// DefineRoute adds one entry to the table.
	DefineRoute(input topology.PortID, vc, destination int, output PortAndVC)
}

// MissingRouteError reports a routing-table lookup with no matching entry.
type MissingRouteError struct {
	Input       topology.PortID
	VC          int
	Destination int
}

func (e *MissingRouteError) Error() string {
	return fmt.Sprintf(
		"no route from port %v vc %d to destination %d",
		e.Input, e.VC, e.Destination)
}

type routeKey struct {
	input       topology.PortID
	vc          int
	destination int
}

// NewTable creates an empty routing table.
func NewTable() Table {
	return &table{
		routes: make(map[routeKey]PortAndVC),
	}
}

type table struct {
	routes map[routeKey]PortAndVC
}

func (t *table) OutputFor(
	input topology.PortID,
	vc, destination int,
) (PortAndVC, error) {
	out, found := t.routes[routeKey{input, vc, destination}]
	if !found {
		return PortAndVC{}, &MissingRouteError{
			Input:       input,
			VC:          vc,
			Destination: destination,
		}
	}

	return out, nil
}

func (t *table) DefineRoute(
	input topology.PortID,
	vc, destination int,
	output PortAndVC,
) {
	t.routes[routeKey{input, vc, destination}] = output
}
