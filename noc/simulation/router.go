package simulation

import (
	"fmt"

	"github.com/sarchlab/fabricsim/noc/topology"
)

// vcBuffer is the bounded FIFO a router keeps per (input port, VC). Its
// bound is enforced by the credit protocol, not by the queue itself: the
// upstream sender can only inject what it holds credits for.
type vcBuffer struct {
	depth int
	queue []Phit
}

// SimInputBufferedVCRouter models an input-buffered virtual-channel router
// with no output buffering: each output connection carries at most one
// phit per cycle, awarded by fixed (VC ascending, input port ascending)
// priority. Sustained contention therefore starves high-index inputs by
// policy.
type SimInputBufferedVCRouter struct {
	componentBase

	// Handles into the simulator's shared connection-index store. Routers
	// have data-dependent port counts, so their connection lists live in a
	// growable arena rather than per-instance allocations.
	inputConnectionIndexStart int
	inputConnectionCount      int

	outputConnectionIndexStart int
	outputConnectionCount      int

	inputPorts []topology.PortID

	inputBuffers      [][]vcBuffer // [input port][vc]
	inputCreditToSend [][]int      // [input port][vc]

	credits       [][]int         // [output port][vc]
	creditUpdates [][]creditState // [output port][vc]

	maxVC int

	// internalPropagatedCycle guards the once-per-cycle application of
	// pending output credit updates.
	internalPropagatedCycle int64
}

func newSimInputBufferedVCRouter(
	s *Simulator,
	id topology.ComponentID,
) (*SimInputBufferedVCRouter, error) {
	r := &SimInputBufferedVCRouter{
		componentBase:           makeComponentBase(id, s.CurrentCycle()),
		internalPropagatedCycle: s.CurrentCycle(),
	}

	if err := r.initializeInputs(s, id); err != nil {
		return nil, err
	}

	if err := r.initializeOutputs(s, id); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *SimInputBufferedVCRouter) initializeInputs(
	s *Simulator,
	id topology.ComponentID,
) error {
	r.inputPorts = s.graph.PortsByDirection(id, topology.Input)
	r.inputConnectionCount = len(r.inputPorts)
	r.inputConnectionIndexStart =
		s.newConnectionIndexRange(r.inputConnectionCount)
	indices := s.connectionIndexRange(
		r.inputConnectionIndexStart, r.inputConnectionCount)

	r.inputBuffers = make([][]vcBuffer, r.inputConnectionCount)
	r.inputCreditToSend = make([][]int, r.inputConnectionCount)

	for i, port := range r.inputPorts {
		index, err := s.connectionIndex(s.graph.PortConnection(port))
		if err != nil {
			return err
		}
		indices[i] = index

		portParam, err := s.params.PortParam(port)
		if err != nil {
			return err
		}

		vcCount := portParam.VirtualChannelCount()
		r.inputBuffers[i] = make([]vcBuffer, vcCount)
		for vc, vcParam := range portParam.VirtualChannels {
			r.inputBuffers[i][vc].depth = vcParam.Depth
		}
		r.inputCreditToSend[i] = make([]int, vcCount)

		if vcCount > r.maxVC {
			r.maxVC = vcCount
		}
	}

	return nil
}

func (r *SimInputBufferedVCRouter) initializeOutputs(
	s *Simulator,
	id topology.ComponentID,
) error {
	outputPorts := s.graph.PortsByDirection(id, topology.Output)
	r.outputConnectionCount = len(outputPorts)
	r.outputConnectionIndexStart =
		s.newConnectionIndexRange(r.outputConnectionCount)
	indices := s.connectionIndexRange(
		r.outputConnectionIndexStart, r.outputConnectionCount)

	r.credits = make([][]int, r.outputConnectionCount)
	r.creditUpdates = make([][]creditState, r.outputConnectionCount)

	for i, port := range outputPorts {
		index, err := s.connectionIndex(s.graph.PortConnection(port))
		if err != nil {
			return err
		}
		indices[i] = index

		portParam, err := s.params.PortParam(port)
		if err != nil {
			return err
		}

		vcCount := portParam.VirtualChannelCount()
		r.credits[i] = make([]int, vcCount)
		r.creditUpdates[i] = make([]creditState, vcCount)
		for vc := range r.creditUpdates[i] {
			r.creditUpdates[i][vc] = creditState{cycle: s.CurrentCycle()}
		}
	}

	return nil
}

// portIndexAndVC names a directional port index plus a VC on it.
type portIndexAndVC struct {
	portIndex int
	vc        int
}

// destinationOf resolves the routing table for a phit buffered at the given
// input. A missing route means a malformed routing program; it is not a
// condition the per-cycle loop can recover from.
func (r *SimInputBufferedVCRouter) destinationOf(
	s *Simulator,
	input portIndexAndVC,
	destinationIndex int,
) portIndexAndVC {
	inputPort := r.inputPorts[input.portIndex]

	out, err := s.routes.OutputFor(inputPort, input.vc, destinationIndex)
	if err != nil {
		panic(err)
	}

	outputIndex, err := s.graph.DirectionalPortIndex(out.Port)
	if err != nil {
		panic(fmt.Sprintf("router %d: %s", r.id, err))
	}

	return portIndexAndVC{portIndex: outputIndex, vc: out.VC}
}

// TryForwardPropagation completes only once every input connection has been
// driven for this cycle. It then enqueues arrivals, arbitrates buffered
// phits to output connections by fixed priority, and fills the remaining
// outputs with bubbles.
func (r *SimInputBufferedVCRouter) TryForwardPropagation(s *Simulator) bool {
	cycle := s.CurrentCycle()
	inputIndices := s.connectionIndexRange(
		r.inputConnectionIndexStart, r.inputConnectionCount)
	outputIndices := s.connectionIndexRange(
		r.outputConnectionIndexStart, r.outputConnectionCount)

	// Apply pending output credit updates from last cycle, once.
	if r.internalPropagatedCycle != cycle {
		for i := range r.creditUpdates {
			for vc := range r.creditUpdates[i] {
				if r.creditUpdates[i][vc].credit > 0 {
					r.credits[i][vc] += r.creditUpdates[i][vc].credit
					r.creditUpdates[i][vc].credit = 0

					s.logf("router %d output %d vc %d credits now %d",
						r.id, i, vc, r.credits[i][vc])
				}
			}
		}

		r.internalPropagatedCycle = cycle
	}

	// The router switches all inputs at once, so every input connection
	// must carry a defined value (phit or bubble) before anything moves.
	for _, index := range inputIndices {
		if s.connection(index).forward.Cycle != cycle {
			return false
		}
	}

	for i := range r.inputCreditToSend {
		for vc := range r.inputCreditToSend[i] {
			r.inputCreditToSend[i][vc] = 0
		}
	}

	// Arrivals enter the input buffers before arbitration, so a phit can
	// traverse the router in the cycle it arrives.
	for i, index := range inputIndices {
		input := s.connection(index)
		if input.forward.Value.Valid {
			vc := input.forward.Value.VC
			r.inputBuffers[i][vc].queue =
				append(r.inputBuffers[i][vc].queue, input.forward.Value)

			s.logf("router %d received data %x port %d vc %d",
				r.id, input.forward.Value.Data, i, vc)
		}
	}

	r.arbitrate(s, outputIndices)

	// Outputs that found no winner still drive an explicit bubble.
	for _, index := range outputIndices {
		output := s.connection(index)
		if output.forward.Cycle != cycle {
			output.forward = TimedPhit{Cycle: cycle}
		}
	}

	return true
}

// arbitrate routes buffered phits to output connections with fixed
// priority: ascending VC outermost, ascending input port innermost. Each
// output connection takes exactly one winner per cycle.
func (r *SimInputBufferedVCRouter) arbitrate(
	s *Simulator,
	outputIndices []int,
) {
	cycle := s.CurrentCycle()

	for vc := 0; vc < r.maxVC; vc++ {
		for i := range r.inputBuffers {
			if vc >= len(r.inputBuffers[i]) {
				continue
			}

			buffer := &r.inputBuffers[i][vc]
			if len(buffer.queue) == 0 {
				continue
			}

			phit := buffer.queue[0]
			output := r.destinationOf(s,
				portIndexAndVC{portIndex: i, vc: vc}, phit.DestinationIndex)

			if r.credits[output.portIndex][output.vc] <= 0 {
				s.logf("router %d no credit for data %x to output %d vc %d",
					r.id, phit.Data, output.portIndex, output.vc)
				continue
			}

			// No output speedup: skip if a higher-priority winner already
			// claimed this output connection.
			outputState := s.connection(outputIndices[output.portIndex])
			if outputState.forward.Cycle == cycle {
				continue
			}

			phit.Valid = true
			phit.VC = output.vc
			outputState.forward = TimedPhit{Cycle: cycle, Value: phit}

			r.credits[output.portIndex][output.vc]--
			r.inputCreditToSend[i][vc]++
			buffer.queue = buffer.queue[1:]

			s.logf("router %d sending data %x from input %d to output %d vc %d"+
				" credit now %d",
				r.id, phit.Data, i, output.portIndex, output.vc,
				r.credits[output.portIndex][output.vc])
		}
	}
}

// TryReversePropagation runs only after forward propagation has finished
// this cycle. It unconditionally repays credits upstream for every input
// (full depth at cycle 0, this cycle's forwarded count otherwise) and
// latches credits arriving from downstream. It completes once every output
// VC's credit has arrived.
func (r *SimInputBufferedVCRouter) TryReversePropagation(s *Simulator) bool {
	cycle := s.CurrentCycle()

	if r.forwardPropagatedCycle != cycle {
		return false
	}

	inputIndices := s.connectionIndexRange(
		r.inputConnectionIndexStart, r.inputConnectionCount)
	for i, index := range inputIndices {
		input := s.connection(index)

		for vc := range input.reverse {
			count := r.inputCreditToSend[i][vc]
			if cycle == 0 {
				// Upon reset, a full credit grant is sent.
				count = r.inputBuffers[i][vc].depth
			}

			input.reverse[vc] = TimedCredit{
				Cycle: cycle,
				Value: Credit{Valid: true, Count: count},
			}

			s.logf("router %d sending credit %d input %d vc %d",
				r.id, count, i, vc)
		}
	}

	outputIndices := s.connectionIndexRange(
		r.outputConnectionIndexStart, r.outputConnectionCount)

	propagated := 0
	possible := 0
	for i := range r.creditUpdates {
		output := s.connection(outputIndices[i])

		for vc := range r.creditUpdates[i] {
			possible++

			possibleCredit := output.reverse[vc]
			if possibleCredit.Cycle != cycle {
				continue
			}

			if r.creditUpdates[i][vc].cycle != cycle {
				r.creditUpdates[i][vc].cycle = cycle
				if possibleCredit.Value.Valid {
					r.creditUpdates[i][vc].credit = possibleCredit.Value.Count
				} else {
					r.creditUpdates[i][vc].credit = 0
				}

				s.logf("router %d received credit %d output %d vc %d",
					r.id, r.creditUpdates[i][vc].credit, i, vc)
			}

			propagated++
		}
	}

	return propagated == possible
}
