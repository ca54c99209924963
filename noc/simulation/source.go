package simulation

import (
	"github.com/sarchlab/fabricsim/noc/topology"
)

// SimNetworkInterfaceSrc injects traffic into the fabric. It holds one
// outbound phit queue and one credit balance per virtual channel; a queued
// phit is released only when its injection cycle has arrived and a credit
// is available on its VC.
type SimNetworkInterfaceSrc struct {
	componentBase

	dstConnectionIndex int

	// toSend holds, per VC, the phits queued for injection. A phit's
	// stamped cycle is the earliest cycle at which it may leave.
	toSend [][]TimedPhit

	credits       []int
	creditUpdates []creditState
}

func newSimNetworkInterfaceSrc(
	s *Simulator,
	id topology.ComponentID,
) (*SimNetworkInterfaceSrc, error) {
	src := &SimNetworkInterfaceSrc{
		componentBase: makeComponentBase(id, s.CurrentCycle()),
	}

	port := topology.PortID{Component: id, Port: 0}
	portParam, err := s.params.PortParam(port)
	if err != nil {
		return nil, err
	}

	vcCount := portParam.VirtualChannelCount()
	src.toSend = make([][]TimedPhit, vcCount)
	src.credits = make([]int, vcCount)
	src.creditUpdates = make([]creditState, vcCount)
	for vc := range src.creditUpdates {
		src.creditUpdates[vc] = creditState{cycle: s.CurrentCycle()}
	}

	src.dstConnectionIndex, err =
		s.connectionIndex(s.graph.PortConnection(port))
	if err != nil {
		return nil, err
	}

	return src, nil
}

// SendPhitAtTime queues a phit for injection. The phit's VC selects the
// queue; its stamped cycle is the earliest cycle it may enter the fabric.
// A VC index beyond the interface's configured VC count is a structural
// error.
func (n *SimNetworkInterfaceSrc) SendPhitAtTime(phit TimedPhit) error {
	vc := phit.Value.VC
	if vc < 0 || vc >= len(n.toSend) {
		return &VCRangeError{VC: vc, VCCount: len(n.toSend)}
	}

	n.toSend[vc] = append(n.toSend[vc], phit)

	return nil
}

// TryForwardPropagation applies last cycle's credit grant, then releases at
// most one phit: VCs are scanned in ascending order and the first with an
// eligible head phit and a positive credit balance wins. It always
// completes in a single attempt.
func (n *SimNetworkInterfaceSrc) TryForwardPropagation(s *Simulator) bool {
	cycle := s.CurrentCycle()
	dst := s.connection(n.dstConnectionIndex)

	// Credits received during last cycle's reverse phase are applied here,
	// before sending. Forward propagation runs exactly once per cycle and
	// always before reverse, so no extra cycle guard is needed.
	for vc := range n.credits {
		if n.creditUpdates[vc].credit > 0 {
			n.credits[vc] += n.creditUpdates[vc].credit
			n.creditUpdates[vc].credit = 0
			s.logf("ni-src %d vc %d credits now %d", n.id, vc, n.credits[vc])
		}
	}

	sent := false
	for vc := range n.toSend {
		queue := n.toSend[vc]
		if len(queue) == 0 || queue[0].Cycle > cycle {
			continue
		}

		if n.credits[vc] <= 0 {
			s.logf("ni-src %d vc %d no credit for data %x",
				n.id, vc, queue[0].Value.Data)
			continue
		}

		phit := queue[0].Value
		phit.Valid = true
		phit.VC = vc
		dst.forward = TimedPhit{Cycle: cycle, Value: phit}

		n.credits[vc]--
		n.toSend[vc] = queue[1:]
		sent = true

		s.logf("ni-src %d sending data %x vc %d credit now %d",
			n.id, phit.Data, vc, n.credits[vc])

		// One phit per forward slot per cycle.
		break
	}

	if !sent {
		dst.forward = TimedPhit{Cycle: cycle}
	}

	return true
}

// TryReversePropagation latches the credits returned on every VC's reverse
// channel into the pending update for next cycle. It completes only once
// every VC's credit phit has been stamped for this cycle.
func (n *SimNetworkInterfaceSrc) TryReversePropagation(s *Simulator) bool {
	cycle := s.CurrentCycle()
	dst := s.connection(n.dstConnectionIndex)

	propagated := 0
	for vc := range n.creditUpdates {
		possibleCredit := dst.reverse[vc]
		if possibleCredit.Cycle != cycle {
			continue
		}

		if n.creditUpdates[vc].cycle != cycle {
			n.creditUpdates[vc].cycle = cycle
			if possibleCredit.Value.Valid {
				n.creditUpdates[vc].credit = possibleCredit.Value.Count
			} else {
				n.creditUpdates[vc].credit = 0
			}

			s.logf("ni-src %d received credit %d vc %d via connection %d",
				n.id, n.creditUpdates[vc].credit, vc, dst.id)
		}

		propagated++
	}

	return propagated == len(n.creditUpdates)
}

// PendingPhitCount returns the number of phits still queued for injection
// across all VCs.
func (n *SimNetworkInterfaceSrc) PendingPhitCount() int {
	count := 0
	for _, queue := range n.toSend {
		count += len(queue)
	}

	return count
}
