package simulation

import (
	"github.com/sarchlab/fabricsim/noc/topology"
)

// SimNetworkInterfaceSink drains traffic from the fabric. Every delivered
// phit is appended to an ordered received-traffic record and immediately
// repaid with a one-unit credit on its VC. At cycle 0 the sink bootstraps
// the credit loop by granting each VC its full buffer depth.
type SimNetworkInterfaceSink struct {
	componentBase

	srcConnectionIndex int

	// bufferDepths holds, per VC, the capacity advertised to the upstream
	// sender through credits.
	bufferDepths []int

	receivedTraffic []TimedPhit
}

func newSimNetworkInterfaceSink(
	s *Simulator,
	id topology.ComponentID,
) (*SimNetworkInterfaceSink, error) {
	sink := &SimNetworkInterfaceSink{
		componentBase: makeComponentBase(id, s.CurrentCycle()),
	}

	port := topology.PortID{Component: id, Port: 0}
	portParam, err := s.params.PortParam(port)
	if err != nil {
		return nil, err
	}

	sink.bufferDepths = make([]int, portParam.VirtualChannelCount())
	for vc, vcParam := range portParam.VirtualChannels {
		sink.bufferDepths[vc] = vcParam.Depth
	}

	sink.srcConnectionIndex, err =
		s.connectionIndex(s.graph.PortConnection(port))
	if err != nil {
		return nil, err
	}

	return sink, nil
}

// TryForwardPropagation records the delivered phit, if any, and stamps this
// cycle's credit returns: one credit on the receiving VC, a full-depth
// bootstrap grant on every VC at cycle 0, and an explicit zero credit on
// VCs that received nothing. Completes as soon as the upstream slot is
// driven for this cycle.
func (n *SimNetworkInterfaceSink) TryForwardPropagation(s *Simulator) bool {
	cycle := s.CurrentCycle()
	src := s.connection(n.srcConnectionIndex)

	if src.forward.Cycle != cycle {
		return false
	}

	if src.forward.Value.Valid {
		vc := src.forward.Value.VC
		n.receivedTraffic = append(n.receivedTraffic, TimedPhit{
			Cycle: cycle,
			Value: src.forward.Value,
		})

		src.reverse[vc] = TimedCredit{
			Cycle: cycle,
			Value: Credit{Valid: true, Count: 1},
		}

		s.logf("ni-sink %d received data %x on vc %d cycle %d",
			n.id, src.forward.Value.Data, vc, cycle)
	}

	if cycle == 0 {
		// Upon reset, grant each VC its full buffer depth so senders can
		// start transmitting.
		for vc := range src.reverse {
			src.reverse[vc] = TimedCredit{
				Cycle: cycle,
				Value: Credit{Valid: true, Count: n.bufferDepths[vc]},
			}

			s.logf("ni-sink %d bootstrap credit %d vc %d",
				n.id, n.bufferDepths[vc], vc)
		}
	} else {
		// Idle VCs still drive an explicit zero credit. Downstream silence
		// is indistinguishable from non-convergence, so it is never allowed.
		for vc := range src.reverse {
			if src.reverse[vc].Cycle != cycle {
				src.reverse[vc] = TimedCredit{Cycle: cycle}
			}
		}
	}

	return true
}

// TryReversePropagation is trivially complete: all reverse-channel writes
// already happened during forward propagation.
func (n *SimNetworkInterfaceSink) TryReversePropagation(*Simulator) bool {
	return true
}

// ReceivedTraffic returns the ordered, append-only record of phits this
// sink has observed.
func (n *SimNetworkInterfaceSink) ReceivedTraffic() []TimedPhit {
	return n.receivedTraffic
}
