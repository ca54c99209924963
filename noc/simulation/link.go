package simulation

import (
	"fmt"

	"github.com/sarchlab/fabricsim/noc/topology"
)

// SimLink models a pipelined point-to-point link. Data phits cross it
// through a single forward pipeline; credit phits cross it back through
// one reverse pipeline per virtual channel.
type SimLink struct {
	componentBase

	forwardPipelineStages int
	reversePipelineStages int
	phitWidth             int

	// srcConnectionIndex feeds the link; dstConnectionIndex is driven by
	// it. Indices point into the simulator's connection table.
	srcConnectionIndex int
	dstConnectionIndex int

	forwardPipeline  pipeline[Phit]
	reversePipelines []pipeline[Credit]
}

func newSimLink(s *Simulator, id topology.ComponentID) (*SimLink, error) {
	l := &SimLink{
		componentBase: makeComponentBase(id, s.CurrentCycle()),
	}

	param, err := s.params.LinkParam(id)
	if err != nil {
		return nil, err
	}
	l.forwardPipelineStages = param.SourceToSinkPipelineStages
	l.reversePipelineStages = param.SinkToSourcePipelineStages
	l.phitWidth = param.PhitDataBitWidth

	comp := s.graph.Component(id)
	if len(comp.Ports) != 2 {
		return nil, fmt.Errorf(
			"link %s must have exactly 2 ports, has %d",
			comp.Name, len(comp.Ports))
	}

	// A link receives data on its input port and drives its output port,
	// whichever order the topology listed them in.
	srcPort := topology.PortID{Component: id, Port: 0}
	dstPort := topology.PortID{Component: id, Port: 1}
	if s.graph.PortDirectionOf(srcPort) == topology.Output {
		srcPort, dstPort = dstPort, srcPort
	}

	l.srcConnectionIndex, err =
		s.connectionIndex(s.graph.PortConnection(srcPort))
	if err != nil {
		return nil, err
	}
	l.dstConnectionIndex, err =
		s.connectionIndex(s.graph.PortConnection(dstPort))
	if err != nil {
		return nil, err
	}

	l.forwardPipeline = pipeline[Phit]{stageCount: l.forwardPipelineStages}

	dst := s.connection(l.dstConnectionIndex)
	l.reversePipelines = make([]pipeline[Credit], len(dst.reverse))
	for vc := range l.reversePipelines {
		l.reversePipelines[vc] =
			pipeline[Credit]{stageCount: l.reversePipelineStages}
	}

	return l, nil
}

// TryForwardPropagation pushes the upstream data phit into the forward
// pipeline and emits the phit (or bubble) that falls out the far end.
func (l *SimLink) TryForwardPropagation(s *Simulator) bool {
	src := s.connection(l.srcConnectionIndex)
	dst := s.connection(l.dstConnectionIndex)

	propagated := l.forwardPipeline.tryPropagation(
		s.CurrentCycle(), &src.forward, &dst.forward)

	if propagated {
		s.logf("link %d forward propagated connection %d -> %d data %x valid %v",
			l.id, src.id, dst.id, dst.forward.Value.Data, dst.forward.Value.Valid)
	}

	return propagated
}

// TryReversePropagation advances every VC's credit pipeline. The link
// converges only once all VCs have propagated for this cycle.
func (l *SimLink) TryReversePropagation(s *Simulator) bool {
	src := s.connection(l.srcConnectionIndex)
	dst := s.connection(l.dstConnectionIndex)

	propagated := 0
	for vc := range l.reversePipelines {
		if l.reversePipelines[vc].tryPropagation(
			s.CurrentCycle(), &dst.reverse[vc], &src.reverse[vc]) {
			propagated++
		}
	}

	return propagated == len(l.reversePipelines)
}
