// Package params stores the static parameters of a fabric: virtual channel
// counts and buffer depths per port, and pipeline depths and phit widths
// per link.
package params

import (
	"fmt"

	"github.com/sarchlab/fabricsim/noc/topology"
)

// VirtualChannelParam configures one virtual channel of a port.
type VirtualChannelParam struct {
	// Depth is the number of phits the downstream buffer of this VC holds.
	Depth int
}

// PortParam configures one port.
type PortParam struct {
	VirtualChannels []VirtualChannelParam
}

// VirtualChannelCount returns the number of VCs configured on the port.
func (p PortParam) VirtualChannelCount() int {
	return len(p.VirtualChannels)
}

// LinkParam configures one link component.
type LinkParam struct {
	// SourceToSinkPipelineStages is the forward (data) latency in cycles.
	SourceToSinkPipelineStages int

	// SinkToSourcePipelineStages is the reverse (credit) latency in cycles.
	SinkToSourcePipelineStages int

	// PhitDataBitWidth is the width of the data portion of a phit.
	PhitDataBitWidth int
}

// Store holds the parameters of every port and link of one network.
type Store struct {
	portParams map[topology.PortID]PortParam
	linkParams map[topology.ComponentID]LinkParam
}

// NewStore creates an empty parameter store.
func NewStore() *Store {
	return &Store{
		portParams: make(map[topology.PortID]PortParam),
		linkParams: make(map[topology.ComponentID]LinkParam),
	}
}

// SetPortParam records the parameters of a port.
func (s *Store) SetPortParam(id topology.PortID, p PortParam) {
	s.portParams[id] = p
}

// PortParam returns the parameters of a port.
func (s *Store) PortParam(id topology.PortID) (PortParam, error) {
	p, ok := s.portParams[id]
	if !ok {
		return PortParam{}, fmt.Errorf("no parameters for port %v", id)
	}

	return p, nil
}

// SetLinkParam records the parameters of a link component.
func (s *Store) SetLinkParam(id topology.ComponentID, p LinkParam) {
	s.linkParams[id] = p
}

// LinkParam returns the parameters of a link component.
func (s *Store) LinkParam(id topology.ComponentID) (LinkParam, error) {
	p, ok := s.linkParams[id]
	if !ok {
		return LinkParam{}, fmt.Errorf("no parameters for link %v", id)
	}

	return p, nil
}

// UniformVCs is a convenience that builds a PortParam with vcCount
// identical virtual channels of the given buffer depth.
func UniformVCs(vcCount, depth int) PortParam {
	vcs := make([]VirtualChannelParam, vcCount)
	for i := range vcs {
		vcs[i].Depth = depth
	}

	return PortParam{VirtualChannels: vcs}
}
