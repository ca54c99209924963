package simulation

import (
	"fmt"
	"log"

	"github.com/sarchlab/fabricsim/noc/params"
	"github.com/sarchlab/fabricsim/noc/routing"
	"github.com/sarchlab/fabricsim/noc/topology"
)

// Simulator owns all per-connection wire state and per-component
// simulation objects of one fabric and advances them cycle by cycle. All
// state is created once at build time and mutated only during ticks.
type Simulator struct {
	graph  *topology.Network
	params *params.Store
	routes routing.Table

	cycle int64

	connections        []connectionState
	connectionIndexMap map[topology.ConnectionID]int

	// indexStore is a shared arena of connection indices. Components with
	// data-dependent port counts (routers) hold (start, count) handles into
	// it instead of per-instance slices.
	indexStore []int

	sources []*SimNetworkInterfaceSrc
	sinks   []*SimNetworkInterfaceSink
	links   []*SimLink
	routers []*SimInputBufferedVCRouter

	srcIndexMap  map[topology.ComponentID]int
	sinkIndexMap map[topology.ComponentID]int

	componentObjects map[topology.ComponentID]any

	logger *log.Logger
}

// Builder builds Simulators.
type Builder struct {
	graph  *topology.Network
	params *params.Store
	routes routing.Table
	logger *log.Logger
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{}
}

// WithTopology sets the network to simulate.
func (b Builder) WithTopology(n *topology.Network) Builder {
	b.graph = n
	return b
}

// WithParameters sets the parameter store of the network.
func (b Builder) WithParameters(p *params.Store) Builder {
	b.params = p
	return b
}

// WithRoutingTable sets the precomputed routing table routers consult.
func (b Builder) WithRoutingTable(t routing.Table) Builder {
	b.routes = t
	return b
}

// WithLogger sets the logger that receives the per-cycle trace. A nil
// logger disables tracing.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// Build creates the simulation objects for every connection and component
// of the topology. The simulator starts one cycle before cycle 0; the
// first RunCycle call simulates cycle 0.
func (b Builder) Build() (*Simulator, error) {
	if b.graph == nil || b.params == nil || b.routes == nil {
		panic("simulator requires a topology, parameters, and a routing table")
	}

	s := &Simulator{
		graph:              b.graph,
		params:             b.params,
		routes:             b.routes,
		cycle:              -1,
		connectionIndexMap: make(map[topology.ConnectionID]int),
		srcIndexMap:        make(map[topology.ComponentID]int),
		sinkIndexMap:       make(map[topology.ComponentID]int),
		componentObjects:   make(map[topology.ComponentID]any),
		logger:             b.logger,
	}

	for i := 0; i < b.graph.ConnectionCount(); i++ {
		if err := s.createConnection(topology.ConnectionID(i)); err != nil {
			return nil, err
		}
	}

	for i := 0; i < b.graph.ComponentCount(); i++ {
		if err := s.createComponent(topology.ComponentID(i)); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Simulator) createConnection(id topology.ConnectionID) error {
	conn := s.graph.Connection(id)

	// The VC count of a connection follows its driving port.
	srcParam, err := s.params.PortParam(conn.Src)
	if err != nil {
		return err
	}

	vcCount := srcParam.VirtualChannelCount()
	if vcCount == 0 {
		vcCount = 1
	}

	state := connectionState{
		id:      id,
		forward: TimedPhit{Cycle: s.cycle},
		reverse: make([]TimedCredit, vcCount),
	}
	for vc := range state.reverse {
		state.reverse[vc] = TimedCredit{Cycle: s.cycle}
	}

	s.connectionIndexMap[id] = len(s.connections)
	s.connections = append(s.connections, state)

	return nil
}

func (s *Simulator) createComponent(id topology.ComponentID) error {
	switch s.graph.Component(id).Kind {
	case topology.KindNetworkInterfaceSrc:
		src, err := newSimNetworkInterfaceSrc(s, id)
		if err != nil {
			return err
		}
		s.srcIndexMap[id] = len(s.sources)
		s.sources = append(s.sources, src)
		s.componentObjects[id] = src

	case topology.KindNetworkInterfaceSink:
		sink, err := newSimNetworkInterfaceSink(s, id)
		if err != nil {
			return err
		}
		s.sinkIndexMap[id] = len(s.sinks)
		s.sinks = append(s.sinks, sink)
		s.componentObjects[id] = sink

	case topology.KindLink:
		link, err := newSimLink(s, id)
		if err != nil {
			return err
		}
		s.links = append(s.links, link)
		s.componentObjects[id] = link

	case topology.KindRouter:
		router, err := newSimInputBufferedVCRouter(s, id)
		if err != nil {
			return err
		}
		s.routers = append(s.routers, router)
		s.componentObjects[id] = router

	default:
		return &UnsupportedComponentKindError{
			ID:   id,
			Kind: s.graph.Component(id).Kind,
		}
	}

	return nil
}

// CurrentCycle returns the cycle the simulator is settling or has settled.
func (s *Simulator) CurrentCycle() int64 {
	return s.cycle
}

// RunCycle advances the simulation by exactly one cycle: it increments the
// cycle counter and ticks all components until every one reports
// convergence. Exhausting maxTicks fails the entire run; it signals either
// a combinational cycle in the fabric or an inadequate budget.
func (s *Simulator) RunCycle(maxTicks int) error {
	s.cycle++
	s.logf("*** cycle %d", s.cycle)

	ticks := 0
	for converged := false; !converged; {
		if ticks >= maxTicks {
			return &ConvergenceError{Cycle: s.cycle, Ticks: ticks}
		}

		s.logf("tick %d", ticks)
		converged = s.tick()
		ticks++
	}

	return nil
}

// tick offers every component one chance to progress. Sources go first and
// sinks last so that a shallow fabric can settle in few ticks, but the
// order is a heuristic only: components that cannot progress yet simply
// report so and are retried.
func (s *Simulator) tick() bool {
	converged := true

	for _, src := range s.sources {
		c := src.tick(s, src)
		converged = converged && c
	}

	for _, link := range s.links {
		c := link.tick(s, link)
		converged = converged && c
	}

	for _, router := range s.routers {
		c := router.tick(s, router)
		converged = converged && c
	}

	for _, sink := range s.sinks {
		c := sink.tick(s, sink)
		converged = converged && c
	}

	return converged
}

// NetworkInterfaceSrc returns the simulation object of a source interface.
func (s *Simulator) NetworkInterfaceSrc(
	id topology.ComponentID,
) (*SimNetworkInterfaceSrc, error) {
	index, ok := s.srcIndexMap[id]
	if !ok {
		return nil, &ComponentNotFoundError{ID: id}
	}

	return s.sources[index], nil
}

// NetworkInterfaceSink returns the simulation object of a sink interface.
func (s *Simulator) NetworkInterfaceSink(
	id topology.ComponentID,
) (*SimNetworkInterfaceSink, error) {
	index, ok := s.sinkIndexMap[id]
	if !ok {
		return nil, &ComponentNotFoundError{ID: id}
	}

	return s.sinks[index], nil
}

// ConnectionSnapshots copies the current wire state of every connection,
// for diagnostics and monitoring.
func (s *Simulator) ConnectionSnapshots() []ConnectionSnapshot {
	snapshots := make([]ConnectionSnapshot, len(s.connections))
	for i, conn := range s.connections {
		reverse := make([]TimedCredit, len(conn.reverse))
		copy(reverse, conn.reverse)

		snapshots[i] = ConnectionSnapshot{
			ID:      conn.id,
			Forward: conn.forward,
			Reverse: reverse,
		}
	}

	return snapshots
}

// ComponentObjectByName returns the simulation object modeling the named
// topology component, for monitoring and diagnostics.
func (s *Simulator) ComponentObjectByName(name string) (any, bool) {
	id, ok := s.graph.ComponentByName(name)
	if !ok {
		return nil, false
	}

	obj, ok := s.componentObjects[id]

	return obj, ok
}

// ComponentNames lists the names of all simulated components, in topology
// order.
func (s *Simulator) ComponentNames() []string {
	names := make([]string, s.graph.ComponentCount())
	for i := range names {
		names[i] = s.graph.Component(topology.ComponentID(i)).Name
	}

	return names
}

// Dump logs the per-connection wire state and the component inventory.
// It is diagnostic only and has no simulation semantics.
func (s *Simulator) Dump() {
	if s.logger == nil {
		return
	}

	for _, conn := range s.connections {
		s.logf("connection %d fwd cycle %d data %x vc %d dest %d valid %v",
			conn.id, conn.forward.Cycle, conn.forward.Value.Data,
			conn.forward.Value.VC, conn.forward.Value.DestinationIndex,
			conn.forward.Value.Valid)

		for vc, credit := range conn.reverse {
			s.logf("  rev %d cycle %d credit %d valid %v",
				vc, credit.Cycle, credit.Value.Count, credit.Value.Valid)
		}
	}

	for i := 0; i < s.graph.ComponentCount(); i++ {
		comp := s.graph.Component(topology.ComponentID(i))
		s.logf("component %d %s kind %s", i, comp.Name, comp.Kind)
	}
}

func (s *Simulator) connection(index int) *connectionState {
	return &s.connections[index]
}

func (s *Simulator) connectionIndex(id topology.ConnectionID) (int, error) {
	index, ok := s.connectionIndexMap[id]
	if !ok {
		return 0, fmt.Errorf("connection %d has no simulation state", id)
	}

	return index, nil
}

// newConnectionIndexRange reserves count slots in the shared index arena
// and returns the handle to their start.
func (s *Simulator) newConnectionIndexRange(count int) int {
	start := len(s.indexStore)
	s.indexStore = append(s.indexStore, make([]int, count)...)

	return start
}

// connectionIndexRange returns the slots previously reserved with
// newConnectionIndexRange.
func (s *Simulator) connectionIndexRange(start, count int) []int {
	return s.indexStore[start : start+count]
}

func (s *Simulator) logf(format string, args ...any) {
	if s.logger == nil {
		return
	}

	s.logger.Printf(format, args...)
}
