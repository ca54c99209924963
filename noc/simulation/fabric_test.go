package simulation

import (
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fabricsim/noc/params"
	"github.com/sarchlab/fabricsim/noc/routing"
	"github.com/sarchlab/fabricsim/noc/topology"
)

// linearFabric is a source, one link, and a sink in a line.
type linearFabric struct {
	sim  *Simulator
	src  *SimNetworkInterfaceSrc
	sink *SimNetworkInterfaceSink
}

func buildLinearFabric(
	vcCount, depth, fwdStages, revStages int,
) *linearFabric {
	graph := topology.NewNetwork()
	store := params.NewStore()

	srcID := graph.AddComponent("Src", topology.KindNetworkInterfaceSrc)
	linkID := graph.AddComponent("Link", topology.KindLink)
	sinkID := graph.AddComponent("Sink", topology.KindNetworkInterfaceSink)

	srcOut := graph.AddPort(srcID, topology.Output)
	linkIn := graph.AddPort(linkID, topology.Input)
	linkOut := graph.AddPort(linkID, topology.Output)
	sinkIn := graph.AddPort(sinkID, topology.Input)

	_, err := graph.Connect(srcOut, linkIn)
	Expect(err).ToNot(HaveOccurred())
	_, err = graph.Connect(linkOut, sinkIn)
	Expect(err).ToNot(HaveOccurred())

	portParam := params.UniformVCs(vcCount, depth)
	store.SetPortParam(srcOut, portParam)
	store.SetPortParam(linkIn, portParam)
	store.SetPortParam(linkOut, portParam)
	store.SetPortParam(sinkIn, portParam)
	store.SetLinkParam(linkID, params.LinkParam{
		SourceToSinkPipelineStages: fwdStages,
		SinkToSourcePipelineStages: revStages,
		PhitDataBitWidth:           64,
	})

	sim, err := MakeBuilder().
		WithTopology(graph).
		WithParameters(store).
		WithRoutingTable(routing.NewTable()).
		Build()
	Expect(err).ToNot(HaveOccurred())

	src, err := sim.NetworkInterfaceSrc(srcID)
	Expect(err).ToNot(HaveOccurred())
	sink, err := sim.NetworkInterfaceSink(sinkID)
	Expect(err).ToNot(HaveOccurred())

	return &linearFabric{sim: sim, src: src, sink: sink}
}

// routerFabric is two sources feeding one router that drains into a single
// sink. Connections attach directly, so a phit injected at cycle N is
// deliverable at cycle N.
type routerFabric struct {
	sim        *Simulator
	srcs       []*SimNetworkInterfaceSrc
	sink       *SimNetworkInterfaceSink
	inputPorts []topology.PortID
	outputPort topology.PortID
}

// buildTwoSourceRouterFabric builds the fabric. If table is nil, a real
// routing table is built that routes every input to the single output on
// VC 0 for destination 0.
func buildTwoSourceRouterFabric(depth int, table routing.Table) *routerFabric {
	graph := topology.NewNetwork()
	store := params.NewStore()

	src0ID := graph.AddComponent("Src0", topology.KindNetworkInterfaceSrc)
	src1ID := graph.AddComponent("Src1", topology.KindNetworkInterfaceSrc)
	routerID := graph.AddComponent("Router", topology.KindRouter)
	sinkID := graph.AddComponent("Sink", topology.KindNetworkInterfaceSink)

	src0Out := graph.AddPort(src0ID, topology.Output)
	src1Out := graph.AddPort(src1ID, topology.Output)
	routerIn0 := graph.AddPort(routerID, topology.Input)
	routerIn1 := graph.AddPort(routerID, topology.Input)
	routerOut := graph.AddPort(routerID, topology.Output)
	sinkIn := graph.AddPort(sinkID, topology.Input)

	for _, pair := range [][2]topology.PortID{
		{src0Out, routerIn0},
		{src1Out, routerIn1},
		{routerOut, sinkIn},
	} {
		_, err := graph.Connect(pair[0], pair[1])
		Expect(err).ToNot(HaveOccurred())
	}

	portParam := params.UniformVCs(1, depth)
	for _, port := range []topology.PortID{
		src0Out, src1Out, routerIn0, routerIn1, routerOut, sinkIn,
	} {
		store.SetPortParam(port, portParam)
	}

	if table == nil {
		realTable := routing.NewTable()
		output := routing.PortAndVC{Port: routerOut, VC: 0}
		realTable.DefineRoute(routerIn0, 0, 0, output)
		realTable.DefineRoute(routerIn1, 0, 0, output)
		table = realTable
	}

	sim, err := MakeBuilder().
		WithTopology(graph).
		WithParameters(store).
		WithRoutingTable(table).
		Build()
	Expect(err).ToNot(HaveOccurred())

	src0, err := sim.NetworkInterfaceSrc(src0ID)
	Expect(err).ToNot(HaveOccurred())
	src1, err := sim.NetworkInterfaceSrc(src1ID)
	Expect(err).ToNot(HaveOccurred())
	sink, err := sim.NetworkInterfaceSink(sinkID)
	Expect(err).ToNot(HaveOccurred())

	return &routerFabric{
		sim:        sim,
		srcs:       []*SimNetworkInterfaceSrc{src0, src1},
		sink:       sink,
		inputPorts: []topology.PortID{routerIn0, routerIn1},
		outputPort: routerOut,
	}
}

func runCycles(sim *Simulator, count int) {
	for i := 0; i < count; i++ {
		Expect(sim.RunCycle(50)).To(Succeed())
	}
}

func payloads(traffic []TimedPhit) []uint64 {
	data := make([]uint64, len(traffic))
	for i, phit := range traffic {
		data[i] = phit.Value.Data
	}

	return data
}
