package cmd

import (
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/fabricsim/datarecording"
	"github.com/sarchlab/fabricsim/monitoring"
	"github.com/sarchlab/fabricsim/noc/params"
	"github.com/sarchlab/fabricsim/noc/routing"
	"github.com/sarchlab/fabricsim/noc/simulation"
	"github.com/sarchlab/fabricsim/noc/topology"
)

type runFlags struct {
	numSources     int
	vcCount        int
	bufferDepth    int
	forwardStages  int
	reverseStages  int
	phitsPerSource int
	injectRate     float64
	seed           int64
	cycles         int
	maxTicks       int
	dbPath         string
	record         bool
	monitor        bool
	monitorPort    int
	verbose        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build a star fabric, inject synthetic traffic, and simulate it.",
	Long: `Run builds a star fabric: N source interfaces feed N links into ` +
		`one router, which drains through a final link into a single sink. ` +
		`Each source injects a burst of phits at cycle 0; the simulation ` +
		`runs until the requested cycle count and reports deliveries.`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := gatherRunFlags(cmd)
		if err := runSimulation(flags); err != nil {
			log.Fatalf("Error: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("sources", 2, "number of source interfaces")
	runCmd.Flags().Int("vcs", 1, "virtual channels per port")
	runCmd.Flags().Int("buffer-depth", 4, "buffer depth per VC")
	runCmd.Flags().Int("forward-stages", 1, "forward pipeline stages per link")
	runCmd.Flags().Int("reverse-stages", 1, "reverse pipeline stages per link")
	runCmd.Flags().Int("phits", 8, "phits injected per source at cycle 0")
	runCmd.Flags().Float64("inject-rate", 0,
		"per-cycle injection probability per source; 0 injects a burst")
	runCmd.Flags().Int64("seed", 1, "random seed for the injection process")
	runCmd.Flags().Int("cycles", 100, "number of cycles to simulate")
	runCmd.Flags().Int("max-ticks", 100, "tick budget per cycle")
	runCmd.Flags().String("db", os.Getenv("FABRICSIM_DB"),
		"SQLite database path for recorded traffic")
	runCmd.Flags().Bool("record", false, "record delivered traffic to SQLite")
	runCmd.Flags().Bool("monitor", false, "serve simulation state over HTTP")
	runCmd.Flags().Int("monitor-port", 0, "port of the monitoring server")
	runCmd.Flags().BoolP("verbose", "v", false, "log the per-cycle trace")
}

func gatherRunFlags(cmd *cobra.Command) runFlags {
	flags := runFlags{}
	flags.numSources, _ = cmd.Flags().GetInt("sources")
	flags.vcCount, _ = cmd.Flags().GetInt("vcs")
	flags.bufferDepth, _ = cmd.Flags().GetInt("buffer-depth")
	flags.forwardStages, _ = cmd.Flags().GetInt("forward-stages")
	flags.reverseStages, _ = cmd.Flags().GetInt("reverse-stages")
	flags.phitsPerSource, _ = cmd.Flags().GetInt("phits")
	flags.injectRate, _ = cmd.Flags().GetFloat64("inject-rate")
	flags.seed, _ = cmd.Flags().GetInt64("seed")
	flags.cycles, _ = cmd.Flags().GetInt("cycles")
	flags.maxTicks, _ = cmd.Flags().GetInt("max-ticks")
	flags.dbPath, _ = cmd.Flags().GetString("db")
	flags.record, _ = cmd.Flags().GetBool("record")
	flags.monitor, _ = cmd.Flags().GetBool("monitor")
	flags.monitorPort, _ = cmd.Flags().GetInt("monitor-port")
	flags.verbose, _ = cmd.Flags().GetBool("verbose")

	return flags
}

// starFabric is the fabric the run command simulates.
type starFabric struct {
	sim     *simulation.Simulator
	sources []*simulation.SimNetworkInterfaceSrc
	sink    *simulation.SimNetworkInterfaceSink
}

func runSimulation(flags runFlags) error {
	fabric, err := buildStarFabric(flags)
	if err != nil {
		return err
	}

	if flags.monitor {
		monitor := monitoring.NewMonitor().WithPortNumber(flags.monitorPort)
		monitor.RegisterSimulator(fabric.sim)
		monitor.StartServer()
	}

	injected, err := injectTraffic(fabric, flags)
	if err != nil {
		return err
	}

	for i := 0; i < flags.cycles; i++ {
		if err := fabric.sim.RunCycle(flags.maxTicks); err != nil {
			return err
		}
	}

	reportResults(fabric, flags, injected)

	return nil
}

func buildStarFabric(flags runFlags) (*starFabric, error) {
	graph := topology.NewNetwork()
	store := params.NewStore()
	table := routing.NewTable()
	portParam := params.UniformVCs(flags.vcCount, flags.bufferDepth)
	linkParam := params.LinkParam{
		SourceToSinkPipelineStages: flags.forwardStages,
		SinkToSourcePipelineStages: flags.reverseStages,
		PhitDataBitWidth:           64,
	}

	routerID := graph.AddComponent("Router", topology.KindRouter)

	var srcIDs []topology.ComponentID
	for i := 0; i < flags.numSources; i++ {
		srcID := graph.AddComponent(
			fmt.Sprintf("Src%d", i), topology.KindNetworkInterfaceSrc)
		linkID := graph.AddComponent(
			fmt.Sprintf("SrcLink%d", i), topology.KindLink)
		srcIDs = append(srcIDs, srcID)

		srcOut := graph.AddPort(srcID, topology.Output)
		linkIn := graph.AddPort(linkID, topology.Input)
		linkOut := graph.AddPort(linkID, topology.Output)
		routerIn := graph.AddPort(routerID, topology.Input)

		if _, err := graph.Connect(srcOut, linkIn); err != nil {
			return nil, err
		}
		if _, err := graph.Connect(linkOut, routerIn); err != nil {
			return nil, err
		}

		for _, port := range []topology.PortID{srcOut, linkIn, linkOut, routerIn} {
			store.SetPortParam(port, portParam)
		}
		store.SetLinkParam(linkID, linkParam)
	}

	sinkID := graph.AddComponent("Sink", topology.KindNetworkInterfaceSink)
	sinkLinkID := graph.AddComponent("SinkLink", topology.KindLink)

	routerOut := graph.AddPort(routerID, topology.Output)
	sinkLinkIn := graph.AddPort(sinkLinkID, topology.Input)
	sinkLinkOut := graph.AddPort(sinkLinkID, topology.Output)
	sinkIn := graph.AddPort(sinkID, topology.Input)

	if _, err := graph.Connect(routerOut, sinkLinkIn); err != nil {
		return nil, err
	}
	if _, err := graph.Connect(sinkLinkOut, sinkIn); err != nil {
		return nil, err
	}

	for _, port := range []topology.PortID{
		routerOut, sinkLinkIn, sinkLinkOut, sinkIn,
	} {
		store.SetPortParam(port, portParam)
	}
	store.SetLinkParam(sinkLinkID, linkParam)

	// Every router input routes every VC to the single output toward the
	// sink, which is destination 0.
	for _, routerIn := range graph.PortsByDirection(routerID, topology.Input) {
		for vc := 0; vc < flags.vcCount; vc++ {
			table.DefineRoute(routerIn, vc, 0,
				routing.PortAndVC{Port: routerOut, VC: vc})
		}
	}

	builder := simulation.MakeBuilder().
		WithTopology(graph).
		WithParameters(store).
		WithRoutingTable(table)
	if flags.verbose {
		builder = builder.WithLogger(log.New(os.Stderr, "", 0))
	}

	sim, err := builder.Build()
	if err != nil {
		return nil, err
	}

	fabric := &starFabric{sim: sim}
	for _, srcID := range srcIDs {
		src, err := sim.NetworkInterfaceSrc(srcID)
		if err != nil {
			return nil, err
		}
		fabric.sources = append(fabric.sources, src)
	}

	fabric.sink, err = sim.NetworkInterfaceSink(sinkID)
	if err != nil {
		return nil, err
	}

	return fabric, nil
}

// injectTraffic queues the synthetic workload. With a zero injection rate
// every source bursts its whole budget at cycle 0; otherwise each source
// flips a weighted coin every cycle.
func injectTraffic(fabric *starFabric, flags runFlags) (int, error) {
	if flags.injectRate > 0 {
		return injectRandomTraffic(fabric, flags)
	}

	for s, src := range fabric.sources {
		for i := 0; i < flags.phitsPerSource; i++ {
			err := src.SendPhitAtTime(simulation.TimedPhit{
				Cycle: 0,
				Value: simulation.Phit{
					Data: uint64(s)<<32 | uint64(i),
					VC:   i % flags.vcCount,
				},
			})
			if err != nil {
				return 0, err
			}
		}
	}

	return flags.numSources * flags.phitsPerSource, nil
}

func injectRandomTraffic(fabric *starFabric, flags runFlags) (int, error) {
	rng := rand.New(rand.NewSource(flags.seed))
	injected := 0

	for s, src := range fabric.sources {
		count := 0
		for cycle := 0; cycle < flags.cycles; cycle++ {
			if rng.Float64() >= flags.injectRate {
				continue
			}

			err := src.SendPhitAtTime(simulation.TimedPhit{
				Cycle: int64(cycle),
				Value: simulation.Phit{
					Data: uint64(s)<<32 | uint64(count),
					VC:   count % flags.vcCount,
				},
			})
			if err != nil {
				return injected, err
			}
			count++
			injected++
		}
	}

	return injected, nil
}

func reportResults(fabric *starFabric, flags runFlags, injected int) {
	traffic := fabric.sink.ReceivedTraffic()

	if flags.record {
		recorder := datarecording.New(flags.dbPath)
		datarecording.CreateTrafficTable(recorder)
		datarecording.RecordSinkTraffic(recorder, "Sink", traffic)
		recorder.Flush()
	}

	pending := 0
	for _, src := range fabric.sources {
		pending += src.PendingPhitCount()
	}

	fmt.Printf("Simulated %d cycles\n", flags.cycles)
	fmt.Printf("Injected %d phits, delivered %d, pending %d\n",
		injected, len(traffic), pending)

	if len(traffic) > 0 {
		first := traffic[0].Cycle
		last := traffic[len(traffic)-1].Cycle
		fmt.Printf("First delivery at cycle %d, last at cycle %d\n",
			first, last)
	}
}
