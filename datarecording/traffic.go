package datarecording

import (
	"github.com/sarchlab/fabricsim/noc/simulation"
)

// TrafficTableName is the table delivered phits are recorded into.
const TrafficTableName = "delivered_traffic"

// DeliveredPhit is one row of the delivered-traffic table.
type DeliveredPhit struct {
	Sink             string
	Cycle            int64
	Data             uint64
	VC               int
	DestinationIndex int
}

// CreateTrafficTable creates the delivered-traffic table.
func CreateTrafficTable(recorder DataRecorder) {
	recorder.CreateTable(TrafficTableName, DeliveredPhit{})
}

// RecordSinkTraffic appends a sink's received-traffic record to the
// delivered-traffic table.
func RecordSinkTraffic(
	recorder DataRecorder,
	sinkName string,
	traffic []simulation.TimedPhit,
) {
	for _, phit := range traffic {
		recorder.InsertData(TrafficTableName, DeliveredPhit{
			Sink:             sinkName,
			Cycle:            phit.Cycle,
			Data:             phit.Value.Data,
			VC:               phit.Value.VC,
			DestinationIndex: phit.Value.DestinationIndex,
		})
	}
}
