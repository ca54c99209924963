package simulation

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Source-link-sink fabric", func() {
	It("should follow the credit-limited delivery trace", func() {
		// One VC, buffer depth 2, link with 1 forward stage. Three phits
		// all want to leave at cycle 0; only the credit loop paces them.
		fabric := buildLinearFabric(1, 2, 1, 0)

		for i := 1; i <= 3; i++ {
			err := fabric.src.SendPhitAtTime(TimedPhit{
				Cycle: 0,
				Value: Phit{Data: uint64(i)},
			})
			Expect(err).ToNot(HaveOccurred())
		}

		// Cycle 0: the bootstrap credit has not been applied yet, so the
		// sink sees nothing. Cycle 1: the first phit enters the link.
		runCycles(fabric.sim, 2)
		Expect(fabric.sink.ReceivedTraffic()).To(BeEmpty())
		Expect(fabric.src.PendingPhitCount()).To(Equal(2))

		// The two bootstrap credits are spent on cycles 1 and 2; the third
		// phit waits for the sink's credit return.
		runCycles(fabric.sim, 1)
		Expect(fabric.src.PendingPhitCount()).To(Equal(1))

		runCycles(fabric.sim, 2)
		Expect(fabric.src.PendingPhitCount()).To(Equal(0))

		traffic := fabric.sink.ReceivedTraffic()
		Expect(payloads(traffic)).To(Equal([]uint64{1, 2, 3}))

		// Each delivery lags its forward by the link's 1-cycle depth.
		Expect(traffic[0].Cycle).To(Equal(int64(2)))
		Expect(traffic[1].Cycle).To(Equal(int64(3)))
		Expect(traffic[2].Cycle).To(Equal(int64(4)))
	})

	It("should deliver every phit exactly once, in payload order", func() {
		fabric := buildLinearFabric(1, 2, 3, 2)

		const count = 20
		for i := 0; i < count; i++ {
			err := fabric.src.SendPhitAtTime(TimedPhit{
				Cycle: int64(i),
				Value: Phit{Data: uint64(0x100 + i)},
			})
			Expect(err).ToNot(HaveOccurred())
		}

		runCycles(fabric.sim, 100)

		traffic := fabric.sink.ReceivedTraffic()
		Expect(traffic).To(HaveLen(count))
		for i, phit := range traffic {
			Expect(phit.Value.Data).To(Equal(uint64(0x100 + i)))
		}
		Expect(fabric.src.PendingPhitCount()).To(Equal(0))
	})

	It("should send one full-depth credit grant at cycle 0 and explicit "+
		"zero credits afterwards", func() {
		fabric := buildLinearFabric(1, 2, 1, 0)

		runCycles(fabric.sim, 1)

		// Connection 1 joins the link to the sink.
		snapshot := fabric.sim.ConnectionSnapshots()[1]
		Expect(snapshot.Reverse[0].Cycle).To(Equal(int64(0)))
		Expect(snapshot.Reverse[0].Value.Valid).To(BeTrue())
		Expect(snapshot.Reverse[0].Value.Count).To(Equal(2))

		runCycles(fabric.sim, 1)

		snapshot = fabric.sim.ConnectionSnapshots()[1]
		Expect(snapshot.Reverse[0].Cycle).To(Equal(int64(1)))
		Expect(snapshot.Reverse[0].Value.Valid).To(BeFalse())
		Expect(snapshot.Reverse[0].Value.Count).To(Equal(0))
	})

	It("should prefer the lowest VC when several heads are ready", func() {
		fabric := buildLinearFabric(2, 2, 0, 0)

		err := fabric.src.SendPhitAtTime(TimedPhit{
			Cycle: 0,
			Value: Phit{Data: 0xb, VC: 1},
		})
		Expect(err).ToNot(HaveOccurred())
		err = fabric.src.SendPhitAtTime(TimedPhit{
			Cycle: 0,
			Value: Phit{Data: 0xa, VC: 0},
		})
		Expect(err).ToNot(HaveOccurred())

		runCycles(fabric.sim, 3)

		traffic := fabric.sink.ReceivedTraffic()
		Expect(payloads(traffic)).To(Equal([]uint64{0xa, 0xb}))
		Expect(traffic[0].Value.VC).To(Equal(0))
		Expect(traffic[1].Value.VC).To(Equal(1))
	})

	It("should reject an out-of-range VC index", func() {
		fabric := buildLinearFabric(2, 2, 1, 1)

		err := fabric.src.SendPhitAtTime(TimedPhit{
			Value: Phit{VC: 5},
		})

		var rangeErr *VCRangeError
		Expect(err).To(HaveOccurred())
		Expect(errors.As(err, &rangeErr)).To(BeTrue())
		Expect(rangeErr.VC).To(Equal(5))
		Expect(rangeErr.VCCount).To(Equal(2))
	})
})
