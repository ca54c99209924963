package simulation

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pipeline", func() {
	var (
		p    pipeline[Phit]
		from TimedPhit
		to   TimedPhit
	)

	BeforeEach(func() {
		p = pipeline[Phit]{stageCount: 2}
		from = TimedPhit{Cycle: -1}
		to = TimedPhit{Cycle: -1}
	})

	It("should wait until the upstream slot is driven", func() {
		done := p.tryPropagation(0, &from, &to)

		Expect(done).To(BeFalse())
		Expect(to.Cycle).To(Equal(int64(-1)))
	})

	It("should delay a phit by the stage count, with bubbles before", func() {
		phit := Phit{Valid: true, Data: 0xca}

		from = TimedPhit{Cycle: 0, Value: phit}
		Expect(p.tryPropagation(0, &from, &to)).To(BeTrue())
		Expect(to.Cycle).To(Equal(int64(0)))
		Expect(to.Value.Valid).To(BeFalse())

		from = TimedPhit{Cycle: 1}
		Expect(p.tryPropagation(1, &from, &to)).To(BeTrue())
		Expect(to.Value.Valid).To(BeFalse())

		from = TimedPhit{Cycle: 2}
		Expect(p.tryPropagation(2, &from, &to)).To(BeTrue())
		Expect(to.Cycle).To(Equal(int64(2)))
		Expect(to.Value).To(Equal(phit))
	})

	It("should sustain one phit per cycle once full", func() {
		for cycle := int64(0); cycle < 5; cycle++ {
			from = TimedPhit{
				Cycle: cycle,
				Value: Phit{Valid: true, Data: uint64(cycle)},
			}
			Expect(p.tryPropagation(cycle, &from, &to)).To(BeTrue())

			if cycle >= 2 {
				Expect(to.Value.Valid).To(BeTrue())
				Expect(to.Value.Data).To(Equal(uint64(cycle - 2)))
			}
		}
	})

	It("should be idempotent within a cycle", func() {
		from = TimedPhit{Cycle: 0, Value: Phit{Valid: true, Data: 1}}

		Expect(p.tryPropagation(0, &from, &to)).To(BeTrue())
		Expect(p.tryPropagation(0, &from, &to)).To(BeTrue())

		Expect(p.inFlight).To(HaveLen(1))
	})

	It("should pass values through combinationally with zero stages", func() {
		p = pipeline[Phit]{stageCount: 0}
		phit := Phit{Valid: true, Data: 0x5a}

		from = TimedPhit{Cycle: 0, Value: phit}
		Expect(p.tryPropagation(0, &from, &to)).To(BeTrue())
		Expect(to.Value).To(Equal(phit))
	})
})
