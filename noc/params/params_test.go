package params

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fabricsim/noc/topology"
)

var _ = Describe("Store", func() {
	var store *Store

	BeforeEach(func() {
		store = NewStore()
	})

	It("should store and return port parameters", func() {
		port := topology.PortID{Component: 1, Port: 0}
		store.SetPortParam(port, UniformVCs(2, 4))

		param, err := store.PortParam(port)

		Expect(err).ToNot(HaveOccurred())
		Expect(param.VirtualChannelCount()).To(Equal(2))
		Expect(param.VirtualChannels[0].Depth).To(Equal(4))
		Expect(param.VirtualChannels[1].Depth).To(Equal(4))
	})

	It("should fail for a port with no parameters", func() {
		_, err := store.PortParam(topology.PortID{Component: 9})

		Expect(err).To(HaveOccurred())
	})

	It("should store and return link parameters", func() {
		id := topology.ComponentID(2)
		store.SetLinkParam(id, LinkParam{
			SourceToSinkPipelineStages: 3,
			SinkToSourcePipelineStages: 1,
			PhitDataBitWidth:           64,
		})

		param, err := store.LinkParam(id)

		Expect(err).ToNot(HaveOccurred())
		Expect(param.SourceToSinkPipelineStages).To(Equal(3))
		Expect(param.SinkToSourcePipelineStages).To(Equal(1))
		Expect(param.PhitDataBitWidth).To(Equal(64))
	})

	It("should fail for a link with no parameters", func() {
		_, err := store.LinkParam(topology.ComponentID(7))

		Expect(err).To(HaveOccurred())
	})
})
