package tree_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/mbean-bridge/internal/tree"
)

func byName(nodes []tree.Node) map[string]tree.Node {
	m := make(map[string]tree.Node, len(nodes))
	for _, n := range nodes {
		m[n.Name] = n
	}
	return m
}

var _ = Describe("Builder", func() {
	Describe("Build", func() {
		It("should return an empty tree for empty input", func() {
			nodes, rejected := tree.Build(nil)
			Expect(nodes).To(BeEmpty())
			Expect(rejected).To(BeEmpty())
		})

		It("should create synthetic ancestors for a structured name", func() {
			nodes, rejected := tree.Build([]string{"domain:type=Foo,name=Bar"})
			Expect(rejected).To(BeEmpty())
			Expect(nodes).To(Equal([]tree.Node{
				{ID: 1, ParentID: 0, Name: "domain", ObjectName: ""},
				{ID: 2, ParentID: 1, Name: "Foo", ObjectName: ""},
				{ID: 3, ParentID: 2, Name: "Bar", ObjectName: "domain:type=Foo,name=Bar"},
			}))
		})

		It("should produce a single root for a name without separators", func() {
			nodes, rejected := tree.Build([]string{"standalone"})
			Expect(rejected).To(BeEmpty())
			Expect(nodes).To(Equal([]tree.Node{
				{ID: 1, ParentID: tree.RootParentID, Name: "standalone", ObjectName: "standalone"},
			}))
		})

		It("should share ancestors between siblings", func() {
			nodes, _ := tree.Build([]string{
				"java.lang:type=Memory",
				"java.lang:type=Runtime",
				"java.lang:type=MemoryPool,name=Metaspace",
			})

			named := byName(nodes)
			Expect(nodes).To(HaveLen(5))
			Expect(named["java.lang"].ParentID).To(Equal(tree.RootParentID))
			Expect(named["Memory"].ParentID).To(Equal(named["java.lang"].ID))
			Expect(named["Runtime"].ParentID).To(Equal(named["java.lang"].ID))
			Expect(named["MemoryPool"].ObjectName).To(BeEmpty())
			Expect(named["Metaspace"].ParentID).To(Equal(named["MemoryPool"].ID))
			Expect(named["Metaspace"].ObjectName).To(Equal("java.lang:type=MemoryPool,name=Metaspace"))
		})

		It("should be idempotent for the same input", func() {
			input := []string{
				"com.mchange.v2.c3p0:type=PooledDataSource,identityToken=1hge1hv8",
				"java.lang:type=Memory",
				"java.lang:type=GarbageCollector,name=G1 Young Generation",
			}
			first, _ := tree.Build(input)
			second, _ := tree.Build(input)
			Expect(second).To(Equal(first))
		})

		It("should reject malformed names and keep the rest", func() {
			nodes, rejected := tree.Build([]string{"", "java.lang:type=Memory", "bad:,type=X", "trailing:"})
			Expect(rejected).To(HaveLen(3))
			for _, err := range rejected {
				Expect(err).To(MatchError(tree.ErrMalformedName))
			}
			Expect(nodes).To(HaveLen(2))
		})
	})

	Describe("Add", func() {
		var b *tree.Builder

		BeforeEach(func() {
			b = tree.NewBuilder()
		})

		It("should not consume an id for duplicates", func() {
			first, err := b.Add("java.lang:type=Memory")
			Expect(err).NotTo(HaveOccurred())
			again, err := b.Add("java.lang:type=Memory")
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(first))
			Expect(b.Len()).To(Equal(2))

			next, err := b.Add("java.lang:type=Runtime")
			Expect(err).NotTo(HaveOccurred())
			Expect(next.ID).To(Equal(3))
		})

		It("should attach the object name to an existing synthetic node", func() {
			_, err := b.Add("jboss.as:subsystem=datasources,data-source=ExampleDS")
			Expect(err).NotTo(HaveOccurred())
			parent, err := b.Add("jboss.as:subsystem=datasources")
			Expect(err).NotTo(HaveOccurred())
			Expect(parent.ID).To(Equal(2))
			Expect(parent.ObjectName).To(Equal("jboss.as:subsystem=datasources"))
			Expect(b.Len()).To(Equal(3))
		})

		It("should use the text after the last '=' as display name", func() {
			node, err := b.Add("x:a=b=c")
			Expect(err).NotTo(HaveOccurred())
			Expect(node.Name).To(Equal("c"))
		})
	})

	Describe("Rows", func() {
		It("should render ids as decimal strings", func() {
			b := tree.NewBuilder()
			_, err := b.Add("domain:type=Foo,name=Bar")
			Expect(err).NotTo(HaveOccurred())

			Expect(b.Rows()).To(ConsistOf(
				tree.Row{NodeID: "1", ParentID: "0", NodeName: "domain"},
				tree.Row{NodeID: "2", ParentID: "1", NodeName: "Foo"},
				tree.Row{NodeID: "3", ParentID: "2", NodeName: "Bar", ObjectName: "domain:type=Foo,name=Bar"},
			))
		})
	})
})
