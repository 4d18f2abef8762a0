package integration

import (
	"net/http"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/stacklok/mbean-bridge/internal/api/v1"
	"github.com/stacklok/mbean-bridge/internal/service"
	"github.com/stacklok/mbean-bridge/test-integration/bridge-api/helpers"
)

var _ = Describe("Backend discovery", func() {
	var (
		tempDir      string
		agent        *helpers.FakeJolokia
		serverHelper *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("bridge-discovery-")
		agent = helpers.NewFakeJolokia(helpers.CreateJVMObjects())

		configPath := helpers.WriteConfigYAML(tempDir, helpers.ConfigOptions{
			JolokiaURL: agent.URL(),
			Attributes: helpers.DefaultTargetAttributes(),
			StorageDir: tempDir,
		})

		var err error
		serverHelper, err = helpers.NewServerTestHelper(ctx, configPath, tempDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	})

	AfterEach(func() {
		if serverHelper != nil {
			Expect(serverHelper.StopServer()).To(Succeed())
		}
		agent.Close()
		cleanupTempDir(tempDir)
	})

	It("lists the objects matching a pattern", func() {
		var resp v1.ListResponse[service.ObjectRow]
		serverHelper.GetJSON("/v1/backends/agent/objects?filter="+url.QueryEscape("java.lang:*"), &resp)

		Expect(resp.Count).To(Equal(2))
		names := []string{resp.Items[0].ObjectName, resp.Items[1].ObjectName}
		Expect(names).To(ConsistOf(helpers.MemoryObject, helpers.ThreadingObject))
	})

	It("builds the namespace tree of the backend", func() {
		var result service.TreeResult
		serverHelper.GetJSON("/v1/backends/agent/tree?filter="+url.QueryEscape("java.lang:*"), &result)

		Expect(result.Rejected).To(BeEmpty())
		var roots, leaves int
		for _, node := range result.Nodes {
			if node.ParentID == "0" {
				roots++
				Expect(node.NodeName).To(Equal("java.lang"))
			}
			if node.ObjectName != "" {
				leaves++
			}
		}
		Expect(roots).To(Equal(1))
		Expect(leaves).To(Equal(2))
	})

	It("expands composite attributes and previews values", func() {
		var resp v1.ListResponse[service.AttributeInfoRow]
		serverHelper.GetJSON("/v1/backends/agent/attributes?showPreview=true&objectName="+
			url.QueryEscape(helpers.MemoryObject), &resp)

		byName := map[string]service.AttributeInfoRow{}
		for _, row := range resp.Items {
			byName[row.Name] = row
		}
		Expect(byName).To(HaveKey("HeapMemoryUsage_used"))
		Expect(byName).To(HaveKey("HeapMemoryUsage_max"))
		Expect(byName).NotTo(HaveKey("Verbose"), "writable attributes are skipped by default")
		Expect(byName["HeapMemoryUsage_used"].Preview).NotTo(BeNil())
		Expect(*byName["HeapMemoryUsage_used"].Preview).To(ContainSubstring("2048"))
	})

	It("includes writable attributes on request", func() {
		var resp v1.ListResponse[service.AttributeInfoRow]
		serverHelper.GetJSON("/v1/backends/agent/attributes?notWritableOnly=false&objectName="+
			url.QueryEscape(helpers.MemoryObject), &resp)

		var writable []string
		for _, row := range resp.Items {
			if row.IsWritable {
				writable = append(writable, row.Name)
			}
		}
		Expect(writable).To(ConsistOf("Verbose"))
	})

	It("reports unknown backends and objects as not found", func() {
		resp, err := serverHelper.Get("/v1/backends/nope/objects")
		Expect(err).NotTo(HaveOccurred())
		helpers.DecodeResponse(resp, http.StatusNotFound, nil)

		resp, err = serverHelper.Get("/v1/backends/agent/attributes?objectName=" + url.QueryEscape("foo:type=Missing"))
		Expect(err).NotTo(HaveOccurred())
		helpers.DecodeResponse(resp, http.StatusNotFound, nil)
	})

	It("rediscovers a macro object after a reset", func() {
		var reset v1.MacroResetResponse
		serverHelper.PostForJSON("/v1/backends/agent/macros/_C3P0_/reset", &reset)
		Expect(reset.Token).To(Equal("_C3P0_"))
		Expect(reset.ObjectName).To(Equal(helpers.PoolObject))

		resp, err := serverHelper.Post("/v1/backends/agent/macros/_NOPE_/reset")
		Expect(err).NotTo(HaveOccurred())
		helpers.DecodeResponse(resp, http.StatusNotFound, nil)
	})
})
