package integration

import (
	"net/http"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/stacklok/mbean-bridge/internal/api/v1"
	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/service"
	"github.com/stacklok/mbean-bridge/internal/status"
	"github.com/stacklok/mbean-bridge/internal/sync"
	"github.com/stacklok/mbean-bridge/test-integration/bridge-api/helpers"
)

var _ = Describe("Target synchronization", func() {
	var (
		tempDir      string
		agent        *helpers.FakeJolokia
		serverHelper *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("bridge-sync-")
		agent = helpers.NewFakeJolokia(helpers.CreateJVMObjects())

		configPath := helpers.WriteConfigYAML(tempDir, helpers.ConfigOptions{
			JolokiaURL:  agent.URL(),
			Interval:    "1h",
			Attributes:  helpers.DefaultTargetAttributes(),
			StorageDir:  tempDir,
			HistoryPath: filepath.Join(tempDir, "history"),
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

	waitForComplete := func() status.SyncStatus {
		var st status.SyncStatus
		Eventually(func() status.SyncPhase {
			serverHelper.GetJSON("/v1/targets/app-server/status", &st)
			return st.Phase
		}, 10*time.Second, 100*time.Millisecond).Should(Equal(status.SyncPhaseComplete))
		return st
	}

	Context("background sync", func() {
		It("pulls every attribute of the target once at startup", func() {
			st := waitForComplete()
			Expect(st.RowCount).To(Equal(3))
			Expect(st.WarningCount).To(BeZero())
			Expect(st.LastCycleID).NotTo(BeEmpty())
			Expect(st.LastSyncTime).NotTo(BeNil())

			var targets v1.ListResponse[service.TargetSummary]
			serverHelper.GetJSON("/v1/targets", &targets)
			Expect(targets.Count).To(Equal(1))
			Expect(targets.Items[0].Backend).To(Equal("agent"))

			var props v1.ListResponse[v1.PropertyView]
			serverHelper.GetJSON("/v1/targets/app-server/properties", &props)
			Expect(props.Count).To(Equal(3))

			values := map[string]string{}
			for _, p := range props.Items {
				values[p.Name] = string(p.Value)
				Expect(p.LastUpdate).To(BeTemporally("==", *st.LastSyncTime))
			}
			Expect(values).To(HaveKeyWithValue("HeapMemoryUsage_used", "2048"))
			Expect(values).To(HaveKeyWithValue("ThreadCount", "42"))
			Expect(values).To(HaveKeyWithValue("numBusyConnections", "3"))
		})

		It("exposes the synchronized definitions", func() {
			var defs v1.ListResponse[attribute.Definition]
			serverHelper.GetJSON("/v1/targets/app-server/definitions", &defs)
			Expect(defs.Count).To(Equal(3))
		})
	})

	Context("refresh", func() {
		It("reads only the attributes whose cache time has expired", func() {
			waitForComplete()
			agent.SetValue(helpers.MemoryObject, "HeapMemoryUsage", `{"init":1024,"used":4096,"committed":4096,"max":-1}`)
			agent.SetValue(helpers.ThreadingObject, "ThreadCount", "43")

			var resp v1.BatchResponse
			serverHelper.PostForJSON("/v1/targets/app-server/refresh", &resp)

			names := map[string]string{}
			for _, row := range resp.Rows {
				names[row.Name] = string(row.Value)
				Expect(row.LastUpdate).To(BeTemporally("==", resp.Timestamp))
			}
			Expect(names).To(HaveKeyWithValue("HeapMemoryUsage_used", "4096"))
			Expect(names).NotTo(HaveKey("ThreadCount"), "ThreadCount is cached for an hour")
			Expect(resp.Warnings).To(BeEmpty())
		})

		It("reads every attribute when the cache is ignored", func() {
			waitForComplete()
			agent.SetValue(helpers.ThreadingObject, "ThreadCount", "43")

			var resp v1.BatchResponse
			serverHelper.PostForJSON("/v1/targets/app-server/refresh?ignoreCache=true", &resp)
			Expect(resp.Rows).To(HaveLen(3))
			Expect(resp.CycleID).NotTo(BeEmpty())

			var read v1.DemandReadResponse
			serverHelper.GetJSON("/v1/targets/app-server/properties/ThreadCount", &read)
			Expect(read.Refreshed).To(BeFalse())
			Expect(read.Property).NotTo(BeNil())
			Expect(string(read.Property.Value)).To(Equal("43"))
		})

		It("skips missing objects with a warning and applies the rest", func() {
			waitForComplete()
			agent.RemoveObject(helpers.ThreadingObject)

			var resp v1.BatchResponse
			serverHelper.PostForJSON("/v1/targets/app-server/refresh?ignoreCache=true", &resp)
			Expect(resp.Rows).To(HaveLen(2))
			Expect(resp.Warnings).To(HaveLen(1))
			Expect(resp.Warnings[0].Attribute).To(Equal("ThreadCount"))
			Expect(resp.Warnings[0].Kind).To(Equal(sync.WarningAttributeRead))

			var props v1.ListResponse[v1.PropertyView]
			serverHelper.GetJSON("/v1/targets/app-server/properties", &props)
			Expect(props.Count).To(Equal(3), "the stale value is kept")
		})

		It("rejects unknown targets", func() {
			resp, err := serverHelper.Post("/v1/targets/nope/refresh")
			Expect(err).NotTo(HaveOccurred())
			helpers.DecodeResponse(resp, http.StatusNotFound, nil)
		})
	})

	Context("demand read", func() {
		It("reads the backend for attributes without a cache time", func() {
			waitForComplete()
			agent.SetValue(helpers.PoolObject, "numBusyConnections", "7")

			var read v1.DemandReadResponse
			serverHelper.GetJSON("/v1/targets/app-server/properties/numBusyConnections", &read)
			Expect(read.Refreshed).To(BeTrue())
			Expect(read.Warning).To(BeNil())
			Expect(string(read.Property.Value)).To(Equal("7"))
		})

		It("answers undefined attributes with not found", func() {
			resp, err := serverHelper.Get("/v1/targets/app-server/properties/Nope")
			Expect(err).NotTo(HaveOccurred())
			helpers.DecodeResponse(resp, http.StatusNotFound, nil)
		})
	})

	Context("history", func() {
		It("records logged properties and returns them by range", func() {
			waitForComplete()

			var result sync.HistoryResult
			serverHelper.PostForJSON("/v1/targets/app-server/history", &result)
			Expect(result.Count).To(Equal(2), "only logged properties are recorded")

			agent.SetValue(helpers.MemoryObject, "HeapMemoryUsage", `{"init":1024,"used":8192,"committed":8192,"max":-1}`)
			serverHelper.PostForJSON("/v1/targets/app-server/history?forceRefresh=true", &result)
			Expect(result.Refresh).NotTo(BeNil())

			var entries v1.ListResponse[v1.HistoryEntryView]
			serverHelper.GetJSON("/v1/targets/app-server/history/HeapMemoryUsage_used", &entries)
			// startup sync, two explicit writes and the forced refresh
			Expect(entries.Count).To(Equal(4))
			values := make([]string, 0, entries.Count)
			for _, e := range entries.Items {
				values = append(values, string(e.Value))
			}
			Expect(values).To(ConsistOf("2048", "2048", "8192", "8192"))
			Expect(entries.Items[0].Type).To(Equal(attribute.TypeLong))
		})

		It("rejects malformed time ranges", func() {
			resp, err := serverHelper.Get("/v1/targets/app-server/history/HeapMemoryUsage_used?from=yesterday")
			Expect(err).NotTo(HaveOccurred())
			helpers.DecodeResponse(resp, http.StatusBadRequest, nil)
		})
	})
})
