package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/onsi/gomega"
)

const (
	// MemoryObject is the memory management object of every JVM
	MemoryObject = "java.lang:type=Memory"

	// PoolObject is a pooled data source discovered through the default macro
	PoolObject = "com.mchange.v2.c3p0:type=PooledDataSource,identityToken=1hge1hv8"

	// ThreadingObject is the threading management object of every JVM
	ThreadingObject = "java.lang:type=Threading"
)

// CreateJVMObjects returns the objects of a typical application server
func CreateJVMObjects() map[string]map[string]FakeAttribute {
	return map[string]map[string]FakeAttribute{
		"JMImplementation:type=MBeanServerDelegate": {
			"MBeanServerId": {Type: "java.lang.String", Value: `"fake_1"`},
		},
		MemoryObject: {
			"HeapMemoryUsage": {
				Type:  "javax.management.openmbean.CompositeData",
				Value: `{"init":1024,"used":2048,"committed":4096,"max":-1}`,
			},
			"Verbose": {Type: "boolean", Value: "false", Writable: true},
		},
		ThreadingObject: {
			"ThreadCount": {Type: "int", Value: "42"},
		},
		PoolObject: {
			"numBusyConnections": {Type: "int", Value: "3"},
		},
	}
}

// TargetAttribute is one attribute of a generated target
type TargetAttribute struct {
	Name        string
	Object      string
	Type        string
	CacheTimeMs *int64
	Logged      bool
}

// ConfigOptions describes a generated bridge configuration
type ConfigOptions struct {
	JolokiaURL   string
	Interval     string
	Attributes   []TargetAttribute
	HistoryPath  string
	StorageDir   string
	StaticObject string
}

// DefaultTargetAttributes returns the attributes of the "app-server" target
func DefaultTargetAttributes() []TargetAttribute {
	return []TargetAttribute{
		{Name: "HeapMemoryUsage_used", Object: MemoryObject, Type: "LONG", Logged: true},
		{Name: "ThreadCount", Object: ThreadingObject, Type: "INTEGER", CacheTimeMs: ptr(int64(3600000))},
		{Name: "numBusyConnections", Object: "_C3P0_", Type: "INTEGER", Logged: true},
	}
}

// WriteConfigYAML writes a configuration with one Jolokia backend named "agent"
// and one target named "app-server", and returns its path
func WriteConfigYAML(dir string, opts ConfigOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "backends:\n  - name: agent\n    jolokia:\n      url: %s\n      timeout: 2s\n", opts.JolokiaURL)
	b.WriteString("targets:\n  - name: app-server\n    backend: agent\n")
	if opts.Interval != "" {
		fmt.Fprintf(&b, "    syncPolicy:\n      interval: %s\n", opts.Interval)
	}
	b.WriteString("    attributes:\n")
	for _, a := range opts.Attributes {
		fmt.Fprintf(&b, "      - name: %s\n        object: %q\n        type: %s\n", a.Name, a.Object, a.Type)
		if a.CacheTimeMs != nil {
			fmt.Fprintf(&b, "        cacheTimeMs: %d\n", *a.CacheTimeMs)
		}
		if a.Logged {
			b.WriteString("        logged: true\n")
		}
	}
	fmt.Fprintf(&b, "fileStorage:\n  baseDir: %s\n", opts.StorageDir)
	if opts.HistoryPath != "" {
		fmt.Fprintf(&b, "history:\n  enabled: true\n  path: %s\n", opts.HistoryPath)
	}

	path := filepath.Join(dir, "config.yaml")
	gomega.Expect(os.WriteFile(path, []byte(b.String()), 0600)).To(gomega.Succeed())
	return path
}

func ptr[T any](v T) *T {
	return &v
}
