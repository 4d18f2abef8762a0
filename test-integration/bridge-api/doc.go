// Package integration provides integration tests for the MBean bridge server.
// These tests run the complete server against a fake Jolokia agent and a
// static backend, covering discovery, background sync, demand reads and history.
package integration
