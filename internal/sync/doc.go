// Package sync pulls attribute values from management backends into the
// property store.
//
// # Sync cycle
//
// Engine.Pull reads a list of attribute definitions in order. Each definition
// is resolved to a concrete address, read through the backend gateway,
// narrowed to its composite sub-field when the name carries one, and converted
// to the declared property type. All rows of one cycle share a single capture
// timestamp. Attribute-level failures never abort a cycle: the attribute is
// skipped and reported as a Warning of one of the kinds
//
//   - WarningAddressUnresolvable: a macro object could not be discovered
//   - WarningAttributeRead: the read or sub-field extraction failed, or the value is absent
//   - WarningConversion: the value cannot be represented in the declared type
//
// A cycle that is interrupted returns an error and no batch. The Manager
// applies a completed batch to the PropertySink in one call, so a cycle is
// all-or-nothing with respect to stored state.
//
// # Candidate selection
//
// ShouldRead implements the per-attribute cache policy. A nil or zero cache
// time always reads, a negative cache time never reads automatically and a
// positive cache time reads once the stored value is strictly older than it.
// An explicit ignore-cache request reads everything.
//
// # Manager
//
// Manager binds targets to their backend and resolver, serializes work per
// target and exposes refresh, demand read and history recording. Failures
// that prevent a whole operation are returned as *Error; ErrTargetUnresolvable
// marks an unknown target.
//
// The sync/coordinator subpackage runs interval-driven refreshes in the
// background and records per-target status.
package sync
