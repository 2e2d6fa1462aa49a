// Package acl provides the Anti-Corruption Layer between the lot ledger
// context and the external catalog and identity services. The ledger only
// ever needs read-only lookups from either, so the layer is a pair of query
// interfaces plus value objects holding the denormalized fields the ledger
// consumes.
package acl
