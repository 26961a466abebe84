// Package pool provides named bounded worker pools with reject-on-overflow
// queues, plus the registry that creates and owns them for the process
// lifetime. Pools are bulkheads only: there is no circuit breaking, no
// fallback, and no retry.
package pool
