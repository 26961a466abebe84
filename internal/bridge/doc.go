// Package bridge dispatches inbound HTTP requests to named bounded worker
// pools and guarantees exactly-once finalization of each request, no matter
// which completion source fires first: worker success, worker failure, the
// outer timeout, the inner backstop timeout, or pool saturation. The
// completion gate is the only synchronization point between the timer
// goroutines and the worker goroutine.
package bridge
