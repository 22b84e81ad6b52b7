// Package emitter publishes companion-app event envelopes to the Kafka
// topic the server consumes. It exists for development and end-to-end
// verification: feed it a JSON alarm collection or ask it for a
// refresh-start signal.
package emitter
