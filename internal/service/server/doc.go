// Package server wires the coordinator to its production collaborators:
// the Kafka event bus, the Redis notification dispatcher, the heap timer
// scheduler and the file snapshot repository.
package server
