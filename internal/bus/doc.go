// Package bus delivers inbound companion-app events to subscribed handlers.
//
// Events travel as JSON envelopes carrying a type, the instant they were
// fired at the source, and a free-form data object. The production adapter
// consumes a Kafka topic; Memory is a synchronous in-process bus for tests.
package bus
