// Package metrics records build and stage outcomes.
//
// Components receive a Recorder and default to NoopRecorder. The Prometheus
// implementation is enabled by the watch and serve commands, which expose it
// on /metrics next to the game.
package metrics
