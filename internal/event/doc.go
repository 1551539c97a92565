// Package event defines the closed set of domain events, the JSON wire codec
// for them, and the replay engine (Stream) that merges user-supplied events
// with internally scheduled ones into a timeline of immutable state
// snapshots.
package event
