// Package roomview implements the client-side core of a room dashboard:
// an ordered in-memory device store, a websocket live-update channel, a
// reconciliation controller for optimistic commands, and a drag handler
// mapping pointer gestures onto canvas positions.
//
// Data flows one way: commands go out over REST, state comes back over REST
// responses and the live channel, and both converge in the store. The store
// is the only thing views render from.
package roomview
