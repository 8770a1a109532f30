// Package devserver is an in-memory stand-in for the production backend.
//
// It speaks the same wire protocol the room client consumes: opaque token
// auth, the rooms/devices/integrations/connectors/endpoints REST surface
// with Django-style trailing slashes and {"detail": ...} errors, the device
// command endpoint with endpoint scaling rules, and a per-room websocket
// live channel. State lives in maps and vanishes on restart.
//
// It exists for local development and end-to-end tests; nothing in it is
// meant to be production-hardened.
package devserver
