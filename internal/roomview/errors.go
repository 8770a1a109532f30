package roomview

import "errors"

// Sentinel errors for room view operations.
var (
	// ErrNameRequired is returned when creating a device with a blank name.
	// The request is rejected locally; no network call is made.
	ErrNameRequired = errors.New("roomview: device name required")

	// ErrUnknownDevice is returned when an operation targets a device id not
	// present in the store.
	ErrUnknownDevice = errors.New("roomview: unknown device")

	// ErrRoomNotFound is returned when the requested room id is not in the
	// room list returned by the server.
	ErrRoomNotFound = errors.New("roomview: room not found")
)
