package roomview

import "github.com/msohanifr/home-automation/internal/api"

// MessageType discriminates live-channel envelopes.
type MessageType string

// Known envelope types. Anything else is ignored without error so the
// server can add message types without breaking older clients.
const (
	MessageDeviceUpdate    MessageType = "device_update"
	MessageDevicesSnapshot MessageType = "devices_snapshot"
)

// Message is the live-channel envelope. Exactly one of Device or Devices is
// populated, selected by Type.
type Message struct {
	Type    MessageType      `json:"type"`
	Device  *api.DevicePatch `json:"device,omitempty"`
	Devices []api.Device     `json:"devices,omitempty"`
}
