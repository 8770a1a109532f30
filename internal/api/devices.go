package api

import (
	"context"
	"fmt"
)

// CreateDeviceInput is the payload for POST /devices/. Room, Name and
// DeviceType are required by the server.
type CreateDeviceInput struct {
	RoomID     int64      `json:"room"`
	Name       string     `json:"name"`
	DeviceType DeviceType `json:"device_type"`
	DeviceKind DeviceKind `json:"device_kind,omitempty"`
	SignalType SignalType `json:"signal_type,omitempty"`
	Unit       string     `json:"unit,omitempty"`
	Location   string     `json:"location,omitempty"`
	IsOn       bool       `json:"is_on"`
}

// CommandInput is the payload for POST /devices/{id}/command/.
// Digital devices take State ("on"/"off"); analog ones take TargetValue.
type CommandInput struct {
	State       string   `json:"state,omitempty"`
	TargetValue *float64 `json:"target_value,omitempty"`
}

// ListDevices returns the devices for one room. The result is trusted to be
// scoped server-side; no additional client-side filtering is applied.
func (c *Client) ListDevices(ctx context.Context, roomID int64) ([]Device, error) {
	var devices []Device
	path := fmt.Sprintf("/devices/?room=%d", roomID)
	if err := c.do(ctx, "GET", path, nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// GetDevice returns one device with its endpoints.
func (c *Client) GetDevice(ctx context.Context, id int64) (*Device, error) {
	var device Device
	if err := c.do(ctx, "GET", fmt.Sprintf("/devices/%d/", id), nil, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// CreateDevice creates a device. The server assigns the id and the default
// canvas position.
func (c *Client) CreateDevice(ctx context.Context, input CreateDeviceInput) (*Device, error) {
	var device Device
	if err := c.do(ctx, "POST", "/devices/", input, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// UpdateDevice applies a partial update to a device.
func (c *Client) UpdateDevice(ctx context.Context, id int64, patch DevicePatch) (*Device, error) {
	var device Device
	if err := c.do(ctx, "PATCH", fmt.Sprintf("/devices/%d/", id), patch, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// ToggleDevice sends a digital on/off command. The server is authoritative
// for the resulting is_on; sending the current state is a no-op success.
func (c *Client) ToggleDevice(ctx context.Context, id int64, desiredOn bool) (*Device, error) {
	state := "off"
	if desiredOn {
		state = "on"
	}
	return c.CommandDevice(ctx, id, CommandInput{State: state})
}

// CommandDevice sends a raw command (digital state or analog setpoint) and
// returns the updated device.
func (c *Client) CommandDevice(ctx context.Context, id int64, input CommandInput) (*Device, error) {
	var device Device
	if err := c.do(ctx, "POST", fmt.Sprintf("/devices/%d/command/", id), input, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// UpdateDevicePosition persists a device's canvas position. Callers treat
// this as fire-and-forget: a failure is reported but never rolls back the
// visual position.
func (c *Client) UpdateDevicePosition(ctx context.Context, id int64, x, y float64) error {
	payload := map[string]float64{"position_x": x, "position_y": y}
	return c.do(ctx, "PATCH", fmt.Sprintf("/devices/%d/", id), payload, nil)
}
