package api

import "time"

// DeviceType is the high-level device classification used for UI iconography
// and behaviour.
type DeviceType string

// Known device types.
const (
	DeviceTypeLight      DeviceType = "light"
	DeviceTypeSwitch     DeviceType = "switch"
	DeviceTypeSensor     DeviceType = "sensor"
	DeviceTypeThermostat DeviceType = "thermostat"
	DeviceTypeCamera     DeviceType = "camera"
	DeviceTypeOther      DeviceType = "other"
)

// DeviceKind describes whether a device reads, writes, or both.
type DeviceKind string

// Known device kinds.
const (
	DeviceKindSensor   DeviceKind = "sensor"
	DeviceKindActuator DeviceKind = "actuator"
	DeviceKindHybrid   DeviceKind = "hybrid"
)

// SignalType describes the nature of a device's value.
type SignalType string

// Known signal types.
const (
	SignalAnalog  SignalType = "analog"
	SignalDigital SignalType = "digital"
	SignalString  SignalType = "string"
)

// EndpointDirection describes whether an endpoint reads or writes.
type EndpointDirection string

// Known endpoint directions.
const (
	DirectionInput  EndpointDirection = "input"
	DirectionOutput EndpointDirection = "output"
)

// User is the authenticated user's profile as returned by the auth service.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Room is a named spatial container for devices.
type Room struct {
	ID                 int64     `json:"id"`
	Owner              *User     `json:"owner,omitempty"`
	Name               string    `json:"name"`
	Slug               string    `json:"slug"`
	Description        string    `json:"description,omitempty"`
	BackgroundImageURL string    `json:"background_image_url,omitempty"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Device is a controllable or observable unit placed on a room canvas.
// Position coordinates are percentages of the canvas in [0,100].
type Device struct {
	ID            int64      `json:"id"`
	Room          *Room      `json:"room,omitempty"`
	Name          string     `json:"name"`
	DeviceType    DeviceType `json:"device_type"`
	DeviceKind    DeviceKind `json:"device_kind"`
	SignalType    SignalType `json:"signal_type"`
	Unit          string     `json:"unit,omitempty"`
	MinValue      *float64   `json:"min_value,omitempty"`
	MaxValue      *float64   `json:"max_value,omitempty"`
	DecimalPlaces int        `json:"decimal_places"`
	IsPercentage  bool       `json:"is_percentage"`
	LastValue     *float64   `json:"last_value,omitempty"`
	LastValueRaw  string     `json:"last_value_raw,omitempty"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
	Integration   string     `json:"integration,omitempty"`
	ExternalID    string     `json:"external_id,omitempty"`
	Location      string     `json:"location,omitempty"`
	IsOn          bool       `json:"is_on"`
	PositionX     float64    `json:"position_x"`
	PositionY     float64    `json:"position_y"`
	IsActive      bool       `json:"is_active"`
	Endpoints     []Endpoint `json:"endpoints,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// DevicePatch is a partial device record. Nil fields are "not present".
// It serves both as the payload for PATCH /devices/{id}/ and as the merge
// unit for live-channel delta messages: present fields overwrite, absent
// fields are retained.
type DevicePatch struct {
	ID            int64       `json:"id,omitempty"`
	Name          *string     `json:"name,omitempty"`
	DeviceType    *DeviceType `json:"device_type,omitempty"`
	DeviceKind    *DeviceKind `json:"device_kind,omitempty"`
	SignalType    *SignalType `json:"signal_type,omitempty"`
	Unit          *string     `json:"unit,omitempty"`
	LastValue     *float64    `json:"last_value,omitempty"`
	LastValueRaw  *string     `json:"last_value_raw,omitempty"`
	LastUpdatedAt *time.Time  `json:"last_updated_at,omitempty"`
	Location      *string     `json:"location,omitempty"`
	IsOn          *bool       `json:"is_on,omitempty"`
	PositionX     *float64    `json:"position_x,omitempty"`
	PositionY     *float64    `json:"position_y,omitempty"`
	IsActive      *bool       `json:"is_active,omitempty"`
}

// Apply shallow-merges the patch into the device: present fields overwrite,
// absent fields are retained. Applying the same patch twice yields the same
// result.
func (p DevicePatch) Apply(d *Device) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.DeviceType != nil {
		d.DeviceType = *p.DeviceType
	}
	if p.DeviceKind != nil {
		d.DeviceKind = *p.DeviceKind
	}
	if p.SignalType != nil {
		d.SignalType = *p.SignalType
	}
	if p.Unit != nil {
		d.Unit = *p.Unit
	}
	if p.LastValue != nil {
		v := *p.LastValue
		d.LastValue = &v
	}
	if p.LastValueRaw != nil {
		d.LastValueRaw = *p.LastValueRaw
	}
	if p.LastUpdatedAt != nil {
		t := *p.LastUpdatedAt
		d.LastUpdatedAt = &t
	}
	if p.Location != nil {
		d.Location = *p.Location
	}
	if p.IsOn != nil {
		d.IsOn = *p.IsOn
	}
	if p.PositionX != nil {
		d.PositionX = *p.PositionX
	}
	if p.PositionY != nil {
		d.PositionY = *p.PositionY
	}
	if p.IsActive != nil {
		d.IsActive = *p.IsActive
	}
}

// Integration is a high-level cloud/provider integration (Google Home, Nest,
// Ring). Provider behaviour itself is out of scope; only the CRUD surface is
// consumed.
type Integration struct {
	ID          int64          `json:"id"`
	Owner       *User          `json:"owner,omitempty"`
	Provider    string         `json:"provider"`
	DisplayName string         `json:"display_name"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Connector is a transport-level connection (MQTT broker, PLC, OPC UA
// server, HTTP API) devices can bind to via endpoints.
type Connector struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ConnectorType string    `json:"connector_type"`
	Host          string    `json:"host,omitempty"`
	Port          *int      `json:"port,omitempty"`
	Username      string    `json:"username,omitempty"`
	BaseTopic     string    `json:"base_topic,omitempty"`
	BasePath      string    `json:"base_path,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Endpoint binds one device to one connector. Scale/offset apply a linear
// transform for analog values; true/false values map booleans for digital
// ones.
type Endpoint struct {
	ID         int64             `json:"id"`
	Device     int64             `json:"device"`
	Connector  *Connector        `json:"connector,omitempty"`
	Direction  EndpointDirection `json:"direction"`
	Address    string            `json:"address"`
	Scale      float64           `json:"scale"`
	Offset     float64           `json:"offset"`
	TrueValue  string            `json:"true_value,omitempty"`
	FalseValue string            `json:"false_value,omitempty"`
	IsPrimary  bool              `json:"is_primary"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// DashboardSummary is the aggregate count payload shown on the dashboard.
type DashboardSummary struct {
	Rooms        int `json:"rooms"`
	Devices      int `json:"devices"`
	OnDevices    int `json:"on_devices"`
	Integrations int `json:"integrations"`
}
