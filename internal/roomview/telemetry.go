package roomview

import (
	"strconv"

	"github.com/msohanifr/home-automation/internal/api"
	"github.com/msohanifr/home-automation/internal/infrastructure/influxdb"
)

// Recorder receives device state observations for optional local telemetry.
// Recording is best-effort and must never block or fail an operation.
type Recorder interface {
	RecordDeviceState(device api.Device)
}

// noopRecorder discards observations.
type noopRecorder struct{}

func (noopRecorder) RecordDeviceState(api.Device) {}

// InfluxRecorder records confirmed device states as time-series points.
type InfluxRecorder struct {
	client *influxdb.Client
}

// NewInfluxRecorder wraps a connected InfluxDB client as a Recorder.
func NewInfluxRecorder(client *influxdb.Client) *InfluxRecorder {
	return &InfluxRecorder{client: client}
}

// RecordDeviceState writes the device's last value and on/off state.
// Writes are batched downstream; this never blocks.
func (r *InfluxRecorder) RecordDeviceState(d api.Device) {
	id := strconv.FormatInt(d.ID, 10)

	if d.LastValue != nil {
		r.client.WriteDeviceMetric(id, "last_value", *d.LastValue)
	}

	on := 0.0
	if d.IsOn {
		on = 1
	}
	r.client.WriteDeviceMetric(id, "is_on", on)
}
