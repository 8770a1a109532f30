// Package mqtt provides the MQTT client used by the sensor simulator.
//
// It wraps paho.mqtt.golang with connection management, auto-reconnect with
// exponential backoff, and validated publishing. The room client itself never
// talks MQTT; sensor values reach it through the backend's live channel.
package mqtt
