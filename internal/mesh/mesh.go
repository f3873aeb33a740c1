// Package mesh carries the sensor model over MQTT with abstraction for
// testing. Outbound: sensor value publications and system lifecycle
// events. Inbound: cadence, period and setting changes from the
// configuration client, on-demand reads and factory reset, decoded into
// typed events and delivered on a channel so the daemon's dispatch loop
// stays single threaded.
package mesh

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/presence-sensor/internal/cadence"
)

// Outbound topics.
const (
	// TopicValue carries sensor value publications.
	TopicValue = "mesh/sensor/presence/value"

	// TopicSystem carries system lifecycle events.
	TopicSystem = "mesh/sensor/presence/system"
)

// Inbound topics (configuration client to sensor).
const (
	TopicCadenceSet   = "mesh/sensor/presence/cadence/set"
	TopicPeriodSet    = "mesh/sensor/presence/period/set"
	TopicSettingSet   = "mesh/sensor/presence/setting/set"
	TopicGet          = "mesh/sensor/presence/get"
	TopicFactoryReset = "mesh/sensor/presence/factory-reset"
)

// Sensor model identity. A period set must carry this exact triple to be
// accepted.
const (
	ElementIndex               = 0
	CompanyIDSIG               = 0xFFFF // SIG-defined model marker
	ModelIDSensorServer        = 0x1100
	PropertyIDPresenceDetected = 0x004D
)

// Publisher publishes sensor output to the mesh.
type Publisher interface {
	// PublishValue sends one sensor value publication.
	// Returns error if publishing fails (should not crash the process).
	PublishValue(event ValueEvent) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// Receiver delivers decoded configuration events.
type Receiver interface {
	// Events returns the channel configuration events arrive on.
	Events() <-chan ConfigEvent
}

// ConnectionStatus reports whether the broker connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// ValueEvent is one sensor value publication.
type ValueEvent struct {
	Timestamp    time.Time
	ElementIndex uint8
	PropertyID   uint16
	Value        int32
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// EventKind discriminates inbound configuration events.
type EventKind int

const (
	EventCadenceSet EventKind = iota + 1
	EventPeriodSet
	EventSettingSet
	EventGet
	EventFactoryReset
)

// ConfigEvent is one decoded inbound message.
type ConfigEvent struct {
	Kind    EventKind
	Cadence cadence.Config // EventCadenceSet
	Period  PeriodSet      // EventPeriodSet
	Setting Setting        // EventSettingSet
}

// PeriodSet is a new publication period for a specific model instance.
type PeriodSet struct {
	ElementIndex uint8  `json:"element_index"`
	CompanyID    uint16 `json:"company_id"`
	ModelID      uint16 `json:"model_id"`
	PeriodMs     uint32 `json:"period_ms"`
}

// Matches reports whether the triple identifies this sensor's model.
func (p PeriodSet) Matches() bool {
	return p.ElementIndex == ElementIndex &&
		p.CompanyID == CompanyIDSIG &&
		p.ModelID == ModelIDSensorServer
}

// Period returns the new publication period as a duration.
func (p PeriodSet) Period() time.Duration {
	return time.Duration(p.PeriodMs) * time.Millisecond
}

// Setting is a sensor setting change (e.g., the motion threshold).
type Setting struct {
	PropertyID        uint16 `json:"property_id"`
	SettingPropertyID uint16 `json:"setting_property_id"`
	Value             uint32 `json:"value"`
}

// ValuePayload is the MQTT message payload for a value publication.
type ValuePayload struct {
	Sensor SensorInner `json:"sensor"`
}

// SensorInner contains the publication details.
type SensorInner struct {
	Timestamp    string `json:"timestamp"`
	ElementIndex uint8  `json:"element_index"`
	PropertyID   string `json:"property_id"`
	Value        int32  `json:"value"`
}

// FormatValuePayload creates the JSON payload for a value publication.
func FormatValuePayload(event ValueEvent) ([]byte, error) {
	payload := ValuePayload{
		Sensor: SensorInner{
			Timestamp:    event.Timestamp.UTC().Format(time.RFC3339),
			ElementIndex: event.ElementIndex,
			PropertyID:   fmt.Sprintf("0x%04X", event.PropertyID),
			Value:        event.Value,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message payload for simple system events that
// don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full
// status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// DecodePeriodSet parses an inbound period set message.
func DecodePeriodSet(data []byte) (PeriodSet, error) {
	var p PeriodSet
	if err := json.Unmarshal(data, &p); err != nil {
		return PeriodSet{}, fmt.Errorf("decode period set: %w", err)
	}
	return p, nil
}

// DecodeSetting parses an inbound setting change message.
func DecodeSetting(data []byte) (Setting, error) {
	var s Setting
	if err := json.Unmarshal(data, &s); err != nil {
		return Setting{}, fmt.Errorf("decode setting: %w", err)
	}
	return s, nil
}

// DecodeCadence parses an inbound cadence set message.
func DecodeCadence(data []byte) (cadence.Config, error) {
	cfg, err := cadence.Decode(data)
	if err != nil {
		return cadence.Config{}, fmt.Errorf("decode cadence: %w", err)
	}
	return cfg, nil
}
