package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event           string       `json:"event,omitempty"`
	Reason          string       `json:"reason,omitempty"`
	Presence        string       `json:"presence"`
	LastPublished   int32        `json:"last_published"`
	LastPublishedAt string       `json:"last_published_at,omitempty"`
	UptimeSeconds   int64        `json:"uptime_seconds"`
	StartTime       string       `json:"start_time"`
	Timestamp       string       `json:"timestamp"`
	MQTT            MQTTStatus   `json:"mqtt"`
	Counts          CountsJSON   `json:"event_counts"`
	Cadence         CadenceJSON  `json:"cadence"`
	Network         *NetworkJSON `json:"network,omitempty"`
	Config          ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Rises     int `json:"rises"`
	Falls     int `json:"falls"`
	Published int `json:"published"`
	Reported  int `json:"reported"`
}

// CadenceJSON is the JSON representation of the active cadence.
type CadenceJSON struct {
	Divisor       uint16 `json:"fast_cadence_period_divisor"`
	Percentage    bool   `json:"trigger_type_percentage"`
	DeltaUp       uint32 `json:"trigger_delta_up"`
	DeltaDown     uint32 `json:"trigger_delta_down"`
	MinIntervalMs uint32 `json:"min_interval_ms"`
	Low           int32  `json:"fast_cadence_low"`
	High          int32  `json:"fast_cadence_high"`
	PeriodMs      int64  `json:"publish_period_ms"`
	IntervalMs    int64  `json:"armed_interval_ms"`
	FastPeriodMs  int64  `json:"fast_publish_period_ms"`
	Threshold     uint32 `json:"motion_threshold"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	BlindMs  int64  `json:"blind_ms"`
	Broker   string `json:"broker"`
	HTTPPort string `json:"http_port"`
	StoreDir string `json:"store_dir"`
	LowPower bool   `json:"low_power"`
}

func presenceString(detected bool) string {
	if detected {
		return "DETECTED"
	}
	return "CLEAR"
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Presence:      presenceString(snap.Presence),
		LastPublished: snap.LastPublished,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Rises:     snap.Counts.Rises,
			Falls:     snap.Counts.Falls,
			Published: snap.Counts.Published,
			Reported:  snap.Counts.Reported,
		},
		Cadence: CadenceJSON{
			Divisor:       snap.Cadence.FastCadencePeriodDivisor,
			Percentage:    snap.Cadence.TriggerTypePercentage,
			DeltaUp:       snap.Cadence.TriggerDeltaUp,
			DeltaDown:     snap.Cadence.TriggerDeltaDown,
			MinIntervalMs: snap.Cadence.MinIntervalMs,
			Low:           snap.Cadence.FastCadenceLow,
			High:          snap.Cadence.FastCadenceHigh,
			PeriodMs:      snap.PeriodMs,
			IntervalMs:    snap.IntervalMs,
			FastPeriodMs:  snap.FastPeriodMs,
			Threshold:     snap.Threshold,
		},
		Config: ConfigJSON{
			BlindMs:  snap.Config.BlindMs,
			Broker:   snap.Config.Broker,
			HTTPPort: snap.Config.HTTPPort,
			StoreDir: snap.Config.StoreDir,
			LowPower: snap.Config.LowPower,
		},
	}
	if !snap.LastPublishedAt.IsZero() {
		inner.LastPublishedAt = snap.LastPublishedAt.UTC().Format(time.RFC3339)
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
