// Package status provides a thread-safe status tracker for the
// presence-sensor daemon. It is designed to be read by HTTP handlers and
// included in MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/presence-sensor/internal/cadence"
)

// NetworkInfo contains network state reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	BlindMs  int64
	Broker   string
	HTTPPort string
	StoreDir string
	LowPower bool
}

// Counts tracks event totals since startup.
type Counts struct {
	Rises     int // presence transitions to detected
	Falls     int // presence transitions to clear
	Published int // cadence publications
	Reported  int // on-demand GET responses
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Presence        bool
	LastPublished   int32
	LastPublishedAt time.Time
	Counts          Counts
	Cadence         cadence.Config
	PeriodMs        int64
	IntervalMs      int64
	FastPeriodMs    int64
	Threshold       uint32
	StartTime       time.Time
	Now             time.Time
	MQTTConnected   bool
	Network         *NetworkInfo
	Config          Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets presence state, last publication and event counts.
// Called from the dispatch loop after every handled event.
func (t *Tracker) Update(presence bool, lastPub int32, lastPubAt time.Time, counts Counts) {
	t.mu.Lock()
	t.snap.Presence = presence
	t.snap.LastPublished = lastPub
	t.snap.LastPublishedAt = lastPubAt
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetCadence sets the active cadence parameters.
func (t *Tracker) SetCadence(cfg cadence.Config) {
	t.mu.Lock()
	t.snap.Cadence = cfg
	t.mu.Unlock()
}

// SetTiming sets the publish period, the armed timer interval and the
// derived fast publish period.
func (t *Tracker) SetTiming(period, interval, fast time.Duration) {
	t.mu.Lock()
	t.snap.PeriodMs = period.Milliseconds()
	t.snap.IntervalMs = interval.Milliseconds()
	t.snap.FastPeriodMs = fast.Milliseconds()
	t.mu.Unlock()
}

// SetThreshold sets the motion threshold setting value.
func (t *Tracker) SetThreshold(v uint32) {
	t.mu.Lock()
	t.snap.Threshold = v
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
