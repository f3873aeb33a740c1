package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/presence-sensor/internal/cadence"
)

func testTracker() *Tracker {
	return NewTracker(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC), Config{
		BlindMs:  7000,
		Broker:   "tcp://192.168.1.200:1883",
		HTTPPort: ":80",
		StoreDir: "/var/lib/presence-sensor",
	})
}

func TestTrackerUpdate(t *testing.T) {
	tr := testTracker()
	pubAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	tr.Update(true, 1, pubAt, Counts{Rises: 3, Falls: 2, Published: 5, Reported: 1})

	snap := tr.Snapshot()
	if !snap.Presence {
		t.Error("expected presence detected")
	}
	if snap.LastPublished != 1 || !snap.LastPublishedAt.Equal(pubAt) {
		t.Errorf("last publication not recorded: %d at %v", snap.LastPublished, snap.LastPublishedAt)
	}
	if snap.Counts.Rises != 3 || snap.Counts.Published != 5 {
		t.Errorf("counts not recorded: %+v", snap.Counts)
	}
	if snap.Now.IsZero() {
		t.Error("snapshot should carry the current time")
	}
}

func TestTrackerCadenceAndTiming(t *testing.T) {
	tr := testTracker()

	tr.SetCadence(cadence.Config{FastCadencePeriodDivisor: 32, TriggerDeltaUp: 1})
	tr.SetTiming(320*time.Second, 10*time.Second, 10*time.Second)
	tr.SetThreshold(0x50)

	snap := tr.Snapshot()
	if snap.Cadence.FastCadencePeriodDivisor != 32 {
		t.Errorf("divisor = %d, want 32", snap.Cadence.FastCadencePeriodDivisor)
	}
	if snap.PeriodMs != 320000 || snap.IntervalMs != 10000 || snap.FastPeriodMs != 10000 {
		t.Errorf("timing not recorded: %d/%d/%d", snap.PeriodMs, snap.IntervalMs, snap.FastPeriodMs)
	}
	if snap.Threshold != 0x50 {
		t.Errorf("threshold = %#x, want 0x50", snap.Threshold)
	}
}

func TestSnapshotUptime(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
	want := 26*time.Minute + 53*time.Second
	if got := snap.Uptime(); got != want {
		t.Errorf("Uptime() = %v, want %v", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	tr := testTracker()
	tr.Update(true, 1, time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC), Counts{Rises: 1, Published: 1})
	tr.SetCadence(cadence.Config{FastCadencePeriodDivisor: 32, MinIntervalMs: 1024})
	tr.SetMQTTConnected(true)

	var got StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &got); err != nil {
		t.Fatalf("status JSON invalid: %v", err)
	}
	if got.Status.Presence != "DETECTED" {
		t.Errorf("presence = %q, want DETECTED", got.Status.Presence)
	}
	if got.Status.Event != "" {
		t.Errorf("web status must not carry an event, got %q", got.Status.Event)
	}
	if !got.Status.MQTT.Connected {
		t.Error("expected mqtt connected")
	}
	if got.Status.Cadence.Divisor != 32 || got.Status.Cadence.MinIntervalMs != 1024 {
		t.Errorf("cadence not serialized: %+v", got.Status.Cadence)
	}
	if got.Status.LastPublishedAt != "2026-03-14T09:26:53Z" {
		t.Errorf("last_published_at = %q", got.Status.LastPublishedAt)
	}
}

func TestFormatJSONOmitsZeroPublication(t *testing.T) {
	tr := testTracker()

	var got map[string]map[string]any
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &got); err != nil {
		t.Fatalf("status JSON invalid: %v", err)
	}
	if _, present := got["status"]["last_published_at"]; present {
		t.Error("last_published_at should be omitted before the first publication")
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := testTracker()
	tr.SetNetwork(&NetworkInfo{Type: "wifi", IP: "192.168.1.17", SSID: "attic"})

	var got StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM"), &got); err != nil {
		t.Fatalf("status JSON invalid: %v", err)
	}
	if got.Status.Event != "SHUTDOWN" || got.Status.Reason != "SIGTERM" {
		t.Errorf("event/reason = %q/%q", got.Status.Event, got.Status.Reason)
	}
	if got.Status.Network == nil || got.Status.Network.SSID != "attic" {
		t.Errorf("network not serialized: %+v", got.Status.Network)
	}
}
