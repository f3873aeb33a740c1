// Command presence-sensor debounces PIR motion interrupts and publishes
// presence over MQTT on a configurable cadence.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sweeney/presence-sensor/internal/cadence"
	"github.com/sweeney/presence-sensor/internal/edge"
	"github.com/sweeney/presence-sensor/internal/mesh"
	"github.com/sweeney/presence-sensor/internal/power"
	"github.com/sweeney/presence-sensor/internal/presence"
	"github.com/sweeney/presence-sensor/internal/status"
	"github.com/sweeney/presence-sensor/internal/store"
	"github.com/sweeney/presence-sensor/internal/timer"
	"github.com/sweeney/presence-sensor/internal/web"
)

// defaultThreshold is the motion threshold setting (80%).
const defaultThreshold = 0x50

func main() {
	blind := flag.Duration("blind", presence.DefaultBlindTime, "PIR blind time (no-presence window is twice this)")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	pin := flag.Int("pin", edge.DefaultPin, "BCM pin number for the PIR interrupt line")
	period := flag.Duration("period", 0, "initial publish period (0 = publish on change only)")
	storeDir := flag.String("store-dir", "/var/lib/presence-sensor", "state directory for the persisted cadence")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	envFile := flag.String("env-file", "/run/pi-helper.env", "pi-helper environment file (empty to skip)")
	lowPower := flag.Bool("low-power", false, "enable low-power sleep negotiation")
	printState := flag.Bool("print-state", false, "print the persisted cadence and exit")

	flag.Parse()

	if err := run(*blind, *broker, *pin, *period, *storeDir, *httpAddr, *envFile, *lowPower, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(blind time.Duration, broker string, pin int, initialPeriod time.Duration, storeDir, httpAddr, envFile string, lowPower, printState bool) error {
	st, err := store.NewFileStore(storeDir)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	cfg := loadCadence(st)

	// Print state mode
	if printState {
		data, err := cfg.Encode()
		if err != nil {
			return fmt.Errorf("encode cadence: %w", err)
		}
		fmt.Printf("%s\n", data)
		return nil
	}

	loadEnvFile(envFile)

	// Initialize GPIO edge source
	src, err := edge.NewRealSource(pin)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer src.Close()

	// Initialize MQTT
	client, err := mesh.NewRealClient(broker, "presence-sensor")
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer client.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		BlindMs:  blind.Milliseconds(),
		Broker:   broker,
		HTTPPort: httpAddr,
		StoreDir: storeDir,
		LowPower: lowPower,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	blindTimer := timer.NewChannel()
	cadenceTimer := timer.NewChannel()
	rt := newRuntime(cfg, blind, blindTimer, cadenceTimer, st, client, client, tracker, lowPower, time.Now)

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mesh.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := client.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: blind=%v broker=%s period=%v low-power=%v", blind, broker, initialPeriod, lowPower)

	rt.engine.SetPeriod(initialPeriod)
	rt.updateTracker()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(rt, src.Events(), blindTimer.C(), cadenceTimer.C(), client.Events(), sigCh)
}

// runtime owns all mutable sensor state. Every mutation happens on the
// dispatch loop, one callback at a time, so no locking is needed beyond
// the tracker's own.
type runtime struct {
	engine     *cadence.Engine
	detector   *presence.Detector
	st         store.Store
	tracker    *status.Tracker
	publisher  mesh.Publisher
	mqttStatus mesh.ConnectionStatus
	negotiator *power.Negotiator // nil unless low-power mode
	counts     status.Counts
	threshold  uint32
	now        func() time.Time
}

func newRuntime(cfg cadence.Config, blind time.Duration, blindTimer, cadenceTimer timer.Timer, st store.Store, publisher mesh.Publisher, mqttStatus mesh.ConnectionStatus, tracker *status.Tracker, lowPower bool, now func() time.Time) *runtime {
	rt := &runtime{
		st:         st,
		tracker:    tracker,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		threshold:  defaultThreshold,
		now:        now,
	}

	rt.engine = cadence.New(cfg, cadenceTimer, now,
		func() int32 { return rt.detector.Value() },
		rt.emitValue)
	rt.detector = presence.New(blind, blindTimer, rt.presenceChanged)

	if lowPower {
		rt.negotiator = power.New(rt.engine.Interval, rt.detector.Detected, nil)
	}

	if tracker != nil {
		tracker.SetCadence(rt.engine.Config())
		tracker.SetThreshold(rt.threshold)
	}

	return rt
}

// emitValue is the engine's transport hook.
func (rt *runtime) emitValue(v int32) {
	log.Printf("publish value:%d", v)
	event := mesh.ValueEvent{
		Timestamp:    rt.now(),
		ElementIndex: mesh.ElementIndex,
		PropertyID:   mesh.PropertyIDPresenceDetected,
		Value:        v,
	}
	if err := rt.publisher.PublishValue(event); err != nil {
		log.Printf("publish error: %v", err)
		// Don't crash on publish failure
	}
}

// presenceChanged is invoked synchronously by the detector on every
// presence transition and hands the change to the publish gate.
func (rt *runtime) presenceChanged(rising bool) {
	if rising {
		rt.counts.Rises++
		log.Printf("presence detected")
	} else {
		rt.counts.Falls++
		log.Printf("presence cleared")
	}
	rt.withPublishCount(rt.engine.ValueChanged)
}

// withPublishCount runs an engine callback and counts a publication if
// the last-published timestamp moved.
func (rt *runtime) withPublishCount(f func()) {
	_, before := rt.engine.LastPublished()
	f()
	if _, after := rt.engine.LastPublished(); !after.Equal(before) {
		rt.counts.Published++
	}
}

func (rt *runtime) handleConfig(ev mesh.ConfigEvent) {
	switch ev.Kind {
	case mesh.EventCadenceSet:
		c := ev.Cadence
		log.Printf("cadence changed: divisor=%d percentage=%v up=%d down=%d min=%dms low=%d high=%d",
			c.FastCadencePeriodDivisor, c.TriggerTypePercentage, c.TriggerDeltaUp,
			c.TriggerDeltaDown, c.MinIntervalMs, c.FastCadenceLow, c.FastCadenceHigh)
		if data, err := c.Encode(); err != nil {
			log.Printf("encode cadence: %v", err)
		} else if err := rt.st.Save(store.SlotCadence, data); err != nil {
			// Best effort, no retry; RAM copy stays authoritative.
			log.Printf("save cadence: %v", err)
		}
		rt.engine.ApplyConfig(c)

	case mesh.EventPeriodSet:
		p := ev.Period
		if !p.Matches() {
			log.Printf("period set ignored: element=%d company=%04x model=%04x",
				p.ElementIndex, p.CompanyID, p.ModelID)
			return
		}
		log.Printf("publish period set: %v", p.Period())
		rt.engine.SetPeriod(p.Period())

	case mesh.EventSettingSet:
		s := ev.Setting
		log.Printf("setting changed: prop=%04x setting=%04x value=%d",
			s.PropertyID, s.SettingPropertyID, s.Value)
		rt.threshold = s.Value
		rt.tracker.SetThreshold(s.Value)

	case mesh.EventGet:
		rt.counts.Reported++
		rt.engine.Report()

	case mesh.EventFactoryReset:
		log.Printf("factory reset: erasing cadence record")
		if err := rt.st.Erase(store.SlotCadence); err != nil {
			log.Printf("erase cadence: %v", err)
		}
	}
}

func (rt *runtime) updateTracker() {
	if rt.tracker == nil {
		return
	}
	v, at := rt.engine.LastPublished()
	rt.tracker.Update(rt.detector.Detected(), v, at, rt.counts)
	rt.tracker.SetTiming(rt.engine.Period(), rt.engine.Interval(), rt.engine.FastPeriod())
	rt.tracker.SetCadence(rt.engine.Config())
	if rt.mqttStatus != nil {
		rt.tracker.SetMQTTConnected(rt.mqttStatus.IsConnected())
	}
}

// busy marks the negotiator not-idle while a callback runs.
func (rt *runtime) busy() {
	if rt.negotiator != nil {
		rt.negotiator.Wake()
	}
}

func runLoop(rt *runtime, edges, blindFire, cadenceFire <-chan time.Time, cfgEvents <-chan mesh.ConfigEvent, sig <-chan os.Signal) error {
	for {
		// All callbacks are dispatched from this single loop; each case
		// runs to completion before the next is selected.
		if rt.negotiator != nil {
			rt.negotiator.Sleep(power.SleepCeiling)
		}

		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mesh.SystemEvent{
				Timestamp: rt.now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if rt.tracker != nil {
				if rt.mqttStatus != nil {
					rt.tracker.SetMQTTConnected(rt.mqttStatus.IsConnected())
				}
				snap := rt.tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := rt.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-edges:
			rt.busy()
			rt.detector.OnEdge()

		case <-blindFire:
			rt.busy()
			rt.detector.OnBlindExpiry()

		case <-cadenceFire:
			rt.busy()
			rt.withPublishCount(rt.engine.OnTick)

		case ev := <-cfgEvents:
			rt.busy()
			rt.handleConfig(ev)
		}

		rt.updateTracker()
	}
}

func loadCadence(st store.Store) cadence.Config {
	data, ok, err := st.Load(store.SlotCadence)
	if err != nil {
		log.Printf("load cadence: %v, using defaults", err)
		return cadence.Default()
	}
	if !ok {
		return cadence.Default()
	}
	cfg, err := cadence.Decode(data)
	if err != nil {
		log.Printf("decode cadence: %v, using defaults", err)
		return cadence.Default()
	}
	return cfg
}

func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("load env file %s: %v", path, err)
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
