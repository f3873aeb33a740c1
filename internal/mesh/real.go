package mesh

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// bufferCapacity bounds how many publications are held while the broker
// connection is down.
const bufferCapacity = 64

// RealClient publishes to and receives from an actual MQTT broker.
// Publications attempted while disconnected are held in a fixed-capacity
// ring buffer and replayed on reconnect.
type RealClient struct {
	client paho.Client
	events chan ConfigEvent

	mu  sync.Mutex // guards buf
	buf *ringBuffer
}

// NewRealClient connects to the given broker and subscribes to the
// inbound configuration topics.
func NewRealClient(broker, clientID string) (*RealClient, error) {
	c := &RealClient{
		events: make(chan ConfigEvent, 16),
		buf:    newRingBuffer(bufferCapacity),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(c.onConnect)

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return c, nil
}

// onConnect runs on every (re)connection: re-establish subscriptions,
// then replay anything buffered while disconnected.
func (c *RealClient) onConnect(client paho.Client) {
	subs := []struct {
		topic   string
		handler paho.MessageHandler
	}{
		{TopicCadenceSet, c.handleCadenceSet},
		{TopicPeriodSet, c.handlePeriodSet},
		{TopicSettingSet, c.handleSettingSet},
		{TopicGet, c.handleGet},
		{TopicFactoryReset, c.handleFactoryReset},
	}
	for _, s := range subs {
		token := client.Subscribe(s.topic, 1, s.handler)
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.Printf("mesh: subscribe %s: %v", s.topic, token.Error())
		}
	}

	c.replayBuffered()
}

// PublishValue sends a sensor value publication to the broker.
// QoS 0 (at-most-once), not retained.
func (c *RealClient) PublishValue(event ValueEvent) error {
	payload, err := FormatValuePayload(event)
	if err != nil {
		return fmt.Errorf("format value payload: %w", err)
	}
	return c.send(TopicValue, payload, 0, false)
}

// PublishSystem sends a system lifecycle event to the broker.
// QoS 1 (at-least-once) - we want shutdown events delivered.
func (c *RealClient) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return c.send(TopicSystem, payload, 1, event.Retained)
}

func (c *RealClient) send(topic string, payload []byte, qos byte, retained bool) error {
	if !c.client.IsConnected() {
		c.mu.Lock()
		c.buf.push(outMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		n := c.buf.len()
		c.mu.Unlock()
		log.Printf("mesh: disconnected, buffered message for %s (%d pending)", topic, n)
		return nil
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (c *RealClient) replayBuffered() {
	c.mu.Lock()
	msgs := c.buf.drain()
	c.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	log.Printf("mesh: replaying %d buffered messages", len(msgs))
	for _, m := range msgs {
		token := c.client.Publish(m.topic, m.qos, m.retained, m.payload)
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.Printf("mesh: replay %s: %v", m.topic, token.Error())
		}
	}
}

// Events returns the channel decoded configuration events arrive on.
func (c *RealClient) Events() <-chan ConfigEvent {
	return c.events
}

// IsConnected reports whether the broker connection is up.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}

// The handlers below run on paho's goroutines. They only decode and
// forward; all state changes happen on the daemon's dispatch loop.

func (c *RealClient) handleCadenceSet(_ paho.Client, msg paho.Message) {
	cfg, err := DecodeCadence(msg.Payload())
	if err != nil {
		log.Printf("mesh: %v", err)
		return
	}
	c.deliver(ConfigEvent{Kind: EventCadenceSet, Cadence: cfg})
}

func (c *RealClient) handlePeriodSet(_ paho.Client, msg paho.Message) {
	p, err := DecodePeriodSet(msg.Payload())
	if err != nil {
		log.Printf("mesh: %v", err)
		return
	}
	c.deliver(ConfigEvent{Kind: EventPeriodSet, Period: p})
}

func (c *RealClient) handleSettingSet(_ paho.Client, msg paho.Message) {
	s, err := DecodeSetting(msg.Payload())
	if err != nil {
		log.Printf("mesh: %v", err)
		return
	}
	c.deliver(ConfigEvent{Kind: EventSettingSet, Setting: s})
}

func (c *RealClient) handleGet(_ paho.Client, _ paho.Message) {
	c.deliver(ConfigEvent{Kind: EventGet})
}

func (c *RealClient) handleFactoryReset(_ paho.Client, _ paho.Message) {
	c.deliver(ConfigEvent{Kind: EventFactoryReset})
}

func (c *RealClient) deliver(ev ConfigEvent) {
	select {
	case c.events <- ev:
	default:
		log.Printf("mesh: config event queue full, dropping event kind %d", ev.Kind)
	}
}
