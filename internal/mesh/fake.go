package mesh

// FakeClient records published events and lets tests inject inbound
// configuration events.
type FakeClient struct {
	// Values contains all value events that were published.
	Values []ValueEvent

	// ValuePayloads contains the JSON payloads for value events.
	ValuePayloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishValueError, if set, will be returned by PublishValue.
	PublishValueError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	events chan ConfigEvent
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{events: make(chan ConfigEvent, 16)}
}

// PublishValue records the value event.
func (f *FakeClient) PublishValue(event ValueEvent) error {
	if f.PublishValueError != nil {
		return f.PublishValueError
	}

	f.Values = append(f.Values, event)

	payload, err := FormatValuePayload(event)
	if err != nil {
		return err
	}
	f.ValuePayloads = append(f.ValuePayloads, payload)

	return nil
}

// PublishSystem records the system event.
func (f *FakeClient) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Events returns the inbound configuration event channel.
func (f *FakeClient) Events() <-chan ConfigEvent {
	return f.events
}

// Inject delivers an inbound configuration event.
func (f *FakeClient) Inject(ev ConfigEvent) {
	f.events <- ev
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	return f.Connected
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded events.
func (f *FakeClient) Reset() {
	f.Values = nil
	f.ValuePayloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishValueError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
