package cadence

import "testing"

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.FastCadencePeriodDivisor != 1 {
		t.Errorf("expected divisor 1, got %d", cfg.FastCadencePeriodDivisor)
	}
	if cfg.TriggerDeltaUp != 0 || cfg.TriggerDeltaDown != 0 {
		t.Errorf("expected deltas 0, got %d/%d", cfg.TriggerDeltaUp, cfg.TriggerDeltaDown)
	}
	if cfg.MinIntervalMs != 1024 {
		t.Errorf("expected min interval 1024ms, got %d", cfg.MinIntervalMs)
	}
	if cfg.Configured() {
		t.Error("default cadence should not count as configured")
	}
}

func TestNormalizeDivisor(t *testing.T) {
	cfg := Config{FastCadencePeriodDivisor: 0}
	if got := cfg.Normalize().FastCadencePeriodDivisor; got != 1 {
		t.Errorf("expected divisor normalized to 1, got %d", got)
	}
	cfg = Config{FastCadencePeriodDivisor: 32}
	if got := cfg.Normalize().FastCadencePeriodDivisor; got != 32 {
		t.Errorf("expected divisor 32 unchanged, got %d", got)
	}
}

func TestConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"unconfigured", Config{FastCadencePeriodDivisor: 1}, false},
		{"divisor", Config{FastCadencePeriodDivisor: 32}, true},
		{"delta up", Config{FastCadencePeriodDivisor: 1, TriggerDeltaUp: 1}, true},
		{"delta down", Config{FastCadencePeriodDivisor: 1, TriggerDeltaDown: 1}, true},
	}
	for _, tt := range tests {
		if got := tt.cfg.Configured(); got != tt.want {
			t.Errorf("%s: Configured() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWindowInsideRange(t *testing.T) {
	// low < high: inside-range semantics, (low, high].
	cfg := Config{FastCadenceLow: 10, FastCadenceHigh: 50}

	tests := []struct {
		value int32
		want  bool
	}{
		{30, true},
		{10, false}, // boundary: low itself is outside
		{11, true},
		{50, true}, // boundary: high itself is inside
		{51, false},
		{9, false},
	}
	for _, tt := range tests {
		if got := cfg.windowMatch(tt.value); got != tt.want {
			t.Errorf("inside window, value %d: got %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestWindowOutsideRange(t *testing.T) {
	// low > high: outside-range semantics, [low, max] or [min, high).
	cfg := Config{FastCadenceLow: 50, FastCadenceHigh: 10}

	tests := []struct {
		value int32
		want  bool
	}{
		{30, false},
		{10, false}, // boundary: high itself does not match
		{50, true},  // boundary: low itself matches
		{9, true},
		{51, true},
	}
	for _, tt := range tests {
		if got := cfg.windowMatch(tt.value); got != tt.want {
			t.Errorf("outside window, value %d: got %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestWindowEquals(t *testing.T) {
	// low == high: equals semantics.
	cfg := Config{FastCadenceLow: 1, FastCadenceHigh: 1}
	if !cfg.windowMatch(1) {
		t.Error("expected match for equal value")
	}
	if cfg.windowMatch(0) {
		t.Error("expected no match for different value")
	}
}

func TestEncodeDecode(t *testing.T) {
	cfg := Config{
		FastCadencePeriodDivisor: 32,
		TriggerTypePercentage:    true,
		TriggerDeltaUp:           3000,
		TriggerDeltaDown:         100,
		MinIntervalMs:            1024,
		FastCadenceLow:           -5,
		FastCadenceHigh:          20,
	}
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != cfg {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", got, cfg)
	}
}

func TestDecodeNormalizes(t *testing.T) {
	got, err := Decode([]byte(`{"fast_cadence_period_divisor":0}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.FastCadencePeriodDivisor != 1 {
		t.Errorf("expected decoded divisor normalized to 1, got %d", got.FastCadencePeriodDivisor)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode([]byte("not json")); err == nil {
		t.Error("expected error for malformed record")
	}
}
