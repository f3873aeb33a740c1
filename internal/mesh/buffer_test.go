package mesh

import "testing"

func TestRingBufferPushDrain(t *testing.T) {
	r := newRingBuffer(4)

	r.push(outMsg{topic: "a"})
	r.push(outMsg{topic: "b"})
	if r.len() != 2 {
		t.Errorf("len = %d, want 2", r.len())
	}

	msgs := r.drain()
	if len(msgs) != 2 {
		t.Fatalf("drained %d messages, want 2", len(msgs))
	}
	if msgs[0].topic != "a" || msgs[1].topic != "b" {
		t.Errorf("wrong order: %q, %q", msgs[0].topic, msgs[1].topic)
	}
	if r.len() != 0 {
		t.Errorf("len after drain = %d, want 0", r.len())
	}
}

func TestRingBufferDrainEmpty(t *testing.T) {
	r := newRingBuffer(4)
	if msgs := r.drain(); msgs != nil {
		t.Errorf("expected nil from empty drain, got %v", msgs)
	}
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	r := newRingBuffer(3)

	r.push(outMsg{topic: "1"})
	r.push(outMsg{topic: "2"})
	r.push(outMsg{topic: "3"})
	r.push(outMsg{topic: "4"}) // overwrites "1"
	r.push(outMsg{topic: "5"}) // overwrites "2"

	if r.len() != 3 {
		t.Errorf("len = %d, want 3", r.len())
	}

	msgs := r.drain()
	want := []string{"3", "4", "5"}
	if len(msgs) != len(want) {
		t.Fatalf("drained %d messages, want %d", len(msgs), len(want))
	}
	for i, w := range want {
		if msgs[i].topic != w {
			t.Errorf("msgs[%d].topic = %q, want %q", i, msgs[i].topic, w)
		}
	}
}

func TestRingBufferReuseAfterDrain(t *testing.T) {
	r := newRingBuffer(2)

	r.push(outMsg{topic: "a"})
	r.drain()
	r.push(outMsg{topic: "b"})

	msgs := r.drain()
	if len(msgs) != 1 || msgs[0].topic != "b" {
		t.Errorf("unexpected messages after reuse: %v", msgs)
	}
}
