// Package store provides slot-addressed persistent records for
// configuration that must survive power cycles. Records are small and
// fixed in number; saves are best-effort and synchronous. The real
// implementation keeps one file per slot under a state directory; the
// fake keeps records in memory.
package store

// Slot identifies one persistent record.
type Slot uint16

// SlotCadence holds the sensor cadence record.
const SlotCadence Slot = 0x0001

// Store reads and writes slot records.
type Store interface {
	// Load returns the record bytes. ok is false if the slot is empty,
	// which callers treat as "use compiled-in defaults".
	Load(slot Slot) (data []byte, ok bool, err error)

	// Save replaces the record in the slot.
	Save(slot Slot, data []byte) error

	// Erase removes the record. Erasing an empty slot is not an error.
	Erase(slot Slot) error
}
