package store

// Fake is an in-memory Store for tests.
type Fake struct {
	// Records maps slots to stored bytes.
	Records map[Slot][]byte

	// LoadError, SaveError and EraseError, if set, are returned by the
	// corresponding method.
	LoadError  error
	SaveError  error
	EraseError error

	// Saves counts calls to Save.
	Saves int
}

// NewFake creates an empty Fake store.
func NewFake() *Fake {
	return &Fake{Records: make(map[Slot][]byte)}
}

// Load returns the stored record, if any.
func (f *Fake) Load(slot Slot) ([]byte, bool, error) {
	if f.LoadError != nil {
		return nil, false, f.LoadError
	}
	data, ok := f.Records[slot]
	return data, ok, nil
}

// Save stores the record.
func (f *Fake) Save(slot Slot, data []byte) error {
	if f.SaveError != nil {
		return f.SaveError
	}
	f.Saves++
	cp := make([]byte, len(data))
	copy(cp, data)
	f.Records[slot] = cp
	return nil
}

// Erase removes the record.
func (f *Fake) Erase(slot Slot) error {
	if f.EraseError != nil {
		return f.EraseError
	}
	delete(f.Records, slot)
	return nil
}
