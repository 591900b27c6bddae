package store

// Erased is the value an uninitialized word reads back as, matching the
// erase state of the EEPROM the speeds were originally kept in.
const Erased uint16 = 0xFFFF

// WordStore is the abstract interface for non-volatile 16-bit storage.
// Addresses are byte offsets; each word occupies two bytes.
type WordStore interface {
	ReadWord(addr uint16) (uint16, error)
	WriteWord(addr uint16, value uint16) error
}

// MemStore is an in-memory WordStore for tests. Unwritten addresses read
// back as Erased, like a fresh EEPROM.
type MemStore struct {
	words map[uint16]uint16
}

func NewMemStore() *MemStore {
	return &MemStore{words: make(map[uint16]uint16)}
}

func (m *MemStore) ReadWord(addr uint16) (uint16, error) {
	if v, ok := m.words[addr]; ok {
		return v, nil
	}
	return Erased, nil
}

func (m *MemStore) WriteWord(addr uint16, value uint16) error {
	m.words[addr] = value
	return nil
}
