package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cjeanneret/EqGo/internal/debug"
)

// size of the backing file in bytes. Only two words are used today; the
// rest stays erased for future fields.
const fileSize = 16

// FileStore is a WordStore backed by a small fixed-size binary file.
// A missing file is created filled with 0xFF so the first boot reads the
// erase sentinel on every address, exactly like a blank EEPROM.
type FileStore struct {
	f *os.File
}

// NewFileStore opens (or creates) the backing file at path.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open store file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat store file: %w", err)
	}
	if info.Size() < fileSize {
		debug.Info("Initializing blank word store at %s", path)
		if _, err := f.WriteAt(bytes.Repeat([]byte{0xFF}, fileSize), 0); err != nil {
			f.Close()
			return nil, fmt.Errorf("initialize store file: %w", err)
		}
	}

	return &FileStore{f: f}, nil
}

func (s *FileStore) ReadWord(addr uint16) (uint16, error) {
	if err := checkAddr(addr); err != nil {
		return 0, err
	}
	var buf [2]byte
	if _, err := s.f.ReadAt(buf[:], int64(addr)); err != nil {
		return 0, fmt.Errorf("read word at 0x%04X: %w", addr, err)
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (s *FileStore) WriteWord(addr uint16, value uint16) error {
	if err := checkAddr(addr); err != nil {
		return err
	}
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], value)
	if _, err := s.f.WriteAt(buf[:], int64(addr)); err != nil {
		return fmt.Errorf("write word at 0x%04X: %w", addr, err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("sync store file: %w", err)
	}
	debug.Trace("store: wrote 0x%04X at 0x%04X", value, addr)
	return nil
}

// Close releases the backing file.
func (s *FileStore) Close() error {
	return s.f.Close()
}

func checkAddr(addr uint16) error {
	if int(addr)+2 > fileSize {
		return fmt.Errorf("word address 0x%04X out of range", addr)
	}
	return nil
}
