package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Talha-100/hft-matching-engine/internal/types"
)

// FileStore appends each trade as one JSON line to a log file. It is
// write-only; GetRecent returns nothing (pair it with a MemoryStore in a
// CompositeStore for reads).
type FileStore struct {
	mutex   sync.Mutex
	file    *os.File
	encoder *json.Encoder
}

// NewFileStore opens (or creates) the trade log at path for appending.
func NewFileStore(path string) (*FileStore, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trade log: %w", err)
	}

	return &FileStore{
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

func (s *FileStore) Save(trade types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.encoder.Encode(trade)
}

func (s *FileStore) SaveBatch(trades []types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, trade := range trades {
		if err := s.encoder.Encode(trade); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) GetRecent(limit int) ([]types.Trade, error) {
	return []types.Trade{}, nil
}

func (s *FileStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
