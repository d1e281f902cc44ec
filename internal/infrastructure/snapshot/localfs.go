package snapshot

import (
	"context"
	"fmt"
	"io"

	"github.com/expenseops/expense-analyzer/internal/core/ports"
)

// Source reads a legacy expense export from object storage. The file
// is written by the system this one replaced and refreshed out of band.
type Source struct {
	storage ports.ObjectStorage
	key     string
}

func NewSource(storage ports.ObjectStorage, key string) *Source {
	return &Source{storage: storage, key: key}
}

func (s *Source) Fetch(ctx context.Context) ([]byte, error) {
	reader, err := s.storage.Open(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", s.key, err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.key, err)
	}
	return raw, nil
}
